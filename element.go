package vector

import (
	"errors"
	"fmt"
)

// ErrNotCopyable is returned when a copy is requested for a NonCopyable element type.
var ErrNotCopyable = errors.New("vector: element type is not copyable")

// Initializer is implemented by element types whose default value needs
// more than the zero value.
type Initializer interface {
	Init() error
}

// Copier is implemented by element types with their own copy. CopyTo
// builds a copy of the receiver in dst, which holds the zero value. On
// error dst must not hold anything that needs destroying.
type Copier[T any] interface {
	CopyTo(dst *T) error
}

// Mover is implemented by element types whose relocation may fail. MoveTo
// transfers the receiver into dst, which holds the zero value. The
// receiver is cleared afterwards without being destroyed. On error the
// receiver must still be intact.
type Mover[T any] interface {
	MoveTo(dst *T) error
}

// Destroyer is implemented by element types that release something when
// they leave the vector.
type Destroyer interface {
	Destroy()
}

// NonCopyable marks element types that may only be moved.
type NonCopyable interface {
	NoCopy()
}

// element holds the capabilities of T found by querying *T once.
type element[T any] struct {
	init    bool
	copy    bool
	move    bool
	destroy bool
	noCopy  bool
}

func elementOf[T any]() *element[T] {
	var p *T
	e := &element[T]{}
	_, e.init = any(p).(Initializer)
	_, e.copy = any(p).(Copier[T])
	_, e.move = any(p).(Mover[T])
	_, e.destroy = any(p).(Destroyer)
	_, e.noCopy = any(p).(NonCopyable)
	return e
}

// moves reports whether relocation moves rather than copies: either the
// move cannot fail, or there is no copy to fall back on.
func (e *element[T]) moves() bool {
	return !e.move || e.noCopy
}

func (e *element[T]) construct(dst *T) error {
	if !e.init {
		return nil
	}
	if err := any(dst).(Initializer).Init(); err != nil {
		var zero T
		*dst = zero
		return err
	}
	return nil
}

func (e *element[T]) copyTo(src, dst *T) error {
	if e.noCopy {
		return ErrNotCopyable
	}
	if !e.copy {
		*dst = *src
		return nil
	}
	if err := any(src).(Copier[T]).CopyTo(dst); err != nil {
		var zero T
		*dst = zero
		return err
	}
	return nil
}

func (e *element[T]) moveTo(src, dst *T) error {
	var zero T
	if e.move {
		if err := any(src).(Mover[T]).MoveTo(dst); err != nil {
			*dst = zero
			return err
		}
	} else {
		*dst = *src
	}
	*src = zero
	return nil
}

func (e *element[T]) destroyAt(p *T) {
	if e.destroy {
		any(p).(Destroyer).Destroy()
	}
	var zero T
	*p = zero
}

func (e *element[T]) destroyAll(s []T) {
	for i := range s {
		e.destroyAt(&s[i])
	}
}

// initAll default-constructs every slot of s. On error the slots already
// constructed are destroyed again.
func (e *element[T]) initAll(s []T) error {
	if !e.init {
		return nil
	}
	for i := range s {
		if err := e.construct(&s[i]); err != nil {
			e.destroyAll(s[:i])
			return fmt.Errorf("vector: init element %d: %w", i, err)
		}
	}
	return nil
}

// copyAll copy-constructs src into dst. On error the copies made so far
// are destroyed and src is untouched.
func (e *element[T]) copyAll(dst, src []T) error {
	if e.noCopy && len(src) > 0 {
		return ErrNotCopyable
	}
	if !e.copy {
		copy(dst, src)
		return nil
	}
	for i := range src {
		if err := e.copyTo(&src[i], &dst[i]); err != nil {
			e.destroyAll(dst[:i])
			return fmt.Errorf("vector: copy element %d: %w", i, err)
		}
	}
	return nil
}

// moveAll moves src into dst. On error the elements already moved are
// moved back; if that fails as well both errors are reported.
func (e *element[T]) moveAll(dst, src []T) error {
	if !e.move {
		copy(dst, src)
		clear(src)
		return nil
	}
	for i := range src {
		if err := e.moveTo(&src[i], &dst[i]); err != nil {
			err = fmt.Errorf("vector: move element %d: %w", i, err)
			for j := range i {
				if er := e.moveTo(&dst[j], &src[j]); er != nil {
					err = errors.Join(err, fmt.Errorf("vector: move element %d back: %w", j, er))
				}
			}
			return err
		}
	}
	return nil
}

// relocate places src into dst following the relocation policy. When it
// copies, src stays live and the caller destroys it once everything
// succeeded.
func (e *element[T]) relocate(dst, src []T) error {
	if e.moves() {
		return e.moveAll(dst, src)
	}
	return e.copyAll(dst, src)
}

// unrelocate undoes a successful relocate of src into dst.
func (e *element[T]) unrelocate(dst, src []T) error {
	if e.moves() {
		return e.moveAll(src, dst)
	}
	e.destroyAll(dst)
	return nil
}

// shift moves *src into the empty slot dst inside the same buffer.
func (e *element[T]) shift(src, dst *T) {
	if err := e.moveTo(src, dst); err != nil {
		panic(fmt.Errorf("vector: shift element: %w", err))
	}
}
