package memory

import "sync/atomic"

// Stats is a snapshot of process-wide raw storage accounting.
type Stats struct {
	// Buffers is the number of live allocations.
	Buffers int64 `json:"buffers"`
	// Slots is the number of slots held by live allocations.
	Slots int64 `json:"slots"`
	// Bytes is Slots weighted by element size.
	Bytes int64 `json:"bytes"`
	// Acquired counts successful allocations since start.
	Acquired uint64 `json:"acquired"`
	// Released counts returned allocations since start.
	Released uint64 `json:"released"`
	// Failed counts allocator errors since start.
	Failed uint64 `json:"failed"`
}

var usage struct {
	buffers  atomic.Int64
	slots    atomic.Int64
	bytes    atomic.Int64
	acquired atomic.Uint64
	released atomic.Uint64
	failed   atomic.Uint64
}

// Usage returns the current accounting snapshot.
func Usage() Stats {
	return Stats{
		Buffers:  usage.buffers.Load(),
		Slots:    usage.slots.Load(),
		Bytes:    usage.bytes.Load(),
		Acquired: usage.acquired.Load(),
		Released: usage.released.Load(),
		Failed:   usage.failed.Load(),
	}
}

func account(slots, bytes int64) {
	usage.buffers.Add(1)
	usage.slots.Add(slots)
	usage.bytes.Add(bytes)
	usage.acquired.Add(1)
}

func unaccount(slots, bytes int64) {
	usage.buffers.Add(-1)
	usage.slots.Add(-slots)
	usage.bytes.Add(-bytes)
	usage.released.Add(1)
}
