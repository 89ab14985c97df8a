// Package admin exposes raw storage accounting through the Caddy admin API.
package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/caddyserver/caddy/v2"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/imgk/vector-go/memory"
)

func init() {
	caddy.RegisterModule(Admin{})
}

// Admin is ...
type Admin struct {
	lg *zap.Logger
}

// CaddyModule returns the Caddy module information.
func (Admin) CaddyModule() caddy.ModuleInfo {
	return caddy.ModuleInfo{
		ID:  "admin.api.vector",
		New: func() caddy.Module { return new(Admin) },
	}
}

// Provision is ...
func (al *Admin) Provision(ctx caddy.Context) error {
	al.lg = ctx.Logger(al)
	if err := Register(ctx.GetMetricsRegistry()); err != nil {
		return fmt.Errorf("register vector metrics: %w", err)
	}
	al.lg.Debug("vector storage metrics registered")
	return nil
}

// Routes returns a route for the /vector/* endpoint.
func (al *Admin) Routes() []caddy.AdminRoute {
	return []caddy.AdminRoute{
		{
			Pattern: "/vector/stats",
			Handler: caddy.AdminHandlerFunc(al.GetStats),
		},
	}
}

// Stats is the body served by /vector/stats.
type Stats struct {
	memory.Stats
	// Size is Bytes in human readable form.
	Size string `json:"size"`
}

// GetStats is ...
func (al *Admin) GetStats(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodGet {
		return caddy.APIError{
			HTTPStatus: http.StatusMethodNotAllowed,
			Err:        errors.New("get vector stats method error"),
		}
	}

	st := memory.Usage()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(Stats{
		Stats: st,
		Size:  humanize.IBytes(uint64(max(st.Bytes, 0))),
	})
}

// Register adds gauges for the live raw storage to reg. Gauges that are
// already registered are left alone. Only an untyped nil reg is skipped;
// a nil *prometheus.Registry must not be passed.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			if are := (prometheus.AlreadyRegisteredError{}); errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func collectors() []prometheus.Collector {
	gauge := func(name, help string, fn func(memory.Stats) int64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "vector",
			Subsystem: "storage",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(fn(memory.Usage()))
		})
	}
	return []prometheus.Collector{
		gauge("buffers", "Number of live raw storage allocations.", func(s memory.Stats) int64 { return s.Buffers }),
		gauge("slots", "Number of slots held by live allocations.", func(s memory.Stats) int64 { return s.Slots }),
		gauge("bytes", "Bytes held by live allocations.", func(s memory.Stats) int64 { return s.Bytes }),
	}
}

// Interface guards
var (
	_ caddy.AdminRouter = (*Admin)(nil)
	_ caddy.Provisioner = (*Admin)(nil)
)
