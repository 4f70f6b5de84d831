// Package dashboard serves the cabinet status console.
package dashboard

import (
	"github.com/go-chi/chi/v5"

	"github.com/aetheroos/aethero/internal/audit"
	"github.com/aetheroos/aethero/internal/coordinator"
	"github.com/aetheroos/aethero/internal/memory"
)

// Dashboard provides the status console and its JSON endpoints.
type Dashboard struct {
	coord  *coordinator.Coordinator
	memory *memory.Store
	audit  *audit.Store
}

// New creates a new Dashboard.
func New(coord *coordinator.Coordinator, mem *memory.Store, auditStore *audit.Store) *Dashboard {
	return &Dashboard{
		coord:  coord,
		memory: mem,
		audit:  auditStore,
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/api/dashboard/stats", d.handleStats)
	r.Get("/api/dashboard/recent", d.handleRecent)
}
