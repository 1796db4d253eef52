// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/realtycrm/internal/app/system/auth"
	"github.com/dalemusser/realtycrm/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard API under whatever mount point the top-level
// router chooses (e.g., "/api/dashboard"). Every endpoint requires a
// signed-in user; revenue-trend is admin-only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/stats", h.ServeStats)
		pr.Get("/leads-trend", h.ServeLeadsTrend)
		pr.Get("/project-status", h.ServeProjectStatus)
		pr.Get("/lead-sources", h.ServeLeadSources)
		pr.Get("/recent-activities", h.ServeRecentActivities)
		pr.Get("/associate-performance/{id}", h.ServeAssociatePerformance)

		pr.With(sm.RequireRole(models.RoleAdmin)).Get("/revenue-trend", h.ServeRevenueTrend)
	})

	return r
}
