package dashboard

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/realtycrm/internal/app/system/authz"
	"github.com/dalemusser/realtycrm/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeStats handles GET /stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	h.serve("stats", func(ctx context.Context, r *http.Request, id models.Identity) (any, error) {
		return h.Engine.Stats(ctx, id)
	})(w, r)
}

// ServeLeadsTrend handles GET /leads-trend?period=N.
func (h *Handler) ServeLeadsTrend(w http.ResponseWriter, r *http.Request) {
	h.serve("leads-trend", func(ctx context.Context, r *http.Request, id models.Identity) (any, error) {
		days, err := h.period(r)
		if err != nil {
			return nil, err
		}
		return h.Engine.LeadsTrend(ctx, days, id)
	})(w, r)
}

// ServeRevenueTrend handles GET /revenue-trend?period=N. Routes restrict
// it to admins.
func (h *Handler) ServeRevenueTrend(w http.ResponseWriter, r *http.Request) {
	h.serve("revenue-trend", func(ctx context.Context, r *http.Request, _ models.Identity) (any, error) {
		days, err := h.period(r)
		if err != nil {
			return nil, err
		}
		return h.Engine.RevenueTrend(ctx, days)
	})(w, r)
}

// ServeProjectStatus handles GET /project-status.
func (h *Handler) ServeProjectStatus(w http.ResponseWriter, r *http.Request) {
	h.serve("project-status", func(ctx context.Context, r *http.Request, _ models.Identity) (any, error) {
		return h.Engine.ProjectStatus(ctx)
	})(w, r)
}

// ServeLeadSources handles GET /lead-sources.
func (h *Handler) ServeLeadSources(w http.ResponseWriter, r *http.Request) {
	h.serve("lead-sources", func(ctx context.Context, r *http.Request, id models.Identity) (any, error) {
		return h.Engine.LeadSources(ctx, id)
	})(w, r)
}

// ServeRecentActivities handles GET /recent-activities.
func (h *Handler) ServeRecentActivities(w http.ResponseWriter, r *http.Request) {
	h.serve("recent-activities", func(ctx context.Context, r *http.Request, id models.Identity) (any, error) {
		return h.Engine.RecentActivities(ctx, id)
	})(w, r)
}

// ServeAssociatePerformance handles GET /associate-performance/{id}.
// Admins may ask for any associate, associates only for themselves.
func (h *Handler) ServeAssociatePerformance(w http.ResponseWriter, r *http.Request) {
	h.serve("associate-performance", func(ctx context.Context, r *http.Request, _ models.Identity) (any, error) {
		associateID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			return nil, errBadRequest{msg: "invalid associate id"}
		}
		if !authz.CanViewAssociate(r, associateID) {
			return nil, errForbidden
		}
		return h.Engine.AssociatePerformance(ctx, associateID)
	})(w, r)
}

// period reads ?period, falling back to the configured default. Range
// checks are left to the engine.
func (h *Handler) period(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("period"))
	if raw == "" {
		return h.DefaultPeriod, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errBadRequest{msg: "period must be a whole number of days"}
	}
	return days, nil
}
