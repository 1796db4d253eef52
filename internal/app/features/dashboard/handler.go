// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/realtycrm/internal/app/store/queries/dashboardqueries"
	"github.com/dalemusser/realtycrm/internal/app/system/authz"
	"github.com/dalemusser/realtycrm/internal/app/system/telemetry"
	"github.com/dalemusser/realtycrm/internal/app/system/timeouts"
	"github.com/dalemusser/realtycrm/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPeriodDays is the trend window when the request omits ?period.
const DefaultPeriodDays = 30

// errForbidden rejects a signed-in caller asking for another associate's data.
var errForbidden = errors.New("dashboard: access denied")

// errBadRequest wraps malformed query or path parameters.
type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

type Handler struct {
	Engine        *dashboardqueries.Engine
	DefaultPeriod int
	Metrics       *telemetry.Metrics
	Log           *zap.Logger
}

func NewHandler(engine *dashboardqueries.Engine, defaultPeriod int, metrics *telemetry.Metrics, logger *zap.Logger) *Handler {
	if defaultPeriod <= 0 {
		defaultPeriod = DefaultPeriodDays
	}
	return &Handler{
		Engine:        engine,
		DefaultPeriod: defaultPeriod,
		Metrics:       metrics,
		Log:           logger,
	}
}

// query computes one endpoint's payload for the caller.
type query func(ctx context.Context, r *http.Request, id models.Identity) (any, error)

// serve resolves the caller, runs q under the dashboard timeout and writes
// the JSON envelope. Data access failures are logged with a reference id
// and reported as a generic 500.
func (h *Handler) serve(endpoint string, q query) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id, ok := authz.Identity(r)
		if !ok {
			// RequireSignedIn already ran, so the role has no dashboard.
			h.Metrics.Observe(endpoint, "unknown", telemetry.OutcomeForbidden, time.Since(start))
			writeError(w, http.StatusForbidden, "Access denied")
			return
		}
		role := roleLabel(id)

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Dashboard(), h.Log, "dashboard "+endpoint)
		defer cancel()

		data, err := q(ctx, r, id)

		var bad errBadRequest
		switch {
		case err == nil:
			h.Metrics.Observe(endpoint, role, telemetry.OutcomeOK, time.Since(start))
			h.Log.Debug("dashboard served",
				zap.String("endpoint", endpoint),
				zap.String("role", role),
				zap.Duration("took", time.Since(start)))
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})

		case errors.As(err, &bad):
			h.Metrics.Observe(endpoint, role, telemetry.OutcomeBadInput, time.Since(start))
			writeError(w, http.StatusBadRequest, bad.msg)

		case errors.Is(err, dashboardqueries.ErrInvalidPeriod):
			h.Metrics.Observe(endpoint, role, telemetry.OutcomeBadInput, time.Since(start))
			writeError(w, http.StatusBadRequest, "period must be a positive number of days")

		case errors.Is(err, errForbidden):
			h.Metrics.Observe(endpoint, role, telemetry.OutcomeForbidden, time.Since(start))
			writeError(w, http.StatusForbidden, "Access denied")

		default:
			ref := uuid.NewString()
			h.Metrics.Observe(endpoint, role, telemetry.OutcomeError, time.Since(start))
			h.Log.Error("dashboard query failed",
				zap.String("endpoint", endpoint),
				zap.String("role", role),
				zap.String("user_id", id.UserID().Hex()),
				zap.String("error_ref", ref),
				zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"success":  false,
				"message":  "Server error",
				"errorRef": ref,
			})
		}
	}
}

func roleLabel(id models.Identity) string {
	switch id.(type) {
	case models.AdminIdentity:
		return models.RoleAdmin
	case models.AssociateIdentity:
		return models.RoleAssociate
	}
	return "unknown"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}
