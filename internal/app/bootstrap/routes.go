// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	dashboardfeature "github.com/dalemusser/realtycrm/internal/app/features/dashboard"
	healthfeature "github.com/dalemusser/realtycrm/internal/app/features/health"
	metricsstore "github.com/dalemusser/realtycrm/internal/app/store/metrics"
	"github.com/dalemusser/realtycrm/internal/app/store/queries/dashboardqueries"
	userstore "github.com/dalemusser/realtycrm/internal/app/store/users"
	"github.com/dalemusser/realtycrm/internal/app/system/auth"
	"github.com/dalemusser/realtycrm/internal/app/system/ratelimit"
	"github.com/dalemusser/realtycrm/internal/app/system/telemetry"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the MongoDB client and database bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// The dashboard API is mounted under /api/dashboard behind the session
// middleware; /health and (optionally) /metrics sit alongside it.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Reload the user on each request so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	var metrics *telemetry.Metrics
	if appCfg.MetricsEnabled {
		metrics = telemetry.New(reg)
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if appCfg.MetricsEnabled {
		r.Handle("/metrics", telemetry.Handler(reg))
	}

	// Role-scoped dashboard API
	engine := dashboardqueries.New(
		metricsstore.New(deps.MongoDatabase),
		dashboardqueries.WithCurrencySymbol(appCfg.CurrencySymbol),
	)
	dashboardHandler := dashboardfeature.NewHandler(engine, appCfg.DefaultTrendDays, metrics, logger)
	var dashboardAPI http.Handler = dashboardfeature.Routes(dashboardHandler, sessionMgr)
	if appCfg.RateLimitPerMin > 0 {
		limiter := ratelimit.New(appCfg.RateLimitPerMin, time.Minute)
		dashboardAPI = limiter.Middleware(logger)(dashboardAPI)
	}
	r.Mount("/api/dashboard", dashboardAPI)

	logger.Info("routes mounted",
		zap.Bool("metrics", appCfg.MetricsEnabled),
		zap.String("currency", appCfg.CurrencySymbol),
		zap.Int("default_trend_days", appCfg.DefaultTrendDays),
		zap.Int("rate_limit_per_minute", appCfg.RateLimitPerMin))

	return r, nil
}
