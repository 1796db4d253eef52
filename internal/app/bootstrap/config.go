// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/realtycrm/internal/app/store/queries/dashboardqueries"
	"github.com/dalemusser/realtycrm/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the dashboard service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: REALTYCRM_MONGO_URI, REALTYCRM_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "realty_crm", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must match the login service)"},
	{Name: "session_name", Default: "realtycrm-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_ttl", Default: "24h", Desc: "Session cookie lifetime"},

	// Dashboard
	{Name: "currency_symbol", Default: dashboardqueries.DefaultCurrencySymbol, Desc: "Currency symbol used in activity messages"},
	{Name: "default_trend_days", Default: 30, Desc: "Trend window in days when ?period is omitted"},
	{Name: "rate_limit_per_minute", Default: 120, Desc: "Dashboard requests per caller per minute (0 disables)"},
	{Name: "timeout_dashboard", Default: timeouts.DefaultDashboard.String(), Desc: "Deadline for one dashboard request (e.g., 15s)"},

	// Observability
	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics on /metrics"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges, with precedence
// flags > env > files > defaults:
//   - .env files
//   - config.yaml/json/toml files
//   - environment variables (WAFFLE_* for core, REALTYCRM_* for app)
//   - command-line flags
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "REALTYCRM", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionTTL:    appValues.Duration("session_ttl", 24*time.Hour),

		CurrencySymbol:   strings.TrimSpace(appValues.String("currency_symbol")),
		DefaultTrendDays: appValues.Int("default_trend_days"),
		DashboardTimeout: appValues.Duration("timeout_dashboard", timeouts.DefaultDashboard),
		RateLimitPerMin:  appValues.Int("rate_limit_per_minute"),

		MetricsEnabled: appValues.Bool("metrics_enabled"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI format is checked here to catch configuration errors
// before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database must be set")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	if appCfg.DefaultTrendDays <= 0 {
		return fmt.Errorf("default_trend_days must be positive, got %d", appCfg.DefaultTrendDays)
	}
	if appCfg.CurrencySymbol == "" {
		return errors.New("currency_symbol must not be empty")
	}
	if appCfg.DashboardTimeout <= 0 {
		return fmt.Errorf("timeout_dashboard must be positive, got %s", appCfg.DashboardTimeout)
	}
	if appCfg.RateLimitPerMin < 0 {
		return fmt.Errorf("rate_limit_per_minute must not be negative, got %d", appCfg.RateLimitPerMin)
	}
	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		return errors.New("session_key must be set in production")
	}
	return nil
}
