// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging and CORS; everything specific to the CRM dashboard
// service lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration (cookies are issued by the login service)
	SessionKey    string // Secret key for signing session cookies (must match the issuer)
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)
	SessionTTL    time.Duration

	// Dashboard behaviour
	CurrencySymbol   string        // Prefix for amounts in activity messages
	DefaultTrendDays int           // Trend window when ?period is omitted
	DashboardTimeout time.Duration // Deadline for one dashboard request
	RateLimitPerMin  int           // Dashboard requests per caller per minute (0 disables)

	// Observability
	MetricsEnabled bool // Serve Prometheus metrics on /metrics
}
