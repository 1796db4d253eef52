// Package dashboardqueries computes the role-scoped figures shown on the
// admin and associate dashboards: summary stats, daily trends, categorical
// breakdowns, the recent-activity feed and per-associate performance.
//
// Every query goes through a Source, so the package holds no Mongo syntax.
// Source errors are returned to the caller unchanged.
package dashboardqueries

import (
	"context"
	"errors"
	"time"

	metricsstore "github.com/dalemusser/realtycrm/internal/app/store/metrics"
	"github.com/dalemusser/realtycrm/internal/domain/models"
)

// Source is the read-only query capability the engine needs.
// *metricsstore.Store satisfies it.
type Source interface {
	Count(ctx context.Context, coll string, f metricsstore.Filter) (int64, error)
	Sum(ctx context.Context, coll string, f metricsstore.Filter, amountField string, multiplier float64) (float64, error)
	GroupCount(ctx context.Context, coll string, f metricsstore.Filter, field string) ([]metricsstore.KeyCount, error)
	GroupSumByBucket(ctx context.Context, coll string, f metricsstore.Filter, dateField string, b metricsstore.Bucket, amountField string, multiplier float64) ([]metricsstore.BucketSum, error)
	FindRecent(ctx context.Context, coll string, f metricsstore.Filter, limit int64, joins []metricsstore.Join) ([]metricsstore.Record, error)
}

var (
	// ErrUnsupportedIdentity is returned for an Identity that is neither
	// an admin nor an associate (including nil).
	ErrUnsupportedIdentity = errors.New("dashboard: unsupported identity")

	// ErrInvalidPeriod is returned when a trend window is not a positive
	// number of days.
	ErrInvalidPeriod = errors.New("dashboard: period must be a positive number of days")
)

// DefaultCurrencySymbol prefixes amounts in activity messages.
const DefaultCurrencySymbol = "₹"

// Document fields referenced by the queries.
const (
	fieldAssignedTo   = "assigned_to"
	fieldAssociate    = "associate"
	fieldStatus       = "status"
	fieldSource       = "source"
	fieldRole         = "role"
	fieldAmount       = "amount"
	fieldReceivedDate = "received_date"
	fieldCreatedAt    = metricsstore.CreatedAtField
	fieldName         = "name"
	fieldCustomerName = "customer_name"
	fieldFullName     = "full_name"
)

// Engine answers dashboard queries. It is safe for concurrent use; all
// state lives in the Source.
type Engine struct {
	src      Source
	currency string
	now      func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCurrencySymbol sets the symbol used in activity messages.
func WithCurrencySymbol(sym string) Option {
	return func(e *Engine) {
		if sym != "" {
			e.currency = sym
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine reading from src.
func New(src Source, opts ...Option) *Engine {
	e := &Engine{
		src:      src,
		currency: DefaultCurrencySymbol,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// leadScope restricts lead queries to the associate's own leads.
func leadScope(id models.Identity) (metricsstore.Filter, error) {
	switch id := id.(type) {
	case models.AdminIdentity:
		return metricsstore.Filter{}, nil
	case models.AssociateIdentity:
		return metricsstore.Where(map[string]any{fieldAssignedTo: id.ID}), nil
	}
	return metricsstore.Filter{}, ErrUnsupportedIdentity
}

// paymentScope restricts payment queries to the associate's own payments.
func paymentScope(id models.Identity) (metricsstore.Filter, error) {
	switch id := id.(type) {
	case models.AdminIdentity:
		return metricsstore.Filter{}, nil
	case models.AssociateIdentity:
		return metricsstore.Where(map[string]any{fieldAssociate: id.ID}), nil
	}
	return metricsstore.Filter{}, ErrUnsupportedIdentity
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
