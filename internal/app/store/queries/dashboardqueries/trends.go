package dashboardqueries

import (
	"context"
	"math"
	"time"

	metricsstore "github.com/dalemusser/realtycrm/internal/app/store/metrics"
	"github.com/dalemusser/realtycrm/internal/domain/models"
)

// DailyCount is the number of leads created on Date (YYYY-MM-DD, UTC).
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DailyRevenue is the Received amount on Date (YYYY-MM-DD, UTC).
type DailyRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// LeadsTrend counts leads created in the last periodDays days, one entry
// per UTC day that has at least one lead, oldest first. Associates only
// see their own leads.
func (e *Engine) LeadsTrend(ctx context.Context, periodDays int, id models.Identity) ([]DailyCount, error) {
	if periodDays <= 0 {
		return nil, ErrInvalidPeriod
	}
	scope, err := leadScope(id)
	if err != nil {
		return nil, err
	}

	f := scope.Between(fieldCreatedAt, e.windowStart(periodDays), time.Time{})
	rows, err := e.src.GroupSumByBucket(ctx, metricsstore.Leads, f, fieldCreatedAt, metricsstore.Day, "", 1)
	if err != nil {
		return nil, err
	}

	out := make([]DailyCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, DailyCount{Date: r.Key, Count: int64(math.Round(r.Sum))})
	}
	return out, nil
}

// RevenueTrend sums Received payments by UTC day of received_date over the
// last periodDays days, oldest first. Callers must restrict it to admins.
func (e *Engine) RevenueTrend(ctx context.Context, periodDays int) ([]DailyRevenue, error) {
	if periodDays <= 0 {
		return nil, ErrInvalidPeriod
	}

	f := metricsstore.Where(map[string]any{fieldStatus: models.PaymentStatusReceived}).
		Between(fieldReceivedDate, e.windowStart(periodDays), time.Time{})
	rows, err := e.src.GroupSumByBucket(ctx, metricsstore.Payments, f, fieldReceivedDate, metricsstore.Day, fieldAmount, 1)
	if err != nil {
		return nil, err
	}

	out := make([]DailyRevenue, 0, len(rows))
	for _, r := range rows {
		out = append(out, DailyRevenue{Date: r.Key, Revenue: r.Sum})
	}
	return out, nil
}

func (e *Engine) windowStart(periodDays int) time.Time {
	return e.now().UTC().AddDate(0, 0, -periodDays)
}
