package dashboardqueries

import (
	"context"

	metricsstore "github.com/dalemusser/realtycrm/internal/app/store/metrics"
	"github.com/dalemusser/realtycrm/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// MonthlyCommission is an associate's commission on payments received in
// Month (YYYY-MM, UTC).
type MonthlyCommission struct {
	Month      string  `json:"month"`
	Commission float64 `json:"commission"`
}

// Performance is one associate's lead pipeline and commission history.
type Performance struct {
	LeadPerformance []StatusCount       `json:"leadPerformance"`
	CommissionTrend []MonthlyCommission `json:"commissionTrend"`
}

// AssociatePerformance breaks down all of the associate's leads by status
// and buckets commission on Received payments by month, oldest first.
// Months without Received payments are absent.
func (e *Engine) AssociatePerformance(ctx context.Context, associateID primitive.ObjectID) (Performance, error) {
	var (
		byStatus []metricsstore.KeyCount
		byMonth  []metricsstore.BucketSum
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byStatus, err = e.src.GroupCount(gctx, metricsstore.Leads,
			metricsstore.Where(map[string]any{fieldAssignedTo: associateID}), fieldStatus)
		return err
	})
	g.Go(func() error {
		var err error
		f := metricsstore.Where(map[string]any{
			fieldAssociate: associateID,
			fieldStatus:    models.PaymentStatusReceived,
		})
		byMonth, err = e.src.GroupSumByBucket(gctx, metricsstore.Payments, f,
			fieldReceivedDate, metricsstore.Month, fieldAmount, models.CommissionRate)
		return err
	})
	if err := g.Wait(); err != nil {
		return Performance{}, err
	}

	trend := make([]MonthlyCommission, 0, len(byMonth))
	for _, b := range byMonth {
		trend = append(trend, MonthlyCommission{Month: b.Key, Commission: b.Sum})
	}
	return Performance{
		LeadPerformance: statusCounts(byStatus),
		CommissionTrend: trend,
	}, nil
}
