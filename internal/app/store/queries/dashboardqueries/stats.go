package dashboardqueries

import (
	"context"
	"encoding/json"
	"math"
	"strconv"

	metricsstore "github.com/dalemusser/realtycrm/internal/app/store/metrics"
	"github.com/dalemusser/realtycrm/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// AdminStats are the organisation-wide totals.
type AdminStats struct {
	TotalLeads      int64   `json:"totalLeads"`
	TotalProjects   int64   `json:"totalProjects"`
	TotalAssociates int64   `json:"totalAssociates"`
	TotalPayments   int64   `json:"totalPayments"`
	TotalRevenue    float64 `json:"totalRevenue"`
	PendingRevenue  float64 `json:"pendingRevenue"`
	MonthlyRevenue  float64 `json:"monthlyRevenue"`
}

// AssociateStats are one associate's totals. Commission figures are
// CommissionRate of the underlying payment sums.
type AssociateStats struct {
	TotalLeads        int64   `json:"totalLeads"`
	ConvertedLeads    int64   `json:"convertedLeads"`
	TotalPayments     int64   `json:"totalPayments"`
	TotalCommission   float64 `json:"totalCommission"`
	PendingCommission float64 `json:"pendingCommission"`
	MonthlyCommission float64 `json:"monthlyCommission"`
	ConversionRate    Percent `json:"conversionRate"`
}

// Stats holds exactly one of the role variants and encodes as that
// variant's flat object.
type Stats struct {
	Admin     *AdminStats
	Associate *AssociateStats
}

func (s Stats) MarshalJSON() ([]byte, error) {
	switch {
	case s.Admin != nil:
		return json.Marshal(s.Admin)
	case s.Associate != nil:
		return json.Marshal(s.Associate)
	}
	return []byte("{}"), nil
}

// Percent is a percentage rounded to one decimal place. It encodes as a
// string with exactly one decimal ("25.0").
type Percent float64

func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', 1, 64)
}

func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func conversionRate(converted, total int64) Percent {
	if total == 0 {
		return 0
	}
	return Percent(math.Round(float64(converted)/float64(total)*1000) / 10)
}

// Stats returns the summary figures for id. The underlying counts and
// sums run concurrently; the first failure cancels the rest and is
// returned as is.
func (e *Engine) Stats(ctx context.Context, id models.Identity) (Stats, error) {
	switch id := id.(type) {
	case models.AdminIdentity:
		s, err := e.adminStats(ctx)
		if err != nil {
			return Stats{}, err
		}
		return Stats{Admin: s}, nil
	case models.AssociateIdentity:
		s, err := e.associateStats(ctx, id)
		if err != nil {
			return Stats{}, err
		}
		return Stats{Associate: s}, nil
	}
	return Stats{}, ErrUnsupportedIdentity
}

func (e *Engine) adminStats(ctx context.Context) (*AdminStats, error) {
	now := e.now().UTC()
	received := metricsstore.Where(map[string]any{fieldStatus: models.PaymentStatusReceived})
	pending := metricsstore.Where(map[string]any{fieldStatus: models.PaymentStatusPending})

	var out AdminStats
	g, ctx := errgroup.WithContext(ctx)

	e.goCount(ctx, g, &out.TotalLeads, metricsstore.Leads, metricsstore.Filter{})
	e.goCount(ctx, g, &out.TotalProjects, metricsstore.Projects, metricsstore.Filter{})
	e.goCount(ctx, g, &out.TotalAssociates, metricsstore.Users,
		metricsstore.Where(map[string]any{fieldRole: models.RoleAssociate}))
	e.goCount(ctx, g, &out.TotalPayments, metricsstore.Payments, metricsstore.Filter{})

	e.goSum(ctx, g, &out.TotalRevenue, received, 1)
	e.goSum(ctx, g, &out.PendingRevenue, pending, 1)
	e.goSum(ctx, g, &out.MonthlyRevenue,
		received.Between(fieldReceivedDate, startOfMonth(now), now), 1)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *Engine) associateStats(ctx context.Context, id models.AssociateIdentity) (*AssociateStats, error) {
	now := e.now().UTC()
	leads := metricsstore.Where(map[string]any{fieldAssignedTo: id.ID})
	payments := metricsstore.Where(map[string]any{fieldAssociate: id.ID})
	received := payments.With(fieldStatus, models.PaymentStatusReceived)

	var out AssociateStats
	g, ctx := errgroup.WithContext(ctx)

	e.goCount(ctx, g, &out.TotalLeads, metricsstore.Leads, leads)
	e.goCount(ctx, g, &out.ConvertedLeads, metricsstore.Leads,
		leads.With(fieldStatus, models.LeadStatusClosedWon))
	e.goCount(ctx, g, &out.TotalPayments, metricsstore.Payments, payments)

	e.goSum(ctx, g, &out.TotalCommission, received, models.CommissionRate)
	e.goSum(ctx, g, &out.PendingCommission,
		payments.With(fieldStatus, models.PaymentStatusPending), models.CommissionRate)
	e.goSum(ctx, g, &out.MonthlyCommission,
		received.Between(fieldReceivedDate, startOfMonth(now), now), models.CommissionRate)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.ConversionRate = conversionRate(out.ConvertedLeads, out.TotalLeads)
	return &out, nil
}

// goCount and goSum each write to their own destination, so the fan-out
// needs no locking.
func (e *Engine) goCount(ctx context.Context, g *errgroup.Group, dst *int64, coll string, f metricsstore.Filter) {
	g.Go(func() error {
		n, err := e.src.Count(ctx, coll, f)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	})
}

func (e *Engine) goSum(ctx context.Context, g *errgroup.Group, dst *float64, f metricsstore.Filter, multiplier float64) {
	g.Go(func() error {
		v, err := e.src.Sum(ctx, metricsstore.Payments, f, fieldAmount, multiplier)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
}
