package dashboardqueries

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	metricsstore "github.com/dalemusser/realtycrm/internal/app/store/metrics"
	"github.com/dalemusser/realtycrm/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// Activity types.
const (
	ActivityLead    = "lead"
	ActivityPayment = "payment"
)

const (
	recentPerKind = 5
	maxActivities = 10
)

// Joined field names on activity records.
const (
	assigneeNameAs  = "assignee_name"
	associateNameAs = "associate_name"
)

// Activity is one entry of the recent-activity feed.
type Activity struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// feedSpec describes how one role reads and phrases its feed.
type feedSpec struct {
	leads, payments         metricsstore.Filter
	leadJoins, paymentJoins []metricsstore.Join
	leadMsg, paymentMsg     func(metricsstore.Record) string
}

// RecentActivities merges the newest leads and payments visible to id
// into one feed, newest first, at most ten entries. Entries with equal
// timestamps keep fetch order: leads before payments.
func (e *Engine) RecentActivities(ctx context.Context, id models.Identity) ([]Activity, error) {
	plan, err := e.feedFor(id)
	if err != nil {
		return nil, err
	}

	var leads, payments []metricsstore.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = e.src.FindRecent(gctx, metricsstore.Leads, plan.leads, recentPerKind, plan.leadJoins)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = e.src.FindRecent(gctx, metricsstore.Payments, plan.payments, recentPerKind, plan.paymentJoins)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	feed := make([]Activity, 0, len(leads)+len(payments))
	for _, r := range leads {
		feed = append(feed, Activity{Type: ActivityLead, Message: plan.leadMsg(r), Timestamp: r.Time(fieldCreatedAt)})
	}
	for _, r := range payments {
		feed = append(feed, Activity{Type: ActivityPayment, Message: plan.paymentMsg(r), Timestamp: r.Time(fieldCreatedAt)})
	}

	slices.SortStableFunc(feed, func(a, b Activity) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if len(feed) > maxActivities {
		feed = feed[:maxActivities]
	}
	return feed, nil
}

func (e *Engine) feedFor(id models.Identity) (feedSpec, error) {
	switch id := id.(type) {
	case models.AdminIdentity:
		return feedSpec{
			leadJoins: []metricsstore.Join{
				{LocalField: fieldAssignedTo, From: metricsstore.Users, Field: fieldFullName, As: assigneeNameAs},
			},
			// The associate name is resolved but the message does not use it.
			paymentJoins: []metricsstore.Join{
				{LocalField: fieldAssociate, From: metricsstore.Users, Field: fieldFullName, As: associateNameAs},
			},
			leadMsg: func(r metricsstore.Record) string {
				return fmt.Sprintf("New lead %s assigned to %s", r.String(fieldName), r.String(assigneeNameAs))
			},
			paymentMsg: func(r metricsstore.Record) string {
				return fmt.Sprintf("Payment of %s%s from %s", e.currency, formatAmount(r.Float(fieldAmount)), r.String(fieldCustomerName))
			},
		}, nil
	case models.AssociateIdentity:
		return feedSpec{
			leads:    metricsstore.Where(map[string]any{fieldAssignedTo: id.ID}),
			payments: metricsstore.Where(map[string]any{fieldAssociate: id.ID}),
			leadMsg: func(r metricsstore.Record) string {
				return fmt.Sprintf("New lead: %s (%s)", r.String(fieldName), r.String(fieldStatus))
			},
			paymentMsg: func(r metricsstore.Record) string {
				return fmt.Sprintf("Payment: %s%s from %s", e.currency, formatAmount(r.Float(fieldAmount)), r.String(fieldCustomerName))
			},
		}, nil
	}
	return feedSpec{}, ErrUnsupportedIdentity
}

// formatAmount prints the shortest decimal form: 1000, 1250.5.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
