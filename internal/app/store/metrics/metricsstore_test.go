package metricsstore_test

import (
	"math"
	"testing"
	"time"

	metricsstore "github.com/dalemusser/realtycrm/internal/app/store/metrics"
	"github.com/dalemusser/realtycrm/internal/domain/models"
	"github.com/dalemusser/realtycrm/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFilterBSON(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	base := metricsstore.Where(map[string]any{"status": "Received"})
	f := base.With("associate", "a1").Between("received_date", since, until)

	got := f.BSON()
	if got["status"] != "Received" || got["associate"] != "a1" {
		t.Fatalf("equality conditions missing: %v", got)
	}
	rng, ok := got["received_date"].(bson.M)
	if !ok {
		t.Fatalf("received_date range missing: %v", got)
	}
	if rng["$gte"] != since || rng["$lt"] != until {
		t.Errorf("range = %v, want [%v, %v)", rng, since, until)
	}

	if _, ok := base.Equals["associate"]; ok {
		t.Error("With mutated the receiver's conditions")
	}
	if len(metricsstore.Filter{}.BSON()) != 0 {
		t.Error("empty filter should render as an empty document")
	}
}

func TestStore_CountAndSum(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateAssociate(ctx, "Asha Rao", "asha@example.com")
	fixtures.CreateAdmin(ctx, "Root Admin", "root@example.com")
	now := time.Now().UTC()
	fixtures.CreatePayment(ctx, 1000, models.PaymentStatusReceived, a.ID, "Ravi", now)
	fixtures.CreatePayment(ctx, 500, models.PaymentStatusReceived, a.ID, "Meera", now)
	fixtures.CreatePayment(ctx, 300, models.PaymentStatusPending, a.ID, "Kiran", now)

	store := metricsstore.New(db)

	n, err := store.Count(ctx, metricsstore.Users, metricsstore.Where(map[string]any{"role": models.RoleAssociate}))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("associates = %d, want 1", n)
	}

	received := metricsstore.Where(map[string]any{"status": models.PaymentStatusReceived})
	sum, err := store.Sum(ctx, metricsstore.Payments, received, "amount", 1)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if sum != 1500 {
		t.Errorf("received sum = %v, want 1500", sum)
	}

	commission, err := store.Sum(ctx, metricsstore.Payments, received, "amount", models.CommissionRate)
	if err != nil {
		t.Fatalf("Sum with multiplier failed: %v", err)
	}
	if math.Abs(commission-75) > 1e-9 {
		t.Errorf("commission = %v, want 75", commission)
	}

	none, err := store.Sum(ctx, metricsstore.Payments, metricsstore.Where(map[string]any{"status": "Refunded"}), "amount", 1)
	if err != nil {
		t.Fatalf("Sum over nothing failed: %v", err)
	}
	if none != 0 {
		t.Errorf("empty sum = %v, want 0", none)
	}
}

func TestStore_GroupCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateProject(ctx, "Palm Grove", models.ProjectStatusPlanning)
	fixtures.CreateProject(ctx, "Lake View", models.ProjectStatusPlanning)
	fixtures.CreateProject(ctx, "Hill Crest", models.ProjectStatusCompleted)

	rows, err := metricsstore.New(db).GroupCount(ctx, metricsstore.Projects, metricsstore.Filter{}, "status")
	if err != nil {
		t.Fatalf("GroupCount failed: %v", err)
	}

	want := []metricsstore.KeyCount{
		{Key: models.ProjectStatusCompleted, Count: 1},
		{Key: models.ProjectStatusPlanning, Count: 2},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d groups, want %d: %v", len(rows), len(want), rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("group %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestStore_GroupSumByBucket(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateAssociate(ctx, "Asha Rao", "asha@example.com")
	fixtures.CreateLead(ctx, "L1", models.LeadStatusNew, models.LeadSourceWebsite, a.ID, time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC))
	fixtures.CreateLead(ctx, "L2", models.LeadStatusNew, models.LeadSourceWebsite, a.ID, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	fixtures.CreateLead(ctx, "L3", models.LeadStatusNew, models.LeadSourceWebsite, a.ID, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC))
	fixtures.CreateLead(ctx, "Old", models.LeadStatusNew, models.LeadSourceWebsite, a.ID, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	fixtures.CreatePayment(ctx, 2000, models.PaymentStatusReceived, a.ID, "Ravi", time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC))
	fixtures.CreatePayment(ctx, 1000, models.PaymentStatusReceived, a.ID, "Meera", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))

	store := metricsstore.New(db)

	since := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	days, err := store.GroupSumByBucket(ctx, metricsstore.Leads,
		metricsstore.Filter{}.Between("created_at", since, time.Time{}),
		"created_at", metricsstore.Day, "", 1)
	if err != nil {
		t.Fatalf("GroupSumByBucket(day) failed: %v", err)
	}
	wantDays := []metricsstore.BucketSum{
		{Key: "2026-03-01", Sum: 2},
		{Key: "2026-03-03", Sum: 1},
	}
	if len(days) != len(wantDays) {
		t.Fatalf("got %v, want %v", days, wantDays)
	}
	for i := range wantDays {
		if days[i] != wantDays[i] {
			t.Errorf("day %d = %+v, want %+v", i, days[i], wantDays[i])
		}
	}

	months, err := store.GroupSumByBucket(ctx, metricsstore.Payments,
		metricsstore.Where(map[string]any{"status": models.PaymentStatusReceived}),
		"received_date", metricsstore.Month, "amount", models.CommissionRate)
	if err != nil {
		t.Fatalf("GroupSumByBucket(month) failed: %v", err)
	}
	wantMonths := []metricsstore.BucketSum{
		{Key: "2026-02", Sum: 100},
		{Key: "2026-03", Sum: 50},
	}
	if len(months) != len(wantMonths) {
		t.Fatalf("got %v, want %v", months, wantMonths)
	}
	for i := range wantMonths {
		if months[i].Key != wantMonths[i].Key || math.Abs(months[i].Sum-wantMonths[i].Sum) > 1e-9 {
			t.Errorf("month %d = %+v, want %+v", i, months[i], wantMonths[i])
		}
	}
}

func TestStore_FindRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateAssociate(ctx, "Asha Rao", "asha@example.com")
	other := fixtures.CreateAssociate(ctx, "Bilal Khan", "bilal@example.com")
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"First", "Second", "Third"} {
		fixtures.CreateLead(ctx, name, models.LeadStatusNew, models.LeadSourceReferral, a.ID, base.Add(time.Duration(i)*time.Hour))
	}
	fixtures.CreateLead(ctx, "Elsewhere", models.LeadStatusNew, models.LeadSourceReferral, other.ID, base.Add(5*time.Hour))

	joins := []metricsstore.Join{{LocalField: "assigned_to", From: metricsstore.Users, Field: "full_name", As: "assignee_name"}}
	recs, err := metricsstore.New(db).FindRecent(ctx, metricsstore.Leads,
		metricsstore.Where(map[string]any{"assigned_to": a.ID}), 2, joins)
	if err != nil {
		t.Fatalf("FindRecent failed: %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].String("name") != "Third" || recs[1].String("name") != "Second" {
		t.Errorf("order = [%s %s], want [Third Second]", recs[0].String("name"), recs[1].String("name"))
	}
	if got := recs[0].String("assignee_name"); got != "Asha Rao" {
		t.Errorf("assignee_name = %q, want %q", got, "Asha Rao")
	}
	if _, leaked := recs[0]["_join_assignee_name"]; leaked {
		t.Error("temporary lookup array should be projected away")
	}
	if got := recs[0].Time("created_at"); !got.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("created_at = %v, want %v", got, base.Add(2*time.Hour))
	}
}

func TestRecordAccessors(t *testing.T) {
	r := metricsstore.Record{"i32": int32(3), "i64": int64(4), "f": 2.5, "s": "x", "n": nil}
	if r.Float("i32") != 3 || r.Float("i64") != 4 || r.Float("f") != 2.5 {
		t.Errorf("Float conversions wrong: %v %v %v", r.Float("i32"), r.Float("i64"), r.Float("f"))
	}
	if r.Float("missing") != 0 || r.String("n") != "" || !r.Time("s").IsZero() {
		t.Error("missing or mistyped fields should yield zero values")
	}
}
