package testutil

import (
	"context"
	"sort"
	"sync"

	metricsstore "github.com/dalemusser/realtycrm/internal/app/store/metrics"
	"github.com/dalemusser/realtycrm/internal/domain/models"
)

// MemSource is an in-memory stand-in for metricsstore.Store. It applies
// the same filter, grouping and join semantics to records held in maps.
type MemSource struct {
	mu    sync.RWMutex
	colls map[string][]metricsstore.Record
	fail  map[string]error
}

// NewMemSource returns an empty MemSource.
func NewMemSource() *MemSource {
	return &MemSource{
		colls: map[string][]metricsstore.Record{},
		fail:  map[string]error{},
	}
}

// FailOn makes every call of op ("Count", "Sum", "GroupCount",
// "GroupSumByBucket", "FindRecent") return err.
func (m *MemSource) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[op] = err
}

// Insert adds a raw record to coll.
func (m *MemSource) Insert(coll string, r metricsstore.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.colls[coll] = append(m.colls[coll], r)
}

// AddUser stores u in the users collection.
func (m *MemSource) AddUser(u models.User) {
	m.Insert(metricsstore.Users, metricsstore.Record{
		"_id":        u.ID,
		"full_name":  u.FullName,
		"email":      u.Email,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	})
}

// AddLead stores l in the leads collection.
func (m *MemSource) AddLead(l models.Lead) {
	m.Insert(metricsstore.Leads, metricsstore.Record{
		"_id":         l.ID,
		"name":        l.Name,
		"status":      l.Status,
		"source":      l.Source,
		"assigned_to": l.AssignedTo,
		"added_by":    l.AddedBy,
		"created_at":  l.CreatedAt,
	})
}

// AddProject stores p in the projects collection.
func (m *MemSource) AddProject(p models.Project) {
	m.Insert(metricsstore.Projects, metricsstore.Record{
		"_id":        p.ID,
		"name":       p.Name,
		"status":     p.Status,
		"created_at": p.CreatedAt,
	})
}

// AddPayment stores p in the payments collection.
func (m *MemSource) AddPayment(p models.Payment) {
	r := metricsstore.Record{
		"_id":           p.ID,
		"amount":        p.Amount,
		"status":        p.Status,
		"associate":     p.Associate,
		"project":       p.Project,
		"customer_name": p.CustomerName,
		"created_at":    p.CreatedAt,
	}
	if p.ReceivedDate != nil {
		r["received_date"] = *p.ReceivedDate
	}
	m.Insert(metricsstore.Payments, r)
}

func (m *MemSource) Count(ctx context.Context, coll string, f metricsstore.Filter) (int64, error) {
	rows, err := m.match(ctx, "Count", coll, f)
	return int64(len(rows)), err
}

func (m *MemSource) Sum(ctx context.Context, coll string, f metricsstore.Filter, amountField string, multiplier float64) (float64, error) {
	rows, err := m.match(ctx, "Sum", coll, f)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, r := range rows {
		total += amount(r, amountField, multiplier)
	}
	return total, nil
}

func (m *MemSource) GroupCount(ctx context.Context, coll string, f metricsstore.Filter, field string) ([]metricsstore.KeyCount, error) {
	rows, err := m.match(ctx, "GroupCount", coll, f)
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, r := range rows {
		counts[r.String(field)]++
	}
	out := []metricsstore.KeyCount{}
	for k, n := range counts {
		out = append(out, metricsstore.KeyCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemSource) GroupSumByBucket(ctx context.Context, coll string, f metricsstore.Filter, dateField string, b metricsstore.Bucket, amountField string, multiplier float64) ([]metricsstore.BucketSum, error) {
	rows, err := m.match(ctx, "GroupSumByBucket", coll, f)
	if err != nil {
		return nil, err
	}
	sums := map[string]float64{}
	for _, r := range rows {
		t := r.Time(dateField)
		if t.IsZero() {
			continue
		}
		sums[t.UTC().Format(b.Format())] += amount(r, amountField, multiplier)
	}
	out := []metricsstore.BucketSum{}
	for k, v := range sums {
		out = append(out, metricsstore.BucketSum{Key: k, Sum: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemSource) FindRecent(ctx context.Context, coll string, f metricsstore.Filter, limit int64, joins []metricsstore.Join) ([]metricsstore.Record, error) {
	rows, err := m.match(ctx, "FindRecent", coll, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Time(metricsstore.CreatedAtField).After(rows[j].Time(metricsstore.CreatedAtField))
	})
	if int64(len(rows)) > limit {
		rows = rows[:limit]
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]metricsstore.Record, 0, len(rows))
	for _, r := range rows {
		rec := make(metricsstore.Record, len(r)+len(joins))
		for k, v := range r {
			rec[k] = v
		}
		for _, j := range joins {
			for _, ref := range m.colls[j.From] {
				if ref["_id"] == r[j.LocalField] {
					rec[j.As] = ref[j.Field]
					break
				}
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *MemSource) match(ctx context.Context, op, coll string, f metricsstore.Filter) ([]metricsstore.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail[op]; err != nil {
		return nil, err
	}

	var out []metricsstore.Record
	for _, r := range m.colls[coll] {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(r metricsstore.Record, f metricsstore.Filter) bool {
	for k, v := range f.Equals {
		if r[k] != v {
			return false
		}
	}
	if f.TimeField == "" || (f.Since.IsZero() && f.Until.IsZero()) {
		return true
	}
	t := r.Time(f.TimeField)
	if t.IsZero() {
		return false
	}
	if !f.Since.IsZero() && t.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !t.Before(f.Until) {
		return false
	}
	return true
}

func amount(r metricsstore.Record, field string, multiplier float64) float64 {
	if multiplier == 0 {
		multiplier = 1
	}
	if field == "" {
		return multiplier
	}
	return r.Float(field) * multiplier
}
