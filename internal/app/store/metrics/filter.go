package metricsstore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names read by dashboard queries.
const (
	Leads    = "leads"
	Projects = "projects"
	Payments = "payments"
	Users    = "users"
)

// CreatedAtField orders FindRecent results.
const CreatedAtField = "created_at"

// Bucket is the granularity of a date-bucketed aggregation.
type Bucket int

const (
	Day   Bucket = iota // YYYY-MM-DD
	Month               // YYYY-MM
)

// Format returns the Go time layout for the bucket key.
func (b Bucket) Format() string {
	if b == Month {
		return "2006-01"
	}
	return "2006-01-02"
}

// mongoFormat returns the $dateToString format for the bucket key.
func (b Bucket) mongoFormat() string {
	if b == Month {
		return "%Y-%m"
	}
	return "%Y-%m-%d"
}

// Filter selects documents by field equality and an optional time window
// on a single date field. A zero Since or Until leaves that side open.
type Filter struct {
	Equals    map[string]any
	TimeField string
	Since     time.Time // inclusive
	Until     time.Time // exclusive
}

// Where returns a filter matching every field=value pair.
func Where(equals map[string]any) Filter {
	return Filter{Equals: equals}
}

// Between narrows f to documents whose field falls in [since, until).
func (f Filter) Between(field string, since, until time.Time) Filter {
	f.TimeField = field
	f.Since = since
	f.Until = until
	return f
}

// With returns a copy of f with one more equality condition.
func (f Filter) With(field string, value any) Filter {
	eq := make(map[string]any, len(f.Equals)+1)
	for k, v := range f.Equals {
		eq[k] = v
	}
	eq[field] = value
	f.Equals = eq
	return f
}

// BSON renders f as a Mongo query document.
func (f Filter) BSON() bson.M {
	m := bson.M{}
	for k, v := range f.Equals {
		m[k] = v
	}
	if f.TimeField != "" && (!f.Since.IsZero() || !f.Until.IsZero()) {
		rng := bson.M{}
		if !f.Since.IsZero() {
			rng["$gte"] = f.Since
		}
		if !f.Until.IsZero() {
			rng["$lt"] = f.Until
		}
		m[f.TimeField] = rng
	}
	return m
}

// Join resolves a reference field against another collection's _id and
// copies one field of the referenced document into the record under As.
type Join struct {
	LocalField string
	From       string
	Field      string
	As         string
}

// KeyCount is one group of a GroupCount aggregation.
type KeyCount struct {
	Key   string `bson:"_id" json:"key"`
	Count int64  `bson:"count" json:"count"`
}

// BucketSum is one bucket of a GroupSumByBucket aggregation.
type BucketSum struct {
	Key string  `bson:"_id" json:"key"`
	Sum float64 `bson:"total" json:"sum"`
}

// Record is a loosely typed document returned by FindRecent, with any
// joined fields inlined.
type Record map[string]any

// String returns the string value at field, or "".
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Float returns the numeric value at field as float64, or 0.
func (r Record) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Time returns the timestamp at field, or the zero time.
func (r Record) Time(field string) time.Time {
	switch v := r[field].(type) {
	case time.Time:
		return v
	case primitive.DateTime:
		return v.Time()
	}
	return time.Time{}
}
