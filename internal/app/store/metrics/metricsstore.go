// Package metricsstore runs the counting, summing and grouping queries
// behind the dashboards. Collections, filters and groupings are passed as
// plain descriptors so callers never build pipelines themselves.
package metricsstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// bucketTimezone pins date bucketing so day and month keys do not depend
// on the server's locale.
const bucketTimezone = "UTC"

// Store issues dashboard aggregations against a Mongo database.
// Errors from the driver are returned unchanged.
type Store struct {
	db *mongo.Database
}

// New creates a metrics Store.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Count returns the number of documents in coll matching f.
func (s *Store) Count(ctx context.Context, coll string, f Filter) (int64, error) {
	return s.db.Collection(coll).CountDocuments(ctx, f.BSON())
}

// Sum adds amountField*multiplier over the matching documents.
// It returns 0 when nothing matches. A multiplier of 0 means 1.
func (s *Store) Sum(ctx context.Context, coll string, f Filter, amountField string, multiplier float64) (float64, error) {
	pipeline := []bson.M{
		{"$match": f.BSON()},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": amountExpr(amountField, multiplier)}}},
	}

	cur, err := s.db.Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var total float64
	if cur.Next(ctx) {
		var row struct {
			Total float64 `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
		total = row.Total
	}
	return total, cur.Err()
}

// GroupCount counts matching documents per distinct value of field,
// sorted by key.
func (s *Store) GroupCount(ctx context.Context, coll string, f Filter, field string) ([]KeyCount, error) {
	pipeline := []bson.M{
		{"$match": f.BSON()},
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"_id": 1}},
	}

	cur, err := s.db.Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []KeyCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GroupSumByBucket groups matching documents by the day or month of
// dateField (UTC) and sums amountField*multiplier per bucket. An empty
// amountField counts documents instead. Buckets come back in ascending
// key order and only buckets with at least one document appear.
func (s *Store) GroupSumByBucket(ctx context.Context, coll string, f Filter, dateField string, b Bucket, amountField string, multiplier float64) ([]BucketSum, error) {
	pipeline := []bson.M{
		{"$match": f.BSON()},
		{"$group": bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   b.mongoFormat(),
				"date":     "$" + dateField,
				"timezone": bucketTimezone,
			}},
			"total": bson.M{"$sum": amountExpr(amountField, multiplier)},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cur, err := s.db.Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []BucketSum{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindRecent returns up to limit matching documents, newest created_at
// first, with each join resolved into the record.
func (s *Store) FindRecent(ctx context.Context, coll string, f Filter, limit int64, joins []Join) ([]Record, error) {
	pipeline := []bson.M{
		{"$match": f.BSON()},
		{"$sort": bson.D{{Key: CreatedAtField, Value: -1}, {Key: "_id", Value: -1}}},
		{"$limit": limit},
	}
	for _, j := range joins {
		tmp := "_join_" + j.As
		pipeline = append(pipeline,
			bson.M{"$lookup": bson.M{
				"from":         j.From,
				"localField":   j.LocalField,
				"foreignField": "_id",
				"as":           tmp,
			}},
			bson.M{"$addFields": bson.M{
				j.As: bson.M{"$arrayElemAt": bson.A{"$" + tmp + "." + j.Field, 0}},
			}},
			bson.M{"$project": bson.M{tmp: 0}},
		)
	}

	cur, err := s.db.Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Record
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, toRecord(doc))
	}
	return out, cur.Err()
}

func amountExpr(field string, multiplier float64) any {
	if field == "" {
		if multiplier == 0 || multiplier == 1 {
			return 1
		}
		return multiplier
	}
	if multiplier == 0 || multiplier == 1 {
		return "$" + field
	}
	return bson.M{"$multiply": bson.A{"$" + field, multiplier}}
}

func toRecord(doc bson.M) Record {
	r := make(Record, len(doc))
	for k, v := range doc {
		if dt, ok := v.(primitive.DateTime); ok {
			r[k] = dt.Time().UTC()
			continue
		}
		r[k] = v
	}
	return r
}
