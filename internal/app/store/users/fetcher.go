// Package userstore reads user records for the session layer.
package userstore

import (
	"context"
	"strings"

	"github.com/dalemusser/realtycrm/internal/app/system/auth"
	"github.com/dalemusser/realtycrm/internal/app/system/timeouts"
	"github.com/dalemusser/realtycrm/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// StatusDisabled marks a user who may no longer sign in.
const StatusDisabled = "disabled"

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *mongo.Collection
	log   *zap.Logger
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	return &Fetcher{users: db.Collection("users"), log: logger}
}

// FetchUser retrieves a user by ID and returns nil if the user is not found,
// disabled, or if any error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":       1,
		"full_name": 1,
		"email":     1,
		"role":      1,
		"status":    1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		if err != mongo.ErrNoDocuments {
			f.log.Warn("user reload failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}

	if strings.EqualFold(strings.TrimSpace(u.Status), StatusDisabled) {
		return nil
	}

	return &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  strings.ToLower(strings.TrimSpace(u.Role)),
	}
}
