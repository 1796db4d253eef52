// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/realtycrm/internal/app/system/auth"
	"github.com/dalemusser/realtycrm/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false. This ensures callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// Identity resolves the signed-in user to the dashboard identity for their
// role. ok is false for anonymous requests and for roles without a dashboard.
func Identity(r *http.Request) (models.Identity, bool) {
	role, _, userID, ok := UserCtx(r)
	if !ok {
		return nil, false
	}
	return models.IdentityFor(role, userID)
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsAssociate reports whether the current request's user is an associate.
func IsAssociate(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAssociate
}

// CanViewAssociate reports whether the current user may see the given
// associate's figures: admins see everyone, associates only themselves.
func CanViewAssociate(r *http.Request, associateID primitive.ObjectID) bool {
	switch id, _ := Identity(r); id := id.(type) {
	case models.AdminIdentity:
		return true
	case models.AssociateIdentity:
		return id.ID == associateID
	}
	return false
}
