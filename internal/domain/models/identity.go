// internal/domain/models/identity.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Identity is the authenticated caller as seen by dashboard queries.
// It is either AdminIdentity or AssociateIdentity; the unexported
// method keeps other packages from adding variants.
type Identity interface {
	UserID() primitive.ObjectID
	identity()
}

// AdminIdentity sees every lead, project and payment.
type AdminIdentity struct {
	ID primitive.ObjectID
}

// AssociateIdentity sees only the leads assigned to it and its own payments.
type AssociateIdentity struct {
	ID primitive.ObjectID
}

func (a AdminIdentity) UserID() primitive.ObjectID     { return a.ID }
func (a AssociateIdentity) UserID() primitive.ObjectID { return a.ID }

func (AdminIdentity) identity()     {}
func (AssociateIdentity) identity() {}

// IdentityFor maps a stored role to its Identity variant.
// ok is false for roles without dashboard access.
func IdentityFor(role string, id primitive.ObjectID) (Identity, bool) {
	switch role {
	case RoleAdmin:
		return AdminIdentity{ID: id}, true
	case RoleAssociate:
		return AssociateIdentity{ID: id}, true
	default:
		return nil, false
	}
}
