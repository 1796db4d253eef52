// internal/domain/models/lead.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead statuses, in pipeline order.
const (
	LeadStatusNew         = "New"
	LeadStatusContacted   = "Contacted"
	LeadStatusQualified   = "Qualified"
	LeadStatusProposal    = "Proposal"
	LeadStatusNegotiation = "Negotiation"
	LeadStatusClosedWon   = "Closed Won"
	LeadStatusClosedLost  = "Closed Lost"
)

// Lead sources.
const (
	LeadSourceWebsite  = "Website"
	LeadSourceFacebook = "Facebook"
	LeadSourceGoogle   = "Google"
	LeadSourceReferral = "Referral"
	LeadSourceWalkIn   = "Walk-in"
	LeadSourceOther    = "Other"
)

// Lead is a prospective buyer tracked by the sales team.
// AssignedTo is the associate who owns the lead; AddedBy is whoever entered it.
type Lead struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Phone        string             `bson:"phone" json:"phone"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	Source       string             `bson:"source" json:"source"`
	Status       string             `bson:"status" json:"status"`
	Priority     string             `bson:"priority,omitempty" json:"priority,omitempty"`
	Budget       float64            `bson:"budget,omitempty" json:"budget,omitempty"`
	Requirements string             `bson:"requirements,omitempty" json:"requirements,omitempty"`
	AssignedTo   primitive.ObjectID `bson:"assigned_to" json:"assigned_to"`
	AddedBy      primitive.ObjectID `bson:"added_by" json:"added_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
