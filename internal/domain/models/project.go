// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project statuses.
const (
	ProjectStatusPlanning   = "Planning"
	ProjectStatusInProgress = "In Progress"
	ProjectStatusCompleted  = "Completed"
	ProjectStatusOnHold     = "On Hold"
)

// Project is a real-estate development offered for sale.
type Project struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Location       string             `bson:"location" json:"location"`
	Type           string             `bson:"type" json:"type"` // Residential | Commercial | Industrial
	Status         string             `bson:"status" json:"status"`
	Budget         float64            `bson:"budget" json:"budget"`
	TotalUnits     int                `bson:"total_units" json:"total_units"`
	AvailableUnits int                `bson:"available_units" json:"available_units"`
	PricePerUnit   float64            `bson:"price_per_unit" json:"price_per_unit"`
	CreatedBy      primitive.ObjectID `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
