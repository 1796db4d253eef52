// internal/domain/models/payment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses that dashboards aggregate. Other values may exist
// in the collection and are simply not summed.
const (
	PaymentStatusReceived = "Received"
	PaymentStatusPending  = "Pending"
)

// CommissionRate is the share of a payment credited to its associate.
const CommissionRate = 0.05

// Payment is money collected (or expected) from a customer for a project.
// ReceivedDate is only meaningful when Status is Received.
type Payment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Amount       float64            `bson:"amount" json:"amount"`
	Status       string             `bson:"status" json:"status"`
	Associate    primitive.ObjectID `bson:"associate" json:"associate"`
	Project      primitive.ObjectID `bson:"project" json:"project"`
	CustomerName string             `bson:"customer_name" json:"customer_name"`
	ReceivedDate *time.Time         `bson:"received_date,omitempty" json:"received_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
