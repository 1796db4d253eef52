package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/realtycrm/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert into %s: %v", coll, err)
	}
}

// CreateUser creates a user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  fullName,
		Email:     email,
		Role:      role,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateAdmin creates an admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAdmin)
}

// CreateAssociate creates an associate user.
func (f *Fixtures) CreateAssociate(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAssociate)
}

// CreateLead creates a lead assigned to the given associate.
func (f *Fixtures) CreateLead(ctx context.Context, name, status, source string, assignedTo primitive.ObjectID, createdAt time.Time) models.Lead {
	f.t.Helper()

	l := models.Lead{
		ID:         primitive.NewObjectID(),
		Name:       name,
		Phone:      "555-0100",
		Source:     source,
		Status:     status,
		AssignedTo: assignedTo,
		AddedBy:    assignedTo,
		CreatedAt:  createdAt.UTC(),
		UpdatedAt:  createdAt.UTC(),
	}
	f.insert(ctx, "leads", l)
	return l
}

// CreateProject creates a project in the given status.
func (f *Fixtures) CreateProject(ctx context.Context, name, status string) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:             primitive.NewObjectID(),
		Name:           name,
		Location:       "Test City",
		Type:           "Residential",
		Status:         status,
		Budget:         1000000,
		TotalUnits:     10,
		AvailableUnits: 10,
		PricePerUnit:   100000,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "projects", p)
	return p
}

// CreatePayment creates a payment. Received payments get receivedAt as
// their received date; other statuses leave it unset.
func (f *Fixtures) CreatePayment(ctx context.Context, amount float64, status string, associate primitive.ObjectID, customer string, receivedAt time.Time) models.Payment {
	f.t.Helper()

	p := models.Payment{
		ID:           primitive.NewObjectID(),
		Amount:       amount,
		Status:       status,
		Associate:    associate,
		Project:      primitive.NewObjectID(),
		CustomerName: customer,
		CreatedAt:    receivedAt.UTC(),
		UpdatedAt:    receivedAt.UTC(),
	}
	if status == models.PaymentStatusReceived {
		rd := receivedAt.UTC()
		p.ReceivedDate = &rd
	}
	f.insert(ctx, "payments", p)
	return p
}
