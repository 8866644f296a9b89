package repository

import (
	"context"
	"time"

	"github.com/quickbites/dispatch/internal/domain/model"
)

// AssignmentUpdate carries the fields the delivery side writes onto an order
// when the assignment handshake advances. The order ID doubles as the
// idempotency key for remote callers.
type AssignmentUpdate struct {
	DriverID     string
	Status       model.AssignmentStatus
	HistoryEntry model.AssignmentRecord
	DriverInfo   *model.DriverInfo
	ClearPending bool
}

// OrderRepository describes persistence operations on order records.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListReadyForPickup(ctx context.Context) ([]model.Order, error)
	// UpdateStatus sets the new status and appends its timestamp inside a
	// row-locked transaction so concurrent transitions on one order are
	// serialized. Returns the updated order.
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus, at time.Time) (*model.Order, error)
	Cancel(ctx context.Context, id string, c model.Cancellation) (*model.Order, error)
	UpdateAssignment(ctx context.Context, id string, update AssignmentUpdate) (*model.Order, error)
	UpdateDriverLocation(ctx context.Context, id string, loc model.Location) (*model.Order, error)
}
