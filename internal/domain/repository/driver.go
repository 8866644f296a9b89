package repository

import (
	"context"

	"github.com/quickbites/dispatch/internal/domain/model"
)

// DriverRepository describes persistence operations on driver records. All
// mutating calls are read-modify-write atomic per driver: implementations
// lock the driver row for the duration of the update.
type DriverRepository interface {
	Create(ctx context.Context, driver *model.Driver) error
	GetByID(ctx context.Context, id string) (*model.Driver, error)
	ListAvailable(ctx context.Context) ([]model.Driver, error)
	SetAvailability(ctx context.Context, id string, available bool) (*model.Driver, error)
	SetActive(ctx context.Context, id string, active bool) (*model.Driver, error)
	SetLocation(ctx context.Context, id string, loc model.Location) (*model.Driver, error)
	// AddPending appends the order to the driver's pending set. Returns the
	// driver and whether the entry was newly added (false on the idempotent
	// repeat).
	AddPending(ctx context.Context, id, orderID string) (*model.Driver, bool, error)
	// PromotePending moves the order from pending to current and clears
	// availability under the single-order dispatch policy.
	PromotePending(ctx context.Context, id, orderID string) (*model.Driver, error)
	RemovePending(ctx context.Context, id, orderID string) (*model.Driver, error)
	// CompleteOrder moves the order from current to completed. Availability is
	// restored separately by the Delivered transition, not here.
	CompleteOrder(ctx context.Context, id, orderID string) (*model.Driver, error)
}
