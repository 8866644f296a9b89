package handlers

import (
	"context"
	"time"

	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/domain/repository"
)

// OrderFacade encapsulates order lifecycle operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, order *model.Order) (*model.Order, error)
	Order(ctx context.Context, orderID string) (*model.Order, error)
	ReadyForPickupOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, target model.OrderStatus) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID string, c model.Cancellation) (*model.Order, error)
	ApplyAssignment(ctx context.Context, orderID string, update repository.AssignmentUpdate) (*model.Order, error)
	ApplyDriverLocation(ctx context.Context, orderID string, lat, lon float64) (*model.Order, error)
}

// DriverFacade encapsulates driver registry operations exposed via HTTP.
type DriverFacade interface {
	RegisterDriver(ctx context.Context, driver *model.Driver) (*model.Driver, error)
	Driver(ctx context.Context, driverID string) (*model.Driver, error)
	SetDriverAvailability(ctx context.Context, driverID string, available bool) (*model.Driver, error)
	SetDriverLocation(ctx context.Context, driverID string, lat, lon float64) (*model.Driver, error)
	AcceptOrder(ctx context.Context, driverID, orderID string) (*model.Driver, error, error)
	RejectOrder(ctx context.Context, driverID, orderID, reason string) (*model.Driver, error, error)
	CompleteDelivery(ctx context.Context, driverID, orderID string) (*model.Driver, error)
}

// DispatchFacade aggregates the full set of operations used across handlers.
type DispatchFacade interface {
	OrderFacade
	DriverFacade
}

// AssignmentControl drives the background assignment engine.
type AssignmentControl interface {
	Start()
	Stop()
	Running() bool
	SetInterval(interval time.Duration)
	Sweep(ctx context.Context) error
}
