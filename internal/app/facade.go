package app

import (
	"context"
	"log/slog"

	"github.com/quickbites/dispatch/internal/adapter/orders"
	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/domain/repository"
	"github.com/quickbites/dispatch/internal/notify"
	"github.com/quickbites/dispatch/internal/usecase"
)

// DispatchFacade aggregates the order and driver use cases behind the HTTP
// handlers and the assignment engine. The delivery-side flows reach order
// records only through the gateway, never the local repository.
type DispatchFacade struct {
	status  *usecase.StatusUseCase
	drivers *usecase.DriverUseCase
	gateway orders.Gateway
	hub     notify.Publisher
	logger  *slog.Logger
}

// NewDispatchFacade constructs the facade.
func NewDispatchFacade(status *usecase.StatusUseCase, drivers *usecase.DriverUseCase, gateway orders.Gateway, hub notify.Publisher, logger *slog.Logger) *DispatchFacade {
	return &DispatchFacade{status: status, drivers: drivers, gateway: gateway, hub: hub, logger: logger}
}

// --- Order service surface ---

func (f *DispatchFacade) PlaceOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	return f.status.Place(ctx, order)
}

func (f *DispatchFacade) Order(ctx context.Context, orderID string) (*model.Order, error) {
	return f.status.Get(ctx, orderID)
}

func (f *DispatchFacade) ReadyForPickupOrders(ctx context.Context) ([]model.Order, error) {
	return f.status.ReadyForPickup(ctx)
}

// UpdateOrderStatus runs the state machine. A Delivered transition also
// finishes the delivery on the driver side: the order leaves the driver's
// current set and availability is restored in the same flow.
func (f *DispatchFacade) UpdateOrderStatus(ctx context.Context, orderID string, target model.OrderStatus) (*model.Order, error) {
	order, err := f.status.Transition(ctx, orderID, target)
	if err != nil {
		return nil, err
	}

	if target == model.OrderStatusDelivered && order.DriverID != "" {
		if err := f.drivers.FinishDelivery(ctx, order.DriverID, order.ID); err != nil {
			f.logger.Warn("driver-side delivery finish failed, will reconcile on poll",
				slog.String("order", order.ID),
				slog.String("driver", order.DriverID),
				slog.String("error", err.Error()))
		}
	}
	return order, nil
}

func (f *DispatchFacade) CancelOrder(ctx context.Context, orderID string, c model.Cancellation) (*model.Order, error) {
	return f.status.Cancel(ctx, orderID, c)
}

func (f *DispatchFacade) ApplyAssignment(ctx context.Context, orderID string, update repository.AssignmentUpdate) (*model.Order, error) {
	return f.status.ApplyAssignment(ctx, orderID, update)
}

func (f *DispatchFacade) ApplyDriverLocation(ctx context.Context, orderID string, lat, lon float64) (*model.Order, error) {
	return f.status.ApplyDriverLocation(ctx, orderID, lat, lon)
}

// --- Driver registry surface ---

func (f *DispatchFacade) RegisterDriver(ctx context.Context, driver *model.Driver) (*model.Driver, error) {
	return f.drivers.Register(ctx, driver)
}

func (f *DispatchFacade) Driver(ctx context.Context, driverID string) (*model.Driver, error) {
	return f.drivers.Get(ctx, driverID)
}

func (f *DispatchFacade) SetDriverAvailability(ctx context.Context, driverID string, available bool) (*model.Driver, error) {
	return f.drivers.SetAvailability(ctx, driverID, available)
}

func (f *DispatchFacade) SetDriverLocation(ctx context.Context, driverID string, lat, lon float64) (*model.Driver, error) {
	return f.drivers.SetLocation(ctx, driverID, lat, lon)
}

func (f *DispatchFacade) AcceptOrder(ctx context.Context, driverID, orderID string) (*model.Driver, error, error) {
	return f.drivers.Accept(ctx, driverID, orderID)
}

func (f *DispatchFacade) RejectOrder(ctx context.Context, driverID, orderID, reason string) (*model.Driver, error, error) {
	return f.drivers.Reject(ctx, driverID, orderID, reason)
}

func (f *DispatchFacade) CompleteDelivery(ctx context.Context, driverID, orderID string) (*model.Driver, error) {
	return f.drivers.Complete(ctx, driverID, orderID)
}

// --- Assignment engine surface ---

func (f *DispatchFacade) ReadyOrders(ctx context.Context) ([]model.Order, error) {
	return f.gateway.ReadyForPickup(ctx)
}

func (f *DispatchFacade) AvailableDrivers(ctx context.Context) ([]model.Driver, error) {
	return f.drivers.ListAvailable(ctx)
}

func (f *DispatchFacade) OfferOrder(ctx context.Context, order model.Order, driverID string) (bool, error) {
	return f.drivers.Offer(ctx, order, driverID)
}

// EscalateOrder surfaces an order every candidate has rejected to the human
// dispatcher feed.
func (f *DispatchFacade) EscalateOrder(ctx context.Context, order model.Order, rejections int) {
	f.logger.Warn("order rejected by all candidates, escalating",
		slog.String("order", order.ID),
		slog.Int("rejections", rejections))

	event := notify.NewEvent(notify.EventEscalated, map[string]any{
		"orderId":    order.ID,
		"rejections": rejections,
	})
	if err := f.hub.Publish(ctx, notify.OrderTopic(order.ID), event); err != nil {
		f.logger.Warn("escalation publish failed",
			slog.String("order", order.ID),
			slog.String("error", err.Error()))
	}
}
