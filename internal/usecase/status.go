package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/quickbites/dispatch/internal/domain/errors"
	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/domain/repository"
	"github.com/quickbites/dispatch/internal/notify"
	"github.com/quickbites/dispatch/internal/pkg/locking"
)

// StatusUseCase owns the order state machine: it validates transitions,
// stamps statusTimestamps and announces every change on the order's topic.
type StatusUseCase struct {
	orders repository.OrderRepository
	hub    notify.Publisher
	locks  *locking.KeyedMutex
	logger *slog.Logger
	now    func() time.Time
}

// NewStatusUseCase constructs StatusUseCase.
func NewStatusUseCase(orders repository.OrderRepository, hub notify.Publisher, logger *slog.Logger) *StatusUseCase {
	return &StatusUseCase{
		orders: orders,
		hub:    hub,
		locks:  locking.NewKeyedMutex(),
		logger: logger,
		now:    time.Now,
	}
}

// Place registers a new order in Pending state and stamps its first timestamp.
func (u *StatusUseCase) Place(ctx context.Context, order *model.Order) (*model.Order, error) {
	if order.RestaurantID == "" || order.Customer.Name == "" {
		return nil, fmt.Errorf("%w: restaurant and customer are required", domainErrors.ErrValidation)
	}
	if order.ID == "" {
		order.ID = newOrderID()
	}
	now := u.now()
	order.Status = model.OrderStatusPending
	order.StatusTimestamps = map[model.OrderStatus]time.Time{model.OrderStatusPending: now}
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := u.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func newOrderID() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// Get returns the order, the read behind the tracking UI's periodic poll.
func (u *StatusUseCase) Get(ctx context.Context, orderID string) (*model.Order, error) {
	return u.orders.GetByID(ctx, orderID)
}

// ReadyForPickup lists orders awaiting driver assignment.
func (u *StatusUseCase) ReadyForPickup(ctx context.Context) ([]model.Order, error) {
	return u.orders.ListReadyForPickup(ctx)
}

// Transition moves the order to target and appends the status timestamp.
// Transitions on one order are serialized so timestamps stay monotonic.
func (u *StatusUseCase) Transition(ctx context.Context, orderID string, target model.OrderStatus) (*model.Order, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domainErrors.ErrValidation, target)
	}

	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, order.Status, target)
	}

	updated, err := u.orders.UpdateStatus(ctx, orderID, target, u.now())
	if err != nil {
		return nil, err
	}

	u.announce(ctx, updated)
	return updated, nil
}

// Cancel moves a non-terminal order to Cancelled and records who and why.
func (u *StatusUseCase) Cancel(ctx context.Context, orderID string, c model.Cancellation) (*model.Order, error) {
	if c.Reason == "" || c.CancelledBy == "" {
		return nil, fmt.Errorf("%w: reason and cancelledBy are required", domainErrors.ErrValidation)
	}

	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order is %s", domainErrors.ErrAlreadyTerminal, order.Status)
	}

	if c.Timestamp.IsZero() {
		c.Timestamp = u.now()
	}

	updated, err := u.orders.Cancel(ctx, orderID, c)
	if err != nil {
		return nil, err
	}

	u.announce(ctx, updated)
	return updated, nil
}

// ApplyAssignment records an assignment-handshake change pushed by the
// delivery side. The endpoint is idempotent on the order ID.
func (u *StatusUseCase) ApplyAssignment(ctx context.Context, orderID string, update repository.AssignmentUpdate) (*model.Order, error) {
	switch update.Status {
	case model.AssignmentStatusPending, model.AssignmentStatusOffered,
		model.AssignmentStatusAccepted, model.AssignmentStatusRejected:
	default:
		return nil, fmt.Errorf("%w: unknown assignment status %q", domainErrors.ErrValidation, update.Status)
	}

	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	if update.HistoryEntry.Timestamp.IsZero() {
		update.HistoryEntry.Timestamp = u.now()
	}
	update.ClearPending = update.Status == model.AssignmentStatusRejected

	updated, err := u.orders.UpdateAssignment(ctx, orderID, update)
	if err != nil {
		return nil, err
	}

	u.publish(ctx, notify.OrderTopic(orderID), notify.NewEvent(notify.EventAssignmentUpdated, map[string]any{
		"orderId":          updated.ID,
		"assignmentStatus": updated.AssignmentStatus,
		"driverId":         updated.DriverID,
	}))
	return updated, nil
}

// ApplyDriverLocation overwrites the driver position on the order record and
// announces it to tracking subscribers.
func (u *StatusUseCase) ApplyDriverLocation(ctx context.Context, orderID string, lat, lon float64) (*model.Order, error) {
	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	loc := model.Location{Latitude: lat, Longitude: lon, UpdatedAt: u.now()}
	updated, err := u.orders.UpdateDriverLocation(ctx, orderID, loc)
	if err != nil {
		return nil, err
	}

	u.publish(ctx, notify.OrderTopic(orderID), notify.NewEvent(notify.EventLocationUpdate, map[string]any{
		"orderId":        updated.ID,
		"driverLocation": loc,
	}))
	return updated, nil
}

func (u *StatusUseCase) announce(ctx context.Context, order *model.Order) {
	u.publish(ctx, notify.OrderTopic(order.ID), notify.NewEvent(notify.EventStatusUpdate, map[string]any{
		"orderId":        order.ID,
		"status":         order.Status,
		"driverLocation": order.DriverLocation,
	}))
}

// publish fans an event out best-effort: a hub failure never fails the state
// change that triggered it.
func (u *StatusUseCase) publish(ctx context.Context, topic notify.Topic, event notify.Event) {
	if err := u.hub.Publish(ctx, topic, event); err != nil {
		u.logger.Warn("event publish failed",
			slog.String("topic", string(topic)),
			slog.String("event", event.Name),
			slog.String("error", err.Error()))
	}
}
