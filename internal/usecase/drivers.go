package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/quickbites/dispatch/internal/domain/errors"
	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/domain/repository"
	"github.com/quickbites/dispatch/internal/notify"
	"github.com/quickbites/dispatch/internal/pkg/locking"
	"github.com/quickbites/dispatch/internal/storage/rediscache"
)

// OrderSync is the slice of the Order service gateway the driver flows need.
type OrderSync interface {
	UpdateAssignment(ctx context.Context, orderID string, update repository.AssignmentUpdate) error
	PushDriverLocation(ctx context.Context, orderID string, lat, lon float64) error
}

// DriverUseCase owns the driver registry and the offer/accept/reject/complete
// flows. Every mutation of one driver is serialized through a keyed mutex so
// a sweep and a driver response cannot race on the same record. Local state
// is authoritative: a failed remote order update is logged and reported as a
// partial success, never rolled back.
type DriverUseCase struct {
	drivers repository.DriverRepository
	sync    OrderSync
	hub     notify.Publisher
	cache   *rediscache.LocationCache
	locks   *locking.KeyedMutex
	logger  *slog.Logger
	now     func() time.Time
}

// NewDriverUseCase constructs DriverUseCase. cache may be nil when no Redis
// is configured.
func NewDriverUseCase(drivers repository.DriverRepository, sync OrderSync, hub notify.Publisher, cache *rediscache.LocationCache, logger *slog.Logger) *DriverUseCase {
	return &DriverUseCase{
		drivers: drivers,
		sync:    sync,
		hub:     hub,
		cache:   cache,
		locks:   locking.NewKeyedMutex(),
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates a driver record, active but unavailable until the driver
// goes online.
func (u *DriverUseCase) Register(ctx context.Context, driver *model.Driver) (*model.Driver, error) {
	if driver.Name == "" {
		return nil, fmt.Errorf("%w: driver name is required", domainErrors.ErrValidation)
	}
	if driver.ID == "" {
		driver.ID = "drv-" + uuid.NewString()[:8]
	}
	driver.IsActive = true
	driver.IsAvailable = false
	driver.PendingAssignments = []string{}
	driver.CurrentOrders = []string{}
	driver.CompletedOrders = []string{}

	if err := u.drivers.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// Get returns the driver, overlaying the freshest cached location when one exists.
func (u *DriverUseCase) Get(ctx context.Context, driverID string) (*model.Driver, error) {
	driver, err := u.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if u.cache != nil {
		if loc, err := u.cache.Get(ctx, driverID); err == nil && loc != nil {
			driver.CurrentLocation = loc
		}
	}
	return driver, nil
}

// ListAvailable returns active drivers currently accepting offers.
func (u *DriverUseCase) ListAvailable(ctx context.Context) ([]model.Driver, error) {
	return u.drivers.ListAvailable(ctx)
}

// SetAvailability flips the driver's availability flag.
func (u *DriverUseCase) SetAvailability(ctx context.Context, driverID string, available bool) (*model.Driver, error) {
	u.locks.Lock(driverID)
	defer u.locks.Unlock(driverID)
	return u.drivers.SetAvailability(ctx, driverID, available)
}

// Deactivate soft-deletes the driver and drops the cached location.
func (u *DriverUseCase) Deactivate(ctx context.Context, driverID string) (*model.Driver, error) {
	u.locks.Lock(driverID)
	defer u.locks.Unlock(driverID)

	driver, err := u.drivers.SetActive(ctx, driverID, false)
	if err != nil {
		return nil, err
	}
	if u.cache != nil {
		if err := u.cache.Delete(ctx, driverID); err != nil {
			u.logger.Warn("location cache delete failed", slog.String("driver", driverID), slog.String("error", err.Error()))
		}
	}
	return driver, nil
}

// SetLocation overwrites the driver's last known position, refreshes the
// cache and propagates the position to every order the driver is delivering.
func (u *DriverUseCase) SetLocation(ctx context.Context, driverID string, lat, lon float64) (*model.Driver, error) {
	u.locks.Lock(driverID)
	defer u.locks.Unlock(driverID)

	loc := model.Location{Latitude: lat, Longitude: lon, UpdatedAt: u.now()}
	driver, err := u.drivers.SetLocation(ctx, driverID, loc)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		if err := u.cache.Set(ctx, driverID, loc); err != nil {
			u.logger.Warn("location cache write failed", slog.String("driver", driverID), slog.String("error", err.Error()))
		}
	}

	for _, orderID := range driver.CurrentOrders {
		if err := u.sync.PushDriverLocation(ctx, orderID, lat, lon); err != nil {
			u.logger.Warn("location push failed",
				slog.String("order", orderID),
				slog.String("driver", driverID),
				slog.String("error", err.Error()))
		}
	}
	return driver, nil
}

// Offer appends the order to the driver's pending set and announces it. The
// call is idempotent: a repeated offer for the same pair changes nothing and
// triggers no second notification.
func (u *DriverUseCase) Offer(ctx context.Context, order model.Order, driverID string) (bool, error) {
	u.locks.Lock(driverID)
	defer u.locks.Unlock(driverID)

	driver, err := u.drivers.GetByID(ctx, driverID)
	if err != nil {
		return false, err
	}
	if !driver.IsActive {
		return false, domainErrors.ErrDriverInactive
	}

	driver, added, err := u.drivers.AddPending(ctx, driverID, order.ID)
	if err != nil {
		return false, err
	}
	if !added {
		return false, nil
	}

	info := driver.Info()
	update := repository.AssignmentUpdate{
		DriverID:     driverID,
		Status:       model.AssignmentStatusPending,
		HistoryEntry: model.AssignmentRecord{DriverID: driverID, Status: model.AssignmentStatusOffered, Timestamp: u.now()},
		DriverInfo:   &info,
	}
	if err := u.sync.UpdateAssignment(ctx, order.ID, update); err != nil {
		u.logger.Warn("remote offer update failed, pending assignment kept",
			slog.String("order", order.ID),
			slog.String("driver", driverID),
			slog.String("error", err.Error()))
	}

	u.publish(ctx, notify.DriverTopic(driverID), notify.NewEvent(notify.EventNewAssignment, map[string]any{
		"orderId":         order.ID,
		"restaurantName":  order.RestaurantName,
		"customerAddress": order.Customer.Address,
		"totalAmount":     order.TotalAmount,
		"timestamp":       u.now(),
	}))
	return true, nil
}

// Accept promotes the offer to an active delivery. Returns the driver and,
// separately, the outcome of the remote order sync so callers can report a
// partial success.
func (u *DriverUseCase) Accept(ctx context.Context, driverID, orderID string) (*model.Driver, error, error) {
	u.locks.Lock(driverID)
	defer u.locks.Unlock(driverID)

	driver, err := u.drivers.PromotePending(ctx, driverID, orderID)
	if err != nil {
		return nil, nil, err
	}

	info := driver.Info()
	update := repository.AssignmentUpdate{
		DriverID:     driverID,
		Status:       model.AssignmentStatusAccepted,
		HistoryEntry: model.AssignmentRecord{DriverID: driverID, Status: model.AssignmentStatusAccepted, Timestamp: u.now()},
		DriverInfo:   &info,
	}
	syncErr := u.sync.UpdateAssignment(ctx, orderID, update)
	if syncErr != nil {
		u.logger.Warn("remote accept update failed, local assignment kept",
			slog.String("order", orderID),
			slog.String("driver", driverID),
			slog.String("error", syncErr.Error()))
	}

	u.publish(ctx, notify.OrderTopic(orderID), notify.NewEvent(notify.EventDriverAssigned, map[string]any{
		"orderId":  orderID,
		"driverId": driverID,
		"driver":   info,
	}))
	return driver, syncErr, nil
}

// Reject removes the offer and records the refusal. The order stays eligible
// for the next sweep, which will exclude this driver.
func (u *DriverUseCase) Reject(ctx context.Context, driverID, orderID, reason string) (*model.Driver, error, error) {
	u.locks.Lock(driverID)
	defer u.locks.Unlock(driverID)

	driver, err := u.drivers.RemovePending(ctx, driverID, orderID)
	if err != nil {
		return nil, nil, err
	}

	update := repository.AssignmentUpdate{
		DriverID: driverID,
		Status:   model.AssignmentStatusRejected,
		HistoryEntry: model.AssignmentRecord{
			DriverID:        driverID,
			Status:          model.AssignmentStatusRejected,
			Timestamp:       u.now(),
			RejectionReason: reason,
		},
		ClearPending: true,
	}
	syncErr := u.sync.UpdateAssignment(ctx, orderID, update)
	if syncErr != nil {
		u.logger.Warn("remote reject update failed",
			slog.String("order", orderID),
			slog.String("driver", driverID),
			slog.String("error", syncErr.Error()))
	}

	// Published on the order topic, not the driver's: any future candidate
	// may need to know.
	u.publish(ctx, notify.OrderTopic(orderID), notify.NewEvent(notify.EventOrderRejected, map[string]any{
		"orderId":  orderID,
		"driverId": driverID,
		"reason":   reason,
	}))
	return driver, syncErr, nil
}

// Complete moves the order to the driver's completed set. Availability is
// restored by the order's Delivered transition, not here.
func (u *DriverUseCase) Complete(ctx context.Context, driverID, orderID string) (*model.Driver, error) {
	u.locks.Lock(driverID)
	defer u.locks.Unlock(driverID)

	driver, err := u.drivers.CompleteOrder(ctx, driverID, orderID)
	if err != nil {
		return nil, err
	}

	u.publish(ctx, notify.OrderTopic(orderID), notify.NewEvent(notify.EventDeliveryCompleted, map[string]any{
		"orderId":  orderID,
		"driverId": driverID,
	}))
	return driver, nil
}

// FinishDelivery is the driver-side half of the Delivered transition: it
// moves the order out of the current set and restores availability in one
// serialized step.
func (u *DriverUseCase) FinishDelivery(ctx context.Context, driverID, orderID string) error {
	u.locks.Lock(driverID)
	defer u.locks.Unlock(driverID)

	if _, err := u.drivers.CompleteOrder(ctx, driverID, orderID); err != nil {
		return err
	}
	if _, err := u.drivers.SetAvailability(ctx, driverID, true); err != nil {
		return err
	}

	u.publish(ctx, notify.OrderTopic(orderID), notify.NewEvent(notify.EventDeliveryCompleted, map[string]any{
		"orderId":  orderID,
		"driverId": driverID,
	}))
	return nil
}

func (u *DriverUseCase) publish(ctx context.Context, topic notify.Topic, event notify.Event) {
	if err := u.hub.Publish(ctx, topic, event); err != nil {
		u.logger.Warn("event publish failed",
			slog.String("topic", string(topic)),
			slog.String("event", event.Name),
			slog.String("error", err.Error()))
	}
}
