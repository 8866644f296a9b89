package test

import (
	"context"
	"sync"
	"time"

	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/domain/repository"
	"github.com/quickbites/dispatch/internal/notify"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn          func(context.Context, *model.Order) (*model.Order, error)
	OrderFn          func(context.Context, string) (*model.Order, error)
	ReadyFn          func(context.Context) ([]model.Order, error)
	UpdateStatusFn   func(context.Context, string, model.OrderStatus) (*model.Order, error)
	CancelFn         func(context.Context, string, model.Cancellation) (*model.Order, error)
	AssignmentFn     func(context.Context, string, repository.AssignmentUpdate) (*model.Order, error)
	DriverLocationFn func(context.Context, string, float64, float64) (*model.Order, error)
}

func (s OrderFacadeStub) PlaceOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, order)
	}
	placed := *order
	if placed.ID == "" {
		placed.ID = "ORD-TEST"
	}
	placed.Status = model.OrderStatusPending
	return &placed, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, orderID string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusPending}, nil
}

func (s OrderFacadeStub) ReadyForPickupOrders(ctx context.Context) ([]model.Order, error) {
	if s.ReadyFn != nil {
		return s.ReadyFn(ctx)
	}
	return []model.Order{{ID: "ORD-1", Status: model.OrderStatusReadyForPickup}}, nil
}

func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, orderID string, target model.OrderStatus) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, orderID, target)
	}
	return &model.Order{ID: orderID, Status: target}, nil
}

func (s OrderFacadeStub) CancelOrder(ctx context.Context, orderID string, c model.Cancellation) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID, c)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusCancelled, Cancellation: &c}, nil
}

func (s OrderFacadeStub) ApplyAssignment(ctx context.Context, orderID string, update repository.AssignmentUpdate) (*model.Order, error) {
	if s.AssignmentFn != nil {
		return s.AssignmentFn(ctx, orderID, update)
	}
	return &model.Order{ID: orderID, AssignmentStatus: update.Status, DriverID: update.DriverID}, nil
}

func (s OrderFacadeStub) ApplyDriverLocation(ctx context.Context, orderID string, lat, lon float64) (*model.Order, error) {
	if s.DriverLocationFn != nil {
		return s.DriverLocationFn(ctx, orderID, lat, lon)
	}
	return &model.Order{ID: orderID, DriverLocation: &model.Location{Latitude: lat, Longitude: lon}}, nil
}

// DriverFacadeStub provides controllable behaviour for driver endpoints.
type DriverFacadeStub struct {
	RegisterFn     func(context.Context, *model.Driver) (*model.Driver, error)
	DriverFn       func(context.Context, string) (*model.Driver, error)
	AvailabilityFn func(context.Context, string, bool) (*model.Driver, error)
	LocationFn     func(context.Context, string, float64, float64) (*model.Driver, error)
	AcceptFn       func(context.Context, string, string) (*model.Driver, error, error)
	RejectFn       func(context.Context, string, string, string) (*model.Driver, error, error)
	CompleteFn     func(context.Context, string, string) (*model.Driver, error)
}

func (s DriverFacadeStub) RegisterDriver(ctx context.Context, driver *model.Driver) (*model.Driver, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, driver)
	}
	registered := *driver
	if registered.ID == "" {
		registered.ID = "drv-test"
	}
	registered.IsActive = true
	return &registered, nil
}

func (s DriverFacadeStub) Driver(ctx context.Context, driverID string) (*model.Driver, error) {
	if s.DriverFn != nil {
		return s.DriverFn(ctx, driverID)
	}
	return &model.Driver{ID: driverID, IsActive: true}, nil
}

func (s DriverFacadeStub) SetDriverAvailability(ctx context.Context, driverID string, available bool) (*model.Driver, error) {
	if s.AvailabilityFn != nil {
		return s.AvailabilityFn(ctx, driverID, available)
	}
	return &model.Driver{ID: driverID, IsActive: true, IsAvailable: available}, nil
}

func (s DriverFacadeStub) SetDriverLocation(ctx context.Context, driverID string, lat, lon float64) (*model.Driver, error) {
	if s.LocationFn != nil {
		return s.LocationFn(ctx, driverID, lat, lon)
	}
	return &model.Driver{ID: driverID, IsActive: true, CurrentLocation: &model.Location{Latitude: lat, Longitude: lon}}, nil
}

func (s DriverFacadeStub) AcceptOrder(ctx context.Context, driverID, orderID string) (*model.Driver, error, error) {
	if s.AcceptFn != nil {
		return s.AcceptFn(ctx, driverID, orderID)
	}
	return &model.Driver{ID: driverID, IsActive: true, CurrentOrders: []string{orderID}}, nil, nil
}

func (s DriverFacadeStub) RejectOrder(ctx context.Context, driverID, orderID, reason string) (*model.Driver, error, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, driverID, orderID, reason)
	}
	return &model.Driver{ID: driverID, IsActive: true}, nil, nil
}

func (s DriverFacadeStub) CompleteDelivery(ctx context.Context, driverID, orderID string) (*model.Driver, error) {
	if s.CompleteFn != nil {
		return s.CompleteFn(ctx, driverID, orderID)
	}
	return &model.Driver{ID: driverID, IsActive: true, CompletedOrders: []string{orderID}}, nil
}

// DispatchFacadeStub aggregates both stubs for router-level tests.
type DispatchFacadeStub struct {
	OrderFacadeStub
	DriverFacadeStub
}

// OfferCall records one OfferOrder invocation.
type OfferCall struct {
	OrderID  string
	DriverID string
}

// EscalationCall records one EscalateOrder invocation.
type EscalationCall struct {
	OrderID    string
	Rejections int
}

// EngineFacadeStub mimics the sweep dependencies of the assignment engine.
type EngineFacadeStub struct {
	mu          sync.Mutex
	Ready       []model.Order
	ReadyFn     func(context.Context) ([]model.Order, error)
	Available   []model.Driver
	AvailableFn func(context.Context) ([]model.Driver, error)
	OfferFn     func(context.Context, model.Order, string) (bool, error)
	Offers      []OfferCall
	Escalations []EscalationCall
}

// Lock exposes internal mutex for external synchronization.
func (s *EngineFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *EngineFacadeStub) Unlock() { s.mu.Unlock() }

func (s *EngineFacadeStub) ReadyOrders(ctx context.Context) ([]model.Order, error) {
	if s.ReadyFn != nil {
		return s.ReadyFn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.Ready...), nil
}

func (s *EngineFacadeStub) AvailableDrivers(ctx context.Context) ([]model.Driver, error) {
	if s.AvailableFn != nil {
		return s.AvailableFn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Driver(nil), s.Available...), nil
}

func (s *EngineFacadeStub) OfferOrder(ctx context.Context, order model.Order, driverID string) (bool, error) {
	s.mu.Lock()
	s.Offers = append(s.Offers, OfferCall{OrderID: order.ID, DriverID: driverID})
	s.mu.Unlock()
	if s.OfferFn != nil {
		return s.OfferFn(ctx, order, driverID)
	}
	return true, nil
}

func (s *EngineFacadeStub) EscalateOrder(ctx context.Context, order model.Order, rejections int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Escalations = append(s.Escalations, EscalationCall{OrderID: order.ID, Rejections: rejections})
}

// PublishedEvent pairs a topic with the event sent to it.
type PublishedEvent struct {
	Topic notify.Topic
	Event notify.Event
}

// PublisherStub records published events.
type PublisherStub struct {
	mu     sync.Mutex
	Events []PublishedEvent
	Err    error
}

func (s *PublisherStub) Publish(ctx context.Context, topic notify.Topic, event notify.Event) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, PublishedEvent{Topic: topic, Event: event})
	return nil
}

// Published returns a snapshot of recorded events.
func (s *PublisherStub) Published() []PublishedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PublishedEvent(nil), s.Events...)
}

// SyncCall records one remote assignment update.
type SyncCall struct {
	OrderID string
	Update  repository.AssignmentUpdate
}

// OrderSyncStub records calls to the order service gateway.
type OrderSyncStub struct {
	mu           sync.Mutex
	UpdateFn     func(context.Context, string, repository.AssignmentUpdate) error
	LocationFn   func(context.Context, string, float64, float64) error
	Updates      []SyncCall
	LocationPush []string
}

func (s *OrderSyncStub) UpdateAssignment(ctx context.Context, orderID string, update repository.AssignmentUpdate) error {
	s.mu.Lock()
	s.Updates = append(s.Updates, SyncCall{OrderID: orderID, Update: update})
	s.mu.Unlock()
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, orderID, update)
	}
	return nil
}

func (s *OrderSyncStub) PushDriverLocation(ctx context.Context, orderID string, lat, lon float64) error {
	s.mu.Lock()
	s.LocationPush = append(s.LocationPush, orderID)
	s.mu.Unlock()
	if s.LocationFn != nil {
		return s.LocationFn(ctx, orderID, lat, lon)
	}
	return nil
}

// GatewayStub extends OrderSyncStub with the engine-facing poll so it can
// stand in for the full order service gateway.
type GatewayStub struct {
	OrderSyncStub
	Ready   []model.Order
	ReadyFn func(context.Context) ([]model.Order, error)
}

func (s *GatewayStub) ReadyForPickup(ctx context.Context) ([]model.Order, error) {
	if s.ReadyFn != nil {
		return s.ReadyFn(ctx)
	}
	return append([]model.Order(nil), s.Ready...), nil
}

// AssignmentControlStub captures engine control invocations.
type AssignmentControlStub struct {
	Started   bool
	Stopped   bool
	Interval  time.Duration
	SweepFn   func(context.Context) error
	SweepRuns int
}

func (s *AssignmentControlStub) Start() { s.Started = true }

func (s *AssignmentControlStub) Stop() { s.Stopped = true }

func (s *AssignmentControlStub) Running() bool { return s.Started && !s.Stopped }

func (s *AssignmentControlStub) SetInterval(interval time.Duration) { s.Interval = interval }

func (s *AssignmentControlStub) Sweep(ctx context.Context) error {
	s.SweepRuns++
	if s.SweepFn != nil {
		return s.SweepFn(ctx)
	}
	return nil
}
