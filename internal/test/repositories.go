package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/quickbites/dispatch/internal/domain/errors"
	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/domain/repository"
)

// OrderRepositoryStub stores orders in-memory for tests.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	Orders map[string]*model.Order
	Err    error
}

// NewOrderRepositoryStub constructs stub repository with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[string]*model.Order)}
}

// Put seeds an order directly, bypassing Create validation.
func (s *OrderRepositoryStub) Put(order *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[string]*model.Order)
	}
	copied := *order
	s.Orders[order.ID] = &copied
}

func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[string]*model.Order)
	}
	if _, exists := s.Orders[order.ID]; exists {
		return domainErrors.ErrAlreadyExists
	}
	copied := *order
	s.Orders[order.ID] = &copied
	return nil
}

func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id)
}

func (s *OrderRepositoryStub) ListReadyForPickup(ctx context.Context) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.Orders {
		if o.Status == model.OrderStatusReadyForPickup {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, at time.Time) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	order.Status = status
	if order.StatusTimestamps == nil {
		order.StatusTimestamps = make(map[model.OrderStatus]time.Time)
	}
	order.StatusTimestamps[status] = at
	order.UpdatedAt = at
	stored := *order
	s.Orders[id] = &stored
	result := stored
	return &result, nil
}

func (s *OrderRepositoryStub) Cancel(ctx context.Context, id string, c model.Cancellation) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	order.Status = model.OrderStatusCancelled
	order.Cancellation = &c
	if order.StatusTimestamps == nil {
		order.StatusTimestamps = make(map[model.OrderStatus]time.Time)
	}
	order.StatusTimestamps[model.OrderStatusCancelled] = c.Timestamp
	stored := *order
	s.Orders[id] = &stored
	result := stored
	return &result, nil
}

func (s *OrderRepositoryStub) UpdateAssignment(ctx context.Context, id string, update repository.AssignmentUpdate) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	order.AssignmentStatus = update.Status
	if update.ClearPending {
		order.DriverID = ""
		order.DriverInfo = nil
	} else {
		order.DriverID = update.DriverID
		order.DriverInfo = update.DriverInfo
	}
	order.AssignmentHistory = append(order.AssignmentHistory, update.HistoryEntry)
	stored := *order
	s.Orders[id] = &stored
	result := stored
	return &result, nil
}

func (s *OrderRepositoryStub) UpdateDriverLocation(ctx context.Context, id string, loc model.Location) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	order.DriverLocation = &loc
	stored := *order
	s.Orders[id] = &stored
	result := stored
	return &result, nil
}

func (s *OrderRepositoryStub) lookup(id string) (*model.Order, error) {
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

// DriverRepositoryStub stores drivers in-memory for tests.
type DriverRepositoryStub struct {
	mu      sync.Mutex
	Drivers map[string]*model.Driver
	Err     error
}

// NewDriverRepositoryStub constructs stub repository with initialized maps.
func NewDriverRepositoryStub() *DriverRepositoryStub {
	return &DriverRepositoryStub{Drivers: make(map[string]*model.Driver)}
}

// Put seeds a driver directly.
func (s *DriverRepositoryStub) Put(driver *model.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Drivers == nil {
		s.Drivers = make(map[string]*model.Driver)
	}
	copied := *driver
	s.Drivers[driver.ID] = &copied
}

func (s *DriverRepositoryStub) Create(ctx context.Context, driver *model.Driver) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Drivers == nil {
		s.Drivers = make(map[string]*model.Driver)
	}
	if _, exists := s.Drivers[driver.ID]; exists {
		return domainErrors.ErrAlreadyExists
	}
	copied := *driver
	s.Drivers[driver.ID] = &copied
	return nil
}

func (s *DriverRepositoryStub) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id)
}

func (s *DriverRepositoryStub) ListAvailable(ctx context.Context) ([]model.Driver, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Driver
	for _, d := range s.Drivers {
		if d.IsActive && d.IsAvailable {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *DriverRepositoryStub) SetAvailability(ctx context.Context, id string, available bool) (*model.Driver, error) {
	return s.mutate(id, func(d *model.Driver) error {
		d.IsAvailable = available
		return nil
	})
}

func (s *DriverRepositoryStub) SetActive(ctx context.Context, id string, active bool) (*model.Driver, error) {
	return s.mutate(id, func(d *model.Driver) error {
		d.IsActive = active
		if !active {
			d.IsAvailable = false
		}
		return nil
	})
}

func (s *DriverRepositoryStub) SetLocation(ctx context.Context, id string, loc model.Location) (*model.Driver, error) {
	return s.mutate(id, func(d *model.Driver) error {
		d.CurrentLocation = &loc
		return nil
	})
}

func (s *DriverRepositoryStub) AddPending(ctx context.Context, id, orderID string) (*model.Driver, bool, error) {
	added := false
	driver, err := s.mutate(id, func(d *model.Driver) error {
		if !d.HasPending(orderID) {
			d.PendingAssignments = model.AddUnique(d.PendingAssignments, orderID)
			added = true
		}
		return nil
	})
	return driver, added, err
}

func (s *DriverRepositoryStub) PromotePending(ctx context.Context, id, orderID string) (*model.Driver, error) {
	return s.mutate(id, func(d *model.Driver) error {
		if !d.HasPending(orderID) {
			return domainErrors.ErrNotFound
		}
		d.PendingAssignments = model.Remove(d.PendingAssignments, orderID)
		d.CurrentOrders = model.AddUnique(d.CurrentOrders, orderID)
		d.IsAvailable = false
		return nil
	})
}

func (s *DriverRepositoryStub) RemovePending(ctx context.Context, id, orderID string) (*model.Driver, error) {
	return s.mutate(id, func(d *model.Driver) error {
		d.PendingAssignments = model.Remove(d.PendingAssignments, orderID)
		return nil
	})
}

func (s *DriverRepositoryStub) CompleteOrder(ctx context.Context, id, orderID string) (*model.Driver, error) {
	return s.mutate(id, func(d *model.Driver) error {
		if !d.HasCurrent(orderID) {
			return domainErrors.ErrNotFound
		}
		d.CurrentOrders = model.Remove(d.CurrentOrders, orderID)
		d.CompletedOrders = model.AddUnique(d.CompletedOrders, orderID)
		return nil
	})
}

func (s *DriverRepositoryStub) mutate(id string, fn func(*model.Driver) error) (*model.Driver, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	driver, ok := s.Drivers[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if err := fn(driver); err != nil {
		return nil, err
	}
	copied := *driver
	return &copied, nil
}

func (s *DriverRepositoryStub) lookup(id string) (*model.Driver, error) {
	driver, ok := s.Drivers[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *driver
	return &copied, nil
}
