package model

import "time"

// OrderStatus describes the delivery lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "Pending"
	OrderStatusConfirmed      OrderStatus = "Confirmed"
	OrderStatusPreparing      OrderStatus = "Preparing"
	OrderStatusReadyForPickup OrderStatus = "Ready for Pickup"
	OrderStatusOnTheWay       OrderStatus = "On the way"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusCompleted      OrderStatus = "Completed"
	OrderStatusCancelled      OrderStatus = "Cancelled"
	OrderStatusFailed         OrderStatus = "Failed"
	OrderStatusRefunded       OrderStatus = "Refunded"
)

// statusRanks orders the forward-only delivery pipeline. Cancelled, Failed
// and Refunded sit outside the pipeline and are reachable from any
// non-terminal state.
var statusRanks = map[OrderStatus]int{
	OrderStatusPending:        0,
	OrderStatusConfirmed:      1,
	OrderStatusPreparing:      2,
	OrderStatusReadyForPickup: 3,
	OrderStatusOnTheWay:       4,
	OrderStatusDelivered:      5,
	OrderStatusCompleted:      6,
}

// Valid reports whether the status belongs to the known enum.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReadyForPickup, OrderStatusOnTheWay, OrderStatusDelivered,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusFailed,
		OrderStatusRefunded:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from the status.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to target is legal. Pipeline
// statuses only move forward; off-pipeline statuses are reachable from any
// non-terminal state; re-applying the current status is always allowed for
// idempotency.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !target.Valid() {
		return false
	}
	if target == s {
		return true
	}
	if s.Terminal() {
		return false
	}
	toRank, pipelined := statusRanks[target]
	if !pipelined {
		return true
	}
	fromRank, ok := statusRanks[s]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// AssignmentStatus tracks the driver-assignment handshake for an order.
type AssignmentStatus string

const (
	AssignmentStatusPending  AssignmentStatus = "pending"
	AssignmentStatusOffered  AssignmentStatus = "offered"
	AssignmentStatusAccepted AssignmentStatus = "accepted"
	AssignmentStatusRejected AssignmentStatus = "rejected"
)

// AssignmentRecord is a single entry of an order's assignment history.
type AssignmentRecord struct {
	DriverID        string           `json:"driverId"`
	Status          AssignmentStatus `json:"status"`
	Timestamp       time.Time        `json:"timestamp"`
	RejectionReason string           `json:"rejectionReason,omitempty"`
}

// LineItem is a purchased menu item snapshot on the order.
type LineItem struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Category  string  `json:"category,omitempty"`
	Size      string  `json:"size,omitempty"`
}

// Customer is the contact block captured at placement.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address"`
}

// DriverInfo is the denormalized driver snapshot kept on the order for cheap reads.
type DriverInfo struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	VehicleType  string `json:"vehicleType,omitempty"`
	LicensePlate string `json:"licensePlate,omitempty"`
}

// Cancellation records who cancelled the order, why and when.
type Cancellation struct {
	Reason         string    `json:"reason"`
	CancelledBy    string    `json:"cancelledBy"`
	AdditionalInfo string    `json:"additionalInfo,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Order is the persisted order record tracked through the delivery lifecycle.
type Order struct {
	ID                 string
	RestaurantID       string
	RestaurantName     string
	RestaurantLocation *Location
	Customer           Customer
	Items              []LineItem
	TotalAmount        float64
	PaymentMethod      string
	PaymentStatus      string
	Status             OrderStatus
	StatusTimestamps   map[OrderStatus]time.Time
	AssignmentStatus   AssignmentStatus
	DriverID           string
	DriverInfo         *DriverInfo
	AssignmentHistory  []AssignmentRecord
	DriverLocation     *Location
	Cancellation       *Cancellation
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RejectedBy returns the set of driver IDs whose most recent assignment
// history entry for this order is a rejection.
func (o *Order) RejectedBy() map[string]bool {
	latest := make(map[string]AssignmentStatus, len(o.AssignmentHistory))
	for _, rec := range o.AssignmentHistory {
		latest[rec.DriverID] = rec.Status
	}
	rejected := make(map[string]bool)
	for id, status := range latest {
		if status == AssignmentStatusRejected {
			rejected[id] = true
		}
	}
	return rejected
}
