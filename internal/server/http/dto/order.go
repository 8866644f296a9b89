package dto

import (
	"time"

	"github.com/quickbites/dispatch/internal/domain/model"
)

// OrderPayload is the wire representation of an order. It is the contract of
// the Order service API, serialized by the handlers and decoded by the
// delivery-side gateway client.
type OrderPayload struct {
	OrderID                string                   `json:"orderId"`
	RestaurantID           string                   `json:"restaurantId"`
	RestaurantName         string                   `json:"restaurantName,omitempty"`
	RestaurantLocation     *model.Location          `json:"restaurantLocation,omitempty"`
	Customer               model.Customer           `json:"customer"`
	Items                  []model.LineItem         `json:"items,omitempty"`
	TotalAmount            float64                  `json:"totalAmount"`
	PaymentMethod          string                   `json:"paymentMethod,omitempty"`
	PaymentStatus          string                   `json:"paymentStatus,omitempty"`
	OrderStatus            string                   `json:"orderStatus"`
	StatusTimestamps       map[string]time.Time     `json:"statusTimestamps,omitempty"`
	DriverAssignmentStatus string                   `json:"driverAssignmentStatus,omitempty"`
	AssignedDriverID       string                   `json:"assignedDriverId,omitempty"`
	DriverInfo             *model.DriverInfo        `json:"driverInfo,omitempty"`
	AssignmentHistory      []model.AssignmentRecord `json:"assignmentHistory,omitempty"`
	DriverLocation         *model.Location          `json:"driverLocation,omitempty"`
	Cancellation           *model.Cancellation      `json:"cancellation,omitempty"`
	CreatedAt              time.Time                `json:"createdAt,omitempty"`
	UpdatedAt              time.Time                `json:"updatedAt,omitempty"`
}

// FromOrder converts a domain order to its wire form.
func FromOrder(o *model.Order) OrderPayload {
	timestamps := make(map[string]time.Time, len(o.StatusTimestamps))
	for status, at := range o.StatusTimestamps {
		timestamps[string(status)] = at
	}
	return OrderPayload{
		OrderID:                o.ID,
		RestaurantID:           o.RestaurantID,
		RestaurantName:         o.RestaurantName,
		RestaurantLocation:     o.RestaurantLocation,
		Customer:               o.Customer,
		Items:                  o.Items,
		TotalAmount:            o.TotalAmount,
		PaymentMethod:          o.PaymentMethod,
		PaymentStatus:          o.PaymentStatus,
		OrderStatus:            string(o.Status),
		StatusTimestamps:       timestamps,
		DriverAssignmentStatus: string(o.AssignmentStatus),
		AssignedDriverID:       o.DriverID,
		DriverInfo:             o.DriverInfo,
		AssignmentHistory:      o.AssignmentHistory,
		DriverLocation:         o.DriverLocation,
		Cancellation:           o.Cancellation,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
}

// ToOrder converts the wire form back to a domain order.
func (p OrderPayload) ToOrder() model.Order {
	timestamps := make(map[model.OrderStatus]time.Time, len(p.StatusTimestamps))
	for status, at := range p.StatusTimestamps {
		timestamps[model.OrderStatus(status)] = at
	}
	return model.Order{
		ID:                 p.OrderID,
		RestaurantID:       p.RestaurantID,
		RestaurantName:     p.RestaurantName,
		RestaurantLocation: p.RestaurantLocation,
		Customer:           p.Customer,
		Items:              p.Items,
		TotalAmount:        p.TotalAmount,
		PaymentMethod:      p.PaymentMethod,
		PaymentStatus:      p.PaymentStatus,
		Status:             model.OrderStatus(p.OrderStatus),
		StatusTimestamps:   timestamps,
		AssignmentStatus:   model.AssignmentStatus(p.DriverAssignmentStatus),
		DriverID:           p.AssignedDriverID,
		DriverInfo:         p.DriverInfo,
		AssignmentHistory:  p.AssignmentHistory,
		DriverLocation:     p.DriverLocation,
		Cancellation:       p.Cancellation,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// PlaceOrderRequest is the body of POST /orders.
type PlaceOrderRequest struct {
	OrderID            string           `json:"orderId,omitempty"`
	RestaurantID       string           `json:"restaurantId" binding:"required"`
	RestaurantName     string           `json:"restaurantName,omitempty"`
	RestaurantLocation *model.Location  `json:"restaurantLocation,omitempty"`
	Customer           model.Customer   `json:"customer" binding:"required"`
	Items              []model.LineItem `json:"items,omitempty"`
	TotalAmount        float64          `json:"totalAmount"`
	PaymentMethod      string           `json:"paymentMethod,omitempty"`
}

// UpdateStatusRequest is the body of PUT /orders/update-status/:orderId.
type UpdateStatusRequest struct {
	NewStatus string `json:"newStatus" binding:"required"`
}

// CancelOrderRequest is the body of PUT /orders/cancel/:orderId.
type CancelOrderRequest struct {
	Reason         string `json:"reason" binding:"required"`
	CancelledBy    string `json:"cancelledBy" binding:"required"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

// DriverAssignmentRequest is the body of PUT /orders/:orderId/driver-assignment.
// The order ID in the path is the idempotency key for remote callers.
type DriverAssignmentRequest struct {
	DriverID                string                 `json:"driverId"`
	AssignmentStatus        string                 `json:"assignmentStatus" binding:"required"`
	AssignmentHistoryUpdate model.AssignmentRecord `json:"assignmentHistoryUpdate"`
	DriverInfo              *model.DriverInfo      `json:"driverInfo,omitempty"`
}

// DriverLocationPushRequest is the body of PUT /orders/:orderId/driver-location.
type DriverLocationPushRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ReadyForPickupResponse is the body of GET /orders/ready-for-pickup.
type ReadyForPickupResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Orders  []OrderPayload `json:"orders"`
}

// Envelope is the uniform response wrapper for every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Order   any    `json:"order,omitempty"`
	Driver  any    `json:"driver,omitempty"`
}
