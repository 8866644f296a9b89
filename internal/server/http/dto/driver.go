package dto

import (
	"github.com/quickbites/dispatch/internal/domain/model"
)

// DriverPayload is the wire representation of a driver registry record.
type DriverPayload struct {
	DriverID           string          `json:"driverId"`
	Name               string          `json:"name"`
	Phone              string          `json:"phone,omitempty"`
	Email              string          `json:"email,omitempty"`
	VehicleType        string          `json:"vehicleType,omitempty"`
	LicensePlate       string          `json:"licensePlate,omitempty"`
	IsAvailable        bool            `json:"isAvailable"`
	IsActive           bool            `json:"isActive"`
	CurrentLocation    *model.Location `json:"currentLocation,omitempty"`
	PendingAssignments []string        `json:"pendingAssignments,omitempty"`
	CurrentOrders      []string        `json:"currentOrders,omitempty"`
	CompletedOrders    []string        `json:"completedOrders,omitempty"`
	Rating             model.Rating    `json:"rating"`
}

// FromDriver converts a domain driver to its wire form.
func FromDriver(d *model.Driver) DriverPayload {
	return DriverPayload{
		DriverID:           d.ID,
		Name:               d.Name,
		Phone:              d.Phone,
		Email:              d.Email,
		VehicleType:        d.VehicleType,
		LicensePlate:       d.LicensePlate,
		IsAvailable:        d.IsAvailable,
		IsActive:           d.IsActive,
		CurrentLocation:    d.CurrentLocation,
		PendingAssignments: d.PendingAssignments,
		CurrentOrders:      d.CurrentOrders,
		CompletedOrders:    d.CompletedOrders,
		Rating:             d.Rating,
	}
}

// RegisterDriverRequest is the body of POST /drivers.
type RegisterDriverRequest struct {
	DriverID     string `json:"driverId,omitempty"`
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	VehicleType  string `json:"vehicleType,omitempty"`
	LicensePlate string `json:"licensePlate,omitempty"`
}

// AvailabilityRequest is the body of PUT /drivers/:driverId/availability.
type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}

// LocationRequest is the body of PUT /drivers/:driverId/location.
type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RejectOrderRequest is the optional body of POST /drivers/:driverId/reject-order/:orderId.
type RejectOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}
