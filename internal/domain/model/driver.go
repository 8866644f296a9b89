package model

import "time"

// Location is a last-known coordinate with its report time.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"lastUpdated,omitempty"`
}

// Rating aggregates customer feedback for a driver.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Driver is the registry record for a delivery driver. The three order-ID
// lists carry set semantics; an order appears in at most one of pending and
// current at any time.
type Driver struct {
	ID                 string
	Name               string
	Phone              string
	Email              string
	VehicleType        string
	LicensePlate       string
	IsAvailable        bool
	IsActive           bool
	CurrentLocation    *Location
	PendingAssignments []string
	CurrentOrders      []string
	CompletedOrders    []string
	Rating             Rating
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Info returns the denormalized snapshot written onto orders.
func (d *Driver) Info() DriverInfo {
	return DriverInfo{
		Name:         d.Name,
		Phone:        d.Phone,
		VehicleType:  d.VehicleType,
		LicensePlate: d.LicensePlate,
	}
}

// HasPending reports whether the order is already offered to the driver.
func (d *Driver) HasPending(orderID string) bool {
	return contains(d.PendingAssignments, orderID)
}

// HasCurrent reports whether the driver is actively delivering the order.
func (d *Driver) HasCurrent(orderID string) bool {
	return contains(d.CurrentOrders, orderID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AddUnique appends id to ids unless already present, preserving set semantics.
func AddUnique(ids []string, id string) []string {
	if contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// Remove deletes id from ids when present.
func Remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
