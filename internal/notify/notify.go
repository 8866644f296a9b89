package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Topic is a named real-time channel interested clients subscribe to.
type Topic string

// OrderTopic resolves the channel tracking a specific order.
func OrderTopic(orderID string) Topic { return Topic("order." + orderID) }

// DriverTopic resolves the channel of a specific driver's client.
func DriverTopic(driverID string) Topic { return Topic("driver." + driverID) }

// Event names published by the dispatch subsystem.
const (
	EventStatusUpdate      = "status-update"
	EventLocationUpdate    = "location-update"
	EventAssignmentUpdated = "driver_assignment_updated"
	EventNewAssignment     = "new_assignment"
	EventDriverAssigned    = "driver_assigned"
	EventOrderRejected     = "order_rejected"
	EventDeliveryCompleted = "delivery_completed"
	EventEscalated         = "assignment_escalated"
)

// Event is a single notification with a minimal payload. Delivery is
// at-most-once and best-effort; clients that miss an event resynchronize via
// the periodic REST poll.
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh ID and the current time.
func NewEvent(name string, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// Publisher fans events out to a topic. Implementations must not block the
// caller's state change on delivery failure.
type Publisher interface {
	Publish(ctx context.Context, topic Topic, event Event) error
}
