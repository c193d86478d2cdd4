package store

import (
	"time"
)

// Store is the persistence interface for the delivery journal.
type Store interface {
	// Deliveries
	RecordDelivery(d *Delivery) error
	ListDeliveries(f DeliveryFilter) ([]Delivery, error)
	CountDeliveries(listener string) (int, error)

	// Maintenance
	Cleanup(olderThan time.Time) (int64, error)
	Close() error
}

// Delivery is one payload handed to one listener.
type Delivery struct {
	ID        string    `json:"id"`
	Listener  string    `json:"listener"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// DeliveryFilter specifies criteria for listing deliveries.
// Zero values mean "no constraint".
type DeliveryFilter struct {
	Listener string
	Since    time.Time
	Limit    int
}
