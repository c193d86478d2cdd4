package listener

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/btouchard/gof/internal/store"
)

// DeliveryRecorder is the part of store.Store the journal needs.
type DeliveryRecorder interface {
	RecordDelivery(d *store.Delivery) error
}

// Journal records every payload it receives as a delivery row.
type Journal struct {
	name  string
	store DeliveryRecorder
	now   func() time.Time
}

func NewJournal(name string, s DeliveryRecorder) *Journal {
	return &Journal{name: name, store: s, now: time.Now}
}

func (j *Journal) Name() string { return j.name }

func (j *Journal) Act(payload string) error {
	d := &store.Delivery{
		ID:        uuid.NewString(),
		Listener:  j.name,
		Payload:   payload,
		CreatedAt: j.now().UTC(),
	}
	if err := j.store.RecordDelivery(d); err != nil {
		return fmt.Errorf("journal %s: %w", j.name, err)
	}
	return nil
}
