package listener

import (
	"fmt"
	"io"
	"sync"
)

// console writes one line per payload to a shared writer.
type console struct {
	name string

	mu sync.Mutex
	w  io.Writer
}

func (c *console) Name() string { return c.name }

func (c *console) printf(format string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, format, args...); err != nil {
		return fmt.Errorf("writing to console: %w", err)
	}
	return nil
}

// Email pretends to send an e-mail for each event.
type Email struct{ console }

func NewEmail(name string, w io.Writer) *Email {
	return &Email{console{name: name, w: w}}
}

func (e *Email) Act(payload string) error {
	return e.printf("E-mail sent due to %s\n", payload)
}

// Notification pretends to push a notification for each event.
type Notification struct{ console }

func NewNotification(name string, w io.Writer) *Notification {
	return &Notification{console{name: name, w: w}}
}

func (n *Notification) Act(payload string) error {
	return n.printf("Notification sent due to %s\n", payload)
}

// Money pretends to transfer money for each event.
type Money struct{ console }

func NewMoney(name string, w io.Writer) *Money {
	return &Money{console{name: name, w: w}}
}

func (m *Money) Act(payload string) error {
	return m.printf("Money sent due to %s\n", payload)
}
