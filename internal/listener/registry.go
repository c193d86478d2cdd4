package listener

import (
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/btouchard/gof/internal/notify"
)

// ErrUnknownListener is returned for names missing from the catalog.
var ErrUnknownListener = errors.New("unknown listener")

// Status describes one catalog listener and whether the hub holds it.
type Status struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Subscribed bool   `json:"subscribed"`
}

// Outcome summarizes one broadcast.
type Outcome struct {
	Listeners int      `json:"listeners"`
	Failures  []string `json:"failures,omitempty"`
}

// Registry drives a hub by listener name.
type Registry struct {
	hub     *notify.Hub[string]
	catalog *Catalog
}

// NewRegistry creates a hub seeded with the catalog's initially subscribed
// listeners.
func NewRegistry(c *Catalog) *Registry {
	return &Registry{
		hub:     notify.NewHub(c.Initial()...),
		catalog: c,
	}
}

// Hub exposes the underlying hub.
func (r *Registry) Hub() *notify.Hub[string] { return r.hub }

func (r *Registry) Subscribe(name string) error {
	l, ok := r.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownListener, name)
	}
	r.hub.Register(l)
	slog.Info("listener subscribed", "listener", name)
	return nil
}

func (r *Registry) Unsubscribe(name string) error {
	l, ok := r.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownListener, name)
	}
	r.hub.Deregister(l)
	slog.Info("listener unsubscribed", "listener", name)
	return nil
}

// Statuses lists subscribed listeners in broadcast order, followed by the
// unsubscribed ones in configuration order.
func (r *Registry) Statuses() []Status {
	subscribed := r.hub.Listeners()
	out := make([]Status, 0, len(r.catalog.entries))
	held := make(map[string]bool, len(subscribed))

	for _, l := range subscribed {
		name := r.catalog.NameOf(l)
		if name == "" {
			continue
		}
		held[name] = true
		out = append(out, Status{Name: name, Type: r.catalog.typeOf(name), Subscribed: true})
	}
	for _, e := range r.catalog.entries {
		if !held[e.cfg.Name] {
			out = append(out, Status{Name: e.cfg.Name, Type: e.cfg.Type})
		}
	}
	return out
}

// Broadcast fans payload out and reports every listener failure.
func (r *Registry) Broadcast(payload string) Outcome {
	n, err := r.hub.Deliver(payload)
	out := Outcome{Listeners: n}
	if err != nil {
		for _, e := range multierr.Errors(err) {
			out.Failures = append(out.Failures, e.Error())
		}
	}
	slog.Info("broadcast",
		"payload", payload,
		"listeners", out.Listeners,
		"failures", len(out.Failures))
	return out
}
