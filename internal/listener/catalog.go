package listener

import (
	"fmt"
	"io"
	"time"

	"github.com/btouchard/gof/internal/config"
	"github.com/btouchard/gof/internal/notify"
)

// Deps are the collaborators listeners may need. Only the fields required by
// the configured listener types must be set.
type Deps struct {
	Out         io.Writer        // console listeners
	Journal     DeliveryRecorder // journal listeners
	MCP         MCPSender        // mcp listeners
	MCPDebounce time.Duration
}

type entry struct {
	cfg      config.ListenerConfig
	listener notify.Listener[string]
}

// Catalog holds the named listeners declared in configuration. It does not
// decide membership: that belongs to the hub.
type Catalog struct {
	entries []entry
	byName  map[string]int
}

// NewCatalog builds one listener per config entry, in order.
func NewCatalog(cfgs []config.ListenerConfig, deps Deps) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int, len(cfgs))}

	for _, lc := range cfgs {
		if _, dup := c.byName[lc.Name]; dup {
			return nil, fmt.Errorf("duplicate listener name %q", lc.Name)
		}

		l, err := build(lc, deps)
		if err != nil {
			return nil, fmt.Errorf("listener %q: %w", lc.Name, err)
		}

		c.byName[lc.Name] = len(c.entries)
		c.entries = append(c.entries, entry{cfg: lc, listener: l})
	}

	return c, nil
}

func build(lc config.ListenerConfig, deps Deps) (notify.Listener[string], error) {
	switch lc.Type {
	case config.TypeEmail, config.TypeNotification, config.TypeMoney:
		if deps.Out == nil {
			return nil, fmt.Errorf("no console writer configured")
		}
		switch lc.Type {
		case config.TypeEmail:
			return NewEmail(lc.Name, deps.Out), nil
		case config.TypeNotification:
			return NewNotification(lc.Name, deps.Out), nil
		default:
			return NewMoney(lc.Name, deps.Out), nil
		}
	case config.TypeWebhook:
		w, err := NewWebhook(lc.Name, lc.URL, lc.Secret, lc.Timeout)
		if err != nil {
			return nil, err
		}
		return w, nil
	case config.TypeJournal:
		if deps.Journal == nil {
			return nil, fmt.Errorf("no delivery store configured")
		}
		return NewJournal(lc.Name, deps.Journal), nil
	case config.TypeMCP:
		if deps.MCP == nil {
			return nil, fmt.Errorf("mcp server is not enabled")
		}
		return NewMCP(lc.Name, deps.MCP, deps.MCPDebounce), nil
	default:
		return nil, fmt.Errorf("unknown type %q", lc.Type)
	}
}

// Lookup returns the listener registered under name.
func (c *Catalog) Lookup(name string) (notify.Listener[string], bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].listener, true
}

// Names returns every listener name in configuration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.cfg.Name
	}
	return names
}

// NameOf returns the catalog name of l, or "" if l is not in the catalog.
func (c *Catalog) NameOf(l notify.Listener[string]) string {
	for _, e := range c.entries {
		if e.listener == l {
			return e.cfg.Name
		}
	}
	return ""
}

func (c *Catalog) typeOf(name string) string {
	if i, ok := c.byName[name]; ok {
		return c.entries[i].cfg.Type
	}
	return ""
}

// Initial returns the listeners marked subscribed, in configuration order.
func (c *Catalog) Initial() []notify.Listener[string] {
	var out []notify.Listener[string]
	for _, e := range c.entries {
		if e.cfg.Subscribed {
			out = append(out, e.listener)
		}
	}
	return out
}
