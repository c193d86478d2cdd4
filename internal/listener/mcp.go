package listener

import (
	"log/slog"
	"sync"
	"time"
)

// MCPSender abstracts the mcp-go server notification methods.
// Defined consumer-side per Go convention.
type MCPSender interface {
	SendNotificationToAllClients(method string, params map[string]any)
}

// MCP forwards broadcasts to every connected MCP client as
// notifications/message. Identical payloads arriving within the debounce
// window are dropped.
type MCP struct {
	name     string
	sender   MCPSender
	debounce time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time // payload → last send time
}

// NewMCP creates an MCP listener. A non-positive debounce disables
// deduplication.
func NewMCP(name string, sender MCPSender, debounce time.Duration) *MCP {
	return &MCP{
		name:     name,
		sender:   sender,
		debounce: debounce,
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

func (m *MCP) Name() string { return m.name }

// Act sends the payload unless the same payload went out less than one
// debounce interval ago.
func (m *MCP) Act(payload string) error {
	if m.suppressed(payload) {
		slog.Debug("mcp listener: debounced", "listener", m.name, "payload", payload)
		return nil
	}

	m.sender.SendNotificationToAllClients("notifications/message", map[string]any{
		"level":  "info",
		"logger": "gof",
		"data": map[string]any{
			"listener": m.name,
			"payload":  payload,
		},
	})
	return nil
}

func (m *MCP) suppressed(payload string) bool {
	if m.debounce <= 0 {
		return false
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune(now)
	if last, ok := m.lastSent[payload]; ok && now.Sub(last) < m.debounce {
		return true
	}
	m.lastSent[payload] = now
	return false
}

// prune drops entries whose window has passed. Caller holds m.mu.
func (m *MCP) prune(now time.Time) {
	for p, t := range m.lastSent {
		if now.Sub(t) >= m.debounce {
			delete(m.lastSent, p)
		}
	}
}
