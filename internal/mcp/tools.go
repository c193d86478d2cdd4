package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/gof/internal/listener"
	"github.com/btouchard/gof/internal/mcp/handlers"
	"github.com/btouchard/gof/internal/store"
)

func registerTools(s *server.MCPServer, reg *listener.Registry, journal store.Store) {
	// broadcast: fan a payload out to subscribed listeners
	s.AddTool(
		mcp.NewTool("broadcast",
			mcp.WithDescription("Deliver a payload to every subscribed listener, in subscription order. Reports each listener failure."),
			mcp.WithString("payload",
				mcp.Required(),
				mcp.Description("The event payload, e.g. \"sign in\""),
			),
		),
		handlers.Broadcast(reg),
	)

	// list_listeners: show the catalog and membership
	s.AddTool(
		mcp.NewTool("list_listeners",
			mcp.WithDescription("List configured listeners. Subscribed listeners come first, in broadcast order."),
		),
		handlers.ListListeners(reg),
	)

	// subscribe: add a listener to the hub
	s.AddTool(
		mcp.NewTool("subscribe",
			mcp.WithDescription("Subscribe a configured listener. Subscribing twice has no extra effect; a re-subscribed listener goes last."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Listener name from configuration"),
			),
		),
		handlers.Subscribe(reg),
	)

	// unsubscribe: remove a listener from the hub
	s.AddTool(
		mcp.NewTool("unsubscribe",
			mcp.WithDescription("Unsubscribe a configured listener. Unsubscribing an absent listener has no effect."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Listener name from configuration"),
			),
		),
		handlers.Unsubscribe(reg),
	)

	if journal == nil {
		return
	}

	// list_deliveries: read the delivery journal back
	s.AddTool(
		mcp.NewTool("list_deliveries",
			mcp.WithDescription("List recorded deliveries from the journal, oldest first."),
			mcp.WithString("listener",
				mcp.Description("Filter by listener name"),
			),
			mcp.WithString("since",
				mcp.Description("RFC 3339 datetime: only deliveries at or after this time"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of deliveries to return (default: 20)"),
			),
		),
		handlers.ListDeliveries(journal),
	)
}
