package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/gof/internal/listener"
)

// ListListeners returns a handler that renders catalog membership.
func ListListeners(reg *listener.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		statuses := reg.Statuses()
		if len(statuses) == 0 {
			return mcp.NewToolResultText("No listeners configured."), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Listeners (%d configured)\n\n", len(statuses))
		for _, s := range statuses {
			mark := "[ ]"
			if s.Subscribed {
				mark = "[x]"
			}
			fmt.Fprintf(&sb, "%s %s (%s)\n", mark, s.Name, s.Type)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// Subscribe returns a handler that adds a named listener to the hub.
func Subscribe(reg *listener.Registry) server.ToolHandlerFunc {
	return membership(reg.Subscribe, "subscribed")
}

// Unsubscribe returns a handler that removes a named listener from the hub.
func Unsubscribe(reg *listener.Registry) server.ToolHandlerFunc {
	return membership(reg.Unsubscribe, "unsubscribed")
}

func membership(op func(string) error, verb string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, _ := req.GetArguments()["name"].(string)
		if name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}

		if err := op(name); err != nil {
			if errors.Is(err, listener.ErrUnknownListener) {
				return mcp.NewToolResultError(fmt.Sprintf("listener %q not found", name)), nil
			}
			return nil, err
		}
		return mcp.NewToolResultText(fmt.Sprintf("Listener %q %s.", name, verb)), nil
	}
}
