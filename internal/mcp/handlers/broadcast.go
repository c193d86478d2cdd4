package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/gof/internal/listener"
)

// Broadcast returns a handler that fans a payload out through the registry.
func Broadcast(reg *listener.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, _ := req.GetArguments()["payload"].(string)
		if payload == "" {
			return mcp.NewToolResultError("payload is required"), nil
		}

		out := reg.Broadcast(payload)

		if out.Listeners == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No listener subscribed, %q went nowhere.", payload)), nil
		}

		if len(out.Failures) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("Delivered %q to %d listener(s).", payload, out.Listeners)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Delivered %q to %d listener(s), %d failed:\n", payload, out.Listeners, len(out.Failures))
		for _, f := range out.Failures {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		return mcp.NewToolResultError(sb.String()), nil
	}
}
