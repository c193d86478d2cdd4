package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/gof/internal/store"
)

const defaultDeliveryLimit = 20

// ListDeliveries returns a handler that reads the delivery journal back.
func ListDeliveries(journal store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		f := store.DeliveryFilter{Limit: defaultDeliveryLimit}
		if name, ok := args["listener"].(string); ok {
			f.Listener = name
		}
		if limit, ok := args["limit"].(float64); ok && limit > 0 {
			f.Limit = int(limit)
		}
		if since, ok := args["since"].(string); ok && since != "" {
			t, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return mcp.NewToolResultError("since must be an RFC 3339 timestamp"), nil
			}
			f.Since = t
		}

		total, err := journal.CountDeliveries(f.Listener)
		if err != nil {
			return nil, fmt.Errorf("counting deliveries: %w", err)
		}
		deliveries, err := journal.ListDeliveries(f)
		if err != nil {
			return nil, fmt.Errorf("listing deliveries: %w", err)
		}

		if len(deliveries) == 0 {
			return mcp.NewToolResultText("No deliveries found matching the given filters."), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Deliveries (%d shown, %d recorded)\n\n", len(deliveries), total)
		for _, d := range deliveries {
			fmt.Fprintf(&sb, "%s  %s  %q  [%s]\n",
				d.CreatedAt.UTC().Format(time.RFC3339), d.Listener, d.Payload, d.ID)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}
