// Package service exposes read-only workforce data as MCP tools. The
// server speaks stdio so operator agents can attach it as a subprocess.
package service

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "timelogic"
	serverVersion = "0.1.0"
)

// NewServer builds the MCP server with every workforce tool registered.
// A nil clock falls back to time.Now.
func NewServer(store WorkforceReader, clock func() time.Time) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "roster_search",
		Description: "Search roster employees with an optional AIP-160 filter.",
	}, RosterSearchHandler(store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "schedule_week",
		Description: "List one employee's shifts for a week, confirmed first.",
	}, ScheduleWeekHandler(store, clock))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "timeclock_board",
		Description: "List everyone currently on the clock with elapsed time.",
	}, TimeclockBoardHandler(store, clock))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "task_list",
		Description: "List tasks, optionally narrowed to one status.",
	}, TaskListHandler(store))

	return server
}

// RunStdio serves the MCP protocol over stdin/stdout until ctx ends.
func RunStdio(ctx context.Context, store WorkforceReader, clock func() time.Time) error {
	return NewServer(store, clock).Run(ctx, &mcp.StdioTransport{})
}
