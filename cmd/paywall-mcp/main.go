// Command paywall-mcp runs the MCP tool server for paywall validation and
// previews. Uses stdio transport for integration with AI assistants.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/waozixyz/paywall/internal/config"
	"github.com/waozixyz/paywall/internal/mcpserver"
	"github.com/waozixyz/paywall/internal/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	// stdout carries the protocol.
	logger := observability.InitLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "paywall",
		Version: "v1.0.0",
	}, nil)
	mcpserver.RegisterTools(server, cfg)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
