// mcp.go - Embedded MCP (Model Context Protocol) server
//
// Exposes the resolver as MCP tools so AI assistants can ask for the
// machine's public or local address.
//
// Uses: https://github.com/mark3labs/mcp-go
package cmd

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/joeblew999/pubip/internal/config"
	"github.com/joeblew999/pubip/pkg/localip"
	"github.com/joeblew999/pubip/pkg/publicip"
)

// MCPCmd is the parent command for MCP operations
var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP (Model Context Protocol) server",
	Long: `Provides an MCP server exposing public_ip, public_cidr and local_ip tools.

Config for Claude Desktop/Cursor:
  {
    "mcpServers": {
      "pubip": {
        "type": "stdio",
        "command": "pubip",
        "args": ["mcp", "serve"]
      }
    }
  }`,
}

// MCPServeCmd starts the MCP server on stdio
var MCPServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server (stdio transport)",
	Args:  cobra.NoArgs,
	RunE:  runMCPServe,
}

func init() {
	MCPCmd.AddCommand(MCPServeCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	r, err := newResolver(cmd)
	if err != nil {
		return err
	}

	mcpServer := server.NewMCPServer(
		config.DefaultMCPName,
		version,
		server.WithToolCapabilities(false),
	)
	registerTools(mcpServer, r, localip.Default())

	return server.ServeStdio(mcpServer)
}

// registerTools adds the address tools to mcpServer.
func registerTools(mcpServer *server.MCPServer, r *publicip.Resolver, l *localip.Resolver) {
	refresh := mcp.WithBoolean("refresh",
		mcp.Description("Drop the cached value and ask the sources again"),
	)

	mcpServer.AddTool(mcp.NewTool("public_ip",
		mcp.WithDescription("Public IPv4 address of this machine, as reported by external echo services"),
		refresh,
	), publicIPHandler(r, false))

	mcpServer.AddTool(mcp.NewTool("public_cidr",
		mcp.WithDescription("Public IPv4 address of this machine as a /32 CIDR block"),
		refresh,
	), publicIPHandler(r, true))

	mcpServer.AddTool(mcp.NewTool("local_ip",
		mcp.WithDescription("LAN IPv4 address of this machine (first non-loopback interface address)"),
	), localIPHandler(l))
}

func publicIPHandler(r *publicip.Resolver, cidr bool) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if request.GetBool("refresh", false) {
			r.Invalidate()
		}

		res, err := r.Resolve(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Could not determine public IP: %v", err)), nil
		}
		if cidr {
			return mcp.NewToolResultText(res.CIDR()), nil
		}
		return mcp.NewToolResultText(res.IP), nil
	}
}

func localIPHandler(l *localip.Resolver) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(l.LocalIP()), nil
	}
}
