package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/wallapocket/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can list, save,
archive, star, rename and delete your articles.

The server talks JSON-RPC over stdio unless --port is given. With --poll the
article list is also refreshed every sync.refresh_interval minutes while the
server runs.

Examples:
  wallapocket mcp serve
  wallapocket mcp serve --port 8080 --poll

Assistant configuration:
  {
    "mcpServers": {
      "wallapocket": {
        "command": "/path/to/wallapocket",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

var (
	mcpPort int
	mcpHost string
	mcpPoll bool
)

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP bind host")
	mcpServeCmd.Flags().BoolVar(&mcpPoll, "poll", false, "poll the server while serving")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("invalid port %d", mcpPort)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Sync:    syncEngine,
		Actions: actionService,
	}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	if mcpPoll {
		g.Go(func() error { return syncEngine.Start(ctx) })
		g.Go(func() error {
			<-ctx.Done()
			return syncEngine.Stop()
		})
	}

	g.Go(func() error {
		var serveErr error
		if mcpPort > 0 {
			addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
			fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", addr)
			serveErr = server.RunHTTP(ctx, addr)
		} else {
			serveErr = server.Run(ctx)
		}
		if serveErr == nil {
			// Stdio ends when the client disconnects; stop the poll loop too.
			serveErr = context.Canceled
		}
		return serveErr
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
