package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/aetheroos/aethero/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the cabinet's memory, audit trail, and cognitive pipeline as tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		cab, err := openCabinet(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer cab.close(ctx, cfg)

		if err := cab.coord.InitializeAll(ctx); err != nil {
			return fmt.Errorf("initializing bridges: %w", err)
		}
		defer cab.coord.Shutdown(ctx)

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "aethero MCP server started on stdio (data=%s, vectors=%d)\n",
			cfg.DataDir, cab.vector.Count())

		srv := mcpserver.NewServer(cab.memory, cab.audit, cab.coord)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
