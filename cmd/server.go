package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aetheroos/aethero/internal/audit"
	"github.com/aetheroos/aethero/internal/dashboard"
	"github.com/aetheroos/aethero/internal/memory"
	"github.com/aetheroos/aethero/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the cabinet HTTP/WebSocket server",
	Long:  `Starts the aethero server exposing the cognitive pipeline, memory store, audit trail, and status console.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serverPort != 0 {
			cfg.Port = serverPort
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cab, err := openCabinet(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer cab.close(context.Background(), cfg)

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllOrigins,
		}, cab.coord)

		// The hub only exists once the server does; attach it before
		// the bridges come up.
		cab.coord.SetBroadcaster(srv.Hub())

		if err := cab.coord.InitializeAll(ctx); err != nil {
			return fmt.Errorf("initializing bridges: %w", err)
		}
		defer cab.coord.Shutdown(context.Background())

		r := srv.Router()
		memory.RegisterRoutes(r, cab.memory)
		audit.RegisterRoutes(r, cab.audit)
		dashboard.New(cab.coord, cab.memory, cab.audit).RegisterRoutes(r)

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "aethero server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Data dir: %s\n", cfg.DataDir)
		fmt.Fprintf(os.Stderr, "  Indexed vectors: %d\n", cab.vector.Count())

		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
