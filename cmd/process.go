package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var processSessionID string

var processCmd = &cobra.Command{
	Use:   "process [input]",
	Short: "Run one ASL-tagged request through the cognitive pipeline",
	Long: `Runs the given input through all four ministers and prints the
aggregated result as JSON. Example:

  aethero process "[INTENT:deploy][ACTION:deploy the gateway][OUTPUT:report]"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		input := strings.Join(args, " ")

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

		sessionID := processSessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		resp, err := cab.coord.ProcessRequest(ctx, sessionID, input)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	processCmd.Flags().StringVar(&processSessionID, "session", "", "session id (generated when omitted)")
	rootCmd.AddCommand(processCmd)
}
