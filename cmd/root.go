package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "aethero",
	Short: "AetheroOS ministerial cabinet: a four-stage cognitive pipeline",
	Long: `Aethero runs ASL-tagged requests through a cabinet of four ministers:
primus analyzes, lucius plans execution, archivus recalls and records
memory, and frontinus specifies the interface. The cabinet is exposed
over HTTP, WebSocket, MCP, and this CLI, backed by a SQLite memory
store with an optional semantic vector index and a constitutional
audit trail.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".aethero.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
