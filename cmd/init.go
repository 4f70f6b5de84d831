package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aetheroos/aethero/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize aethero configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the cabinet and generates a .aethero.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
