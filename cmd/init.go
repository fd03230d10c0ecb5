package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/krishisaarathi/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize saarathi configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the completion provider, port, operating state and data sources, and writes .saarathi.yml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
