package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hpkotak/lexbud/internal/setup"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure lexbud (first-time or reconfigure)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setup.Run(commandContext(cmd), ioIn, ioOut)
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
