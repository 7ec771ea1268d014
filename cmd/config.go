package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage lexbud configuration",
}

func init() {
	rootCmd.AddCommand(configCmd)
}
