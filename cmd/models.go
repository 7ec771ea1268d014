package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the configured models and their backends",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	selector := cfg.Selector()
	for _, m := range cfg.CatalogueModels() {
		mark := " "
		if m == cfg.Model {
			mark = "*"
		}
		backend, err := selector.Classify(m)
		if err != nil {
			_, _ = fmt.Fprintf(ioOut, "%s %s (unsupported)\n", mark, m)
			continue
		}
		_, _ = fmt.Fprintf(ioOut, "%s %s (%s)\n", mark, m, backend)
	}
	return nil
}
