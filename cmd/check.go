package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hpkotak/lexbud/internal/provider"
)

const checkTimeout = 15 * time.Second

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the selected model's backend is reachable",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	model := cfg.Model
	if modelFlag != "" {
		model = modelFlag
	}
	backend, err := cfg.Selector().Classify(model)
	if err != nil {
		return err
	}
	if backend == provider.Hosted && cfg.Hosted.APIKey == "" {
		_, _ = fmt.Fprintln(ioOut, "[!!] HOSTED_API_KEY is not set")
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), checkTimeout)
	defer cancel()

	if err := newDispatcher(cfg).Available(ctx, model); err != nil {
		_, _ = fmt.Fprintf(ioOut, "[!!] %s (%s): %v\n", model, backend, err)
		return fmt.Errorf("%s backend is not available", backend)
	}
	_, _ = fmt.Fprintf(ioOut, "[ok] %s (%s) is available\n", model, backend)
	return nil
}
