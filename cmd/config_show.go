package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpkotak/lexbud/internal/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(); errors.Is(err, config.ErrNotFound) {
		return fmt.Errorf("no config found. Run 'lexbud setup' first")
	}

	// Show the effective values, environment overrides included.
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	keyState := "not set"
	if cfg.Hosted.APIKey != "" {
		keyState = "set"
	}

	_, _ = fmt.Fprintf(ioOut, "Config file: %s\n", config.Path())
	_, _ = fmt.Fprintf(ioOut, "%s: %s\n\n", config.EnvHostedAPIKey, keyState)
	_, _ = fmt.Fprint(ioOut, string(data))
	return nil
}
