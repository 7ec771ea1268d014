package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hpkotak/lexbud/internal/config"
)

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Update a configuration value",
	Long: `Update a configuration value. Supported keys:
  model            Default model (e.g., llama3.2)
  models           Comma-separated model catalogue
  hosted.base_url  OpenAI-compatible API base URL
  hosted.prefixes  Comma-separated hosted model prefixes
  local.url        Local chat endpoint (e.g., http://localhost:11434/api/chat)
  local.model      Local model name
  timeout          Per-request timeout (e.g., 90s, 2m)
  server.addr      HTTP listen address

The hosted API key is read from HOSTED_API_KEY and is never stored.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], strings.TrimSpace(args[1])

	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrNotFound) {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = config.Default()
	}

	switch key {
	case "model":
		cfg.Model = value
	case "models":
		cfg.Models = splitList(value)
	case "hosted.base_url":
		cfg.Hosted.BaseURL = value
	case "hosted.prefixes":
		cfg.Hosted.Prefixes = splitList(value)
	case "local.url":
		cfg.Local.URL = value
	case "local.model":
		cfg.Local.Model = value
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		cfg.Timeout = d
	case "server.addr":
		if value == "" {
			return fmt.Errorf("server.addr cannot be empty")
		}
		cfg.Server.Addr = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(ioOut, "Set %s = %s\n", key, value)
	return nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
