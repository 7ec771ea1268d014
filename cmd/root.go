package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hpkotak/lexbud/internal/config"
	"github.com/hpkotak/lexbud/internal/console"
	"github.com/hpkotak/lexbud/internal/logging"
	"github.com/hpkotak/lexbud/internal/prompt"
	"github.com/hpkotak/lexbud/internal/provider"
)

var (
	modelFlag     string
	logLevelFlag  string
	logFormatFlag string
	logFileFlag   string
)

// errStreamFailed is returned after the sink already reported the failure.
var errStreamFailed = errors.New("request failed")

// dispatcher is the part of provider.Dispatcher the commands use.
type dispatcher interface {
	Dispatch(ctx context.Context, req provider.Request, sink provider.Sink) (*provider.Result, error)
	Available(ctx context.Context, model string) error
}

// Package-level function variables for testability.
// Tests override these to avoid real backend calls.
var (
	resolveConfig = func() (*config.Config, error) {
		return config.Resolve(".env")
	}
	newDispatcher = func(cfg *config.Config) dispatcher {
		return cfg.Dispatcher()
	}
	ioIn  io.Reader = os.Stdin
	ioOut io.Writer = os.Stdout
	ioErr io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "lexbud",
	Short: "Legal assistant backed by hosted or local language models",
	Long: `lexbud summarizes legal documents, drafts legal documents and researches
case law. Models under the hosted prefix (meta-llama/ by default) stream from an
OpenAI-compatible API; the local model streams from an Ollama server.

Examples:
  lexbud summarize --file sentencia.txt --case-type "Contract Law"
  lexbud draft --type Contract --clause Confidencialidad
  lexbud research "despido sin causa" --model llama3.2`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(logging.Config{
			Level:  logLevelFlag,
			Format: logFormatFlag,
			File:   logFileFlag,
			Out:    ioErr,
		})
	},
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&modelFlag, "model", "", "override model for this request")
	flags.StringVar(&logLevelFlag, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&logFormatFlag, "log-format", "text", "log format (text or json)")
	flags.StringVar(&logFileFlag, "log-file", "", "also write logs to this file")
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// runTask streams task to the terminal.
func runTask(cmd *cobra.Command, task prompt.Task) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	printer := console.NewPrinter(ioOut, ioErr)
	result, err := newDispatcher(cfg).Dispatch(commandContext(cmd), provider.Request{
		Model:    modelFlag,
		Messages: task.Messages,
		Layout:   task.Layout,
	}, printer)
	if err != nil {
		var unsupported *provider.UnsupportedModelError
		if errors.As(err, &unsupported) {
			return fmt.Errorf("%w. Run 'lexbud models' to list supported models", err)
		}
		return err
	}

	printer.Finish(result, task.Layout)
	if result == nil {
		return errStreamFailed
	}
	return nil
}
