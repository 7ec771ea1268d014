package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hpkotak/lexbud/internal/console"
	"github.com/hpkotak/lexbud/internal/repl"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start an interactive research session",
	Long: `Start an interactive session. Every line is an independent research query;
no conversation history is kept.

Type 'exit' or 'quit' to end the session. Ctrl+D also works.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	opts := repl.Options{Model: modelFlag, Live: console.IsTerminal(ioOut)}
	return repl.Run(commandContext(cmd), newDispatcher(cfg), opts, ioIn, ioOut, ioErr)
}
