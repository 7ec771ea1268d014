package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hpkotak/lexbud/internal/prompt"
)

var (
	caseTypeFlag      string
	decisionFocusFlag bool
	fileFlag          string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [text...]",
	Short: "Summarize a legal document",
	Long: `Summarize a legal document into key points, decisions and notes.
The text comes from the arguments or from --file ("-" reads stdin).`,
	Args: cobra.ArbitraryArgs,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&caseTypeFlag, "case-type", "", "case context: "+strings.Join(prompt.CaseTypes, ", "))
	summarizeCmd.Flags().BoolVar(&decisionFocusFlag, "decision-focus", false, "focus on the court's decision")
	summarizeCmd.Flags().StringVarP(&fileFlag, "file", "f", "", `read the document from a file ("-" for stdin)`)
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	text, err := documentText(args)
	if err != nil {
		return err
	}

	caseType := ""
	if caseTypeFlag != "" {
		if caseType, err = pickOption(caseTypeFlag, prompt.CaseTypes, "case type"); err != nil {
			return err
		}
	}

	task, err := prompt.Summary(prompt.SummaryParams{
		Text:          text,
		CaseType:      caseType,
		DecisionFocus: decisionFocusFlag,
	})
	if err != nil {
		return err
	}
	return runTask(cmd, task)
}

func documentText(args []string) (string, error) {
	switch {
	case fileFlag != "" && len(args) > 0:
		return "", fmt.Errorf("pass the document as arguments or with --file, not both")
	case fileFlag == "-":
		data, err := io.ReadAll(ioIn)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case fileFlag != "":
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", fmt.Errorf("reading document: %w", err)
		}
		return string(data), nil
	default:
		return strings.Join(args, " "), nil
	}
}

// pickOption matches value case-insensitively against options and returns
// the canonical spelling.
func pickOption(value string, options []string, what string) (string, error) {
	value = strings.TrimSpace(value)
	for _, o := range options {
		if strings.EqualFold(o, value) {
			return o, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q (want one of: %s)", what, value, strings.Join(options, ", "))
}
