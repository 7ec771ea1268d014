package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hpkotak/lexbud/internal/prompt"
)

var (
	docTypeFlag  string
	clauseFlags  []string
	templateFlag string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft a legal document",
	Long: `Draft a legal document from an optional template and a list of clauses.

Examples:
  lexbud draft --type Contract --clause Confidencialidad --clause "Jurisdicción"
  lexbud draft --type Pleading --template "Demanda por daños y perjuicios"`,
	Args: cobra.NoArgs,
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().StringVarP(&docTypeFlag, "type", "t", "", "document type: "+strings.Join(prompt.DocumentTypes, ", "))
	draftCmd.Flags().StringArrayVarP(&clauseFlags, "clause", "c", nil, "clause to include (repeatable)")
	draftCmd.Flags().StringVar(&templateFlag, "template", "", "free-form template for the document")
	_ = draftCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, args []string) error {
	docType, err := pickOption(docTypeFlag, prompt.DocumentTypes, "document type")
	if err != nil {
		return err
	}

	task, err := prompt.Draft(prompt.DraftParams{
		DocumentType: docType,
		Clauses:      clauseFlags,
		Template:     templateFlag,
	})
	if err != nil {
		return err
	}
	return runTask(cmd, task)
}
