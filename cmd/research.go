package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hpkotak/lexbud/internal/prompt"
)

var researchCmd = &cobra.Command{
	Use:   "research <query...>",
	Short: "Search case law and analyze precedents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	task, err := prompt.Research(prompt.ResearchParams{Query: strings.Join(args, " ")})
	if err != nil {
		return err
	}
	return runTask(cmd, task)
}
