package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

var (
	recommendWindow int
	recommendForce  bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [user-id]",
	Short: "Generate recommendations for a user",
	Long: `Run the full generation pipeline for one user: consent gate,
persona lookup, context build, LLM generation, tone validation, and
product/article enrichment. Results are persisted as pending_approval
and printed.

Examples:
  spendsense recommend user_123
  spendsense recommend user_123 --window 180 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVar(&recommendWindow, "window", domain.WindowShort, "window in days")
	recommendCmd.Flags().BoolVar(&recommendForce, "force", false, "regenerate even if pending recommendations exist")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	orchestrator, err := a.orchestrator(ctx)
	if err != nil {
		return err
	}

	recs, err := orchestrator.Generate(ctx, args[0], recommendWindow, recommendForce)
	if err != nil {
		return err
	}
	return printJSON(recs)
}
