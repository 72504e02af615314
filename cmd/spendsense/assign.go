package main

import (
	"github.com/spf13/cobra"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

var assignWindow int

var assignCmd = &cobra.Command{
	Use:   "assign [user-id]",
	Short: "Assign a persona from a user's feature snapshot",
	Long: `Classify one user against the persona rules and print the
assignment with its reasoning trace. The snapshot for the window must
already exist (run "spendsense compute" first).

Examples:
  spendsense assign user_123
  spendsense assign user_123 --window 180`,
	Args: cobra.ExactArgs(1),
	RunE: runAssign,
}

func init() {
	assignCmd.Flags().IntVar(&assignWindow, "window", domain.WindowShort, "window in days")
}

func runAssign(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	assignment, err := a.personaService().Assign(args[0], assignWindow)
	if err != nil {
		return err
	}
	return printJSON(assignment)
}
