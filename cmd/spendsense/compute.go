package main

import (
	"github.com/spf13/cobra"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

var computeWindow int

var computeCmd = &cobra.Command{
	Use:   "compute [user-id]",
	Short: "Compute feature snapshots for a user",
	Long: `Compute windowed behavioral signals for one user and print the
resulting snapshots.

Examples:
  spendsense compute user_123
  spendsense compute user_123 --window 180`,
	Args: cobra.ExactArgs(1),
	RunE: runCompute,
}

func init() {
	computeCmd.Flags().IntVar(&computeWindow, "window", 0, "window in days (default: both 30 and 180)")
}

func runCompute(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	userID := args[0]
	if _, err := a.store.GetUser(userID); err != nil {
		return err
	}

	windows := []int{domain.WindowShort, domain.WindowLong}
	if computeWindow > 0 {
		windows = []int{computeWindow}
	}

	aggregator := a.aggregator()
	for _, windowDays := range windows {
		snap, err := aggregator.Compute(userID, windowDays)
		if err != nil {
			return err
		}
		if err := printJSON(snap); err != nil {
			return err
		}
	}
	return nil
}
