package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and statistics",
	Long: `Display SpendSense system status including:
- Storage status and row counts
- Review queue breakdown
- Persona distribution
- API key status`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("SpendSense Status")
	fmt.Println(strings.Repeat("=", 40))

	fmt.Println("\nConfiguration:")
	fmt.Printf("  Database:  %s\n", a.cfg.Storage.DBPath)
	fmt.Printf("  Server:    %s\n", a.cfg.Server.Addr)
	fmt.Printf("  LLM:       %s (%s)\n", a.cfg.LLM.Model, keyStatus(a.cfg.LLM.APIKey))
	fmt.Printf("  Embedding: %s (%s)\n", a.cfg.Embedding.Model, keyStatus(a.cfg.Embedding.APIKey))
	if a.cfg.Worker.Enabled {
		fmt.Printf("  Worker:    enabled (%s)\n", a.cfg.Worker.CronSpec)
	} else {
		fmt.Println("  Worker:    disabled")
	}

	users, err := a.store.ListConsentedUserIDs()
	if err != nil {
		fmt.Printf("\nStorage: FAILED (%s)\n", err)
		return nil // don't fail the command, just report status
	}
	fmt.Printf("\nConsented users: %d\n", len(users))
	fmt.Printf("Indexed articles: %d\n", a.vectors.Count())

	stats, err := a.store.GetDashboardStats()
	if err != nil {
		fmt.Printf("\nDashboard: error (%s)\n", err)
		return nil
	}

	if len(stats.StatusCounts) == 0 {
		fmt.Println("\nRecommendations: (none)")
	} else {
		fmt.Println("\nRecommendations by status:")
		total := 0
		for status, n := range stats.StatusCounts {
			fmt.Printf("  %-18s %d\n", status+":", n)
			total += n
		}
		fmt.Printf("  %-18s %d\n", "TOTAL:", total)
		fmt.Printf("\nAvg generation time: %.0f ms\n", stats.AvgGenerationTimeMS)
	}

	if len(stats.PersonaDistribution) > 0 {
		fmt.Println("\nPersona distribution:")
		for personaType, n := range stats.PersonaDistribution {
			fmt.Printf("  %-20s %d\n", personaType+":", n)
		}
	}

	return nil
}

func keyStatus(key string) string {
	if key == "" {
		return "key not set"
	}
	if len(key) > 12 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return "key set"
}
