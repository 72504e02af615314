package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// seedFixture is the layout of a seed file: pre-validated records keyed
// by table. Missing sections are skipped.
type seedFixture struct {
	Users        []domain.User         `json:"users"`
	Accounts     []domain.Account      `json:"accounts"`
	Transactions []domain.Transaction  `json:"transactions"`
	Liabilities  []domain.Liability    `json:"liabilities"`
	Products     []domain.ProductOffer `json:"products"`
}

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load seed data from a JSON fixture",
	Long: `Load users, accounts, transactions, liabilities, and the product
catalog from a JSON fixture file. Existing rows with the same IDs are
overwritten. Articles are indexed separately with "index-articles"
because they need embeddings.

Example:
  spendsense seed fixtures/seed.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}

	var fixture seedFixture
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("parse fixture: %w", err)
	}

	now := time.Now()
	for i := range fixture.Users {
		u := fixture.Users[i]
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		if err := a.store.SaveUser(&u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.UserID, err)
		}
	}
	for i := range fixture.Accounts {
		if err := a.store.SaveAccount(&fixture.Accounts[i]); err != nil {
			return fmt.Errorf("seed account %s: %w", fixture.Accounts[i].AccountID, err)
		}
	}
	for i := range fixture.Transactions {
		if err := a.store.SaveTransaction(&fixture.Transactions[i]); err != nil {
			return fmt.Errorf("seed transaction %s: %w", fixture.Transactions[i].TransactionID, err)
		}
	}
	for i := range fixture.Liabilities {
		if err := a.store.SaveLiability(&fixture.Liabilities[i]); err != nil {
			return fmt.Errorf("seed liability %s: %w", fixture.Liabilities[i].LiabilityID, err)
		}
	}
	for i := range fixture.Products {
		if err := a.store.UpsertProduct(&fixture.Products[i]); err != nil {
			return fmt.Errorf("seed product %s: %w", fixture.Products[i].ProductID, err)
		}
	}

	fmt.Printf("Seeded %d users, %d accounts, %d transactions, %d liabilities, %d products\n",
		len(fixture.Users), len(fixture.Accounts), len(fixture.Transactions),
		len(fixture.Liabilities), len(fixture.Products))
	return nil
}
