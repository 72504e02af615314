package recommend

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

func testAssignment() *domain.PersonaAssignment {
	return &domain.PersonaAssignment{
		UserID:      "user_1",
		WindowDays:  domain.WindowShort,
		PersonaType: domain.PersonaHighUtilization,
	}
}

func TestBuildContext_BoundsAndMasking(t *testing.T) {
	snap := &domain.FeatureSnapshot{UserID: "user_1", WindowDays: domain.WindowShort}

	var accounts []domain.Account
	for i := 0; i < 8; i++ {
		accounts = append(accounts, domain.Account{
			AccountID:      fmt.Sprintf("acc_%04d", i),
			Type:           "checking",
			BalanceCurrent: float64(1000 * (i + 1)),
		})
	}

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	var txns []domain.Transaction
	for i := 0; i < 15; i++ {
		txns = append(txns, domain.Transaction{
			TransactionID: fmt.Sprintf("txn_%02d", i),
			Date:          base.AddDate(0, 0, i),
			Amount:        -10,
			MerchantName:  fmt.Sprintf("Merchant %d", i),
		})
	}

	payload, err := BuildContext(snap, testAssignment(), accounts, txns, nil)
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}

	var ctx userContext
	if err := json.Unmarshal([]byte(payload), &ctx); err != nil {
		t.Fatalf("context is not valid JSON: %v", err)
	}

	if len(ctx.Accounts) != maxContextAccounts {
		t.Errorf("accounts = %d, want %d", len(ctx.Accounts), maxContextAccounts)
	}
	// Highest balance first.
	if ctx.Accounts[0].Balance != 8000 {
		t.Errorf("top account balance = %v, want 8000", ctx.Accounts[0].Balance)
	}
	if !strings.Contains(ctx.Accounts[0].Name, "****") {
		t.Errorf("account name %q should mask the account id", ctx.Accounts[0].Name)
	}
	if strings.Contains(payload, "acc_0007") {
		t.Error("raw account ids must not appear in the payload")
	}

	if len(ctx.RecentTransactions) != maxContextTransactions {
		t.Errorf("transactions = %d, want %d", len(ctx.RecentTransactions), maxContextTransactions)
	}
	// Input is oldest-first; the newest must come back.
	if ctx.RecentTransactions[0].Merchant != "Merchant 14" {
		t.Errorf("first transaction = %q, want newest", ctx.RecentTransactions[0].Merchant)
	}
}

func TestBuildContext_HighUtilizationCards(t *testing.T) {
	snap := &domain.FeatureSnapshot{
		UserID:         "user_1",
		WindowDays:     domain.WindowShort,
		MaxUtilization: 0.85,
	}
	accounts := []domain.Account{
		{AccountID: "card_9912", Type: "credit card", BalanceCurrent: 850, BalanceLimit: 1000},
		{AccountID: "card_1034", Type: "credit card", BalanceCurrent: 100, BalanceLimit: 1000},
	}
	liabilities := []domain.Liability{
		{AccountID: "card_9912", MinimumPaymentAmount: 35, APRPurchase: 24.0},
	}

	payload, err := BuildContext(snap, testAssignment(), accounts, nil, liabilities)
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}

	var ctx userContext
	if err := json.Unmarshal([]byte(payload), &ctx); err != nil {
		t.Fatalf("context is not valid JSON: %v", err)
	}

	if len(ctx.HighUtilCards) != 1 {
		t.Fatalf("high utilization cards = %d, want 1 (only the 85%% card)", len(ctx.HighUtilCards))
	}
	card := ctx.HighUtilCards[0]
	if card.Last4 != "9912" {
		t.Errorf("last4 = %q, want 9912", card.Last4)
	}
	if card.UtilizationPercentage != 85 {
		t.Errorf("utilization = %v, want 85", card.UtilizationPercentage)
	}
	if card.MinimumPayment != 35 || card.APR != 24.0 {
		t.Errorf("liability detail = %+v", card)
	}
	if card.EstimatedMonthlyDollar != 17 {
		t.Errorf("estimated monthly interest = %v, want 17", card.EstimatedMonthlyDollar)
	}
}

func TestBuildContext_OmitsHighUtilCardsBelowThreshold(t *testing.T) {
	snap := &domain.FeatureSnapshot{
		UserID:         "user_1",
		WindowDays:     domain.WindowShort,
		MaxUtilization: 0.40,
	}
	accounts := []domain.Account{
		{AccountID: "card_9912", Type: "credit card", BalanceCurrent: 400, BalanceLimit: 1000},
	}

	payload, err := BuildContext(snap, testAssignment(), accounts, nil, nil)
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}
	var ctx userContext
	if err := json.Unmarshal([]byte(payload), &ctx); err != nil {
		t.Fatalf("context is not valid JSON: %v", err)
	}
	if ctx.HighUtilCards != nil {
		t.Errorf("high utilization cards = %v, want omitted below 50%%", ctx.HighUtilCards)
	}
}
