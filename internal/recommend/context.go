package recommend

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// Bounds on the context payload. The budget is a design constraint, not a
// hard token limit: enough data for specific, number-citing rationales
// without shipping the whole ledger.
const (
	maxContextAccounts     = 5
	maxContextTransactions = 10
	maxRecurringMerchants  = 10
)

type accountContext struct {
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
	Limit   float64 `json:"limit,omitempty"`
}

type transactionContext struct {
	Date     string  `json:"date"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Type     string  `json:"type"`
}

type cardContext struct {
	Last4                  string  `json:"last_4_digits"`
	CurrentBalance         float64 `json:"current_balance"`
	CreditLimit            float64 `json:"credit_limit"`
	UtilizationPercentage  float64 `json:"utilization_percentage"`
	MinimumPayment         float64 `json:"minimum_payment,omitempty"`
	APR                    float64 `json:"apr,omitempty"`
	EstimatedMonthlyDollar float64 `json:"estimated_monthly_interest,omitempty"`
}

type savingsContext struct {
	Count               int     `json:"count"`
	TotalBalance        float64 `json:"total_balance"`
	GrowthRate          float64 `json:"growth_rate"`
	EmergencyFundMonths float64 `json:"emergency_fund_months"`
}

type userContext struct {
	UserID              string               `json:"user_id"`
	WindowDays          int                  `json:"window_days"`
	PersonaType         string               `json:"persona_type"`
	SubscriptionSignals map[string]any       `json:"subscription_signals"`
	SavingsSignals      map[string]any       `json:"savings_signals"`
	CreditSignals       map[string]any       `json:"credit_signals"`
	IncomeSignals       map[string]any       `json:"income_signals"`
	Accounts            []accountContext     `json:"accounts"`
	RecentTransactions  []transactionContext `json:"recent_transactions"`
	HighUtilCards       []cardContext        `json:"high_utilization_cards,omitempty"`
	RecurringMerchants  []string             `json:"recurring_merchants,omitempty"`
	SavingsAccounts     *savingsContext      `json:"savings_accounts,omitempty"`
}

// BuildContext assembles the bounded JSON payload sent with the
// generation prompt: persona, rounded signal values, top accounts by
// balance, most recent transactions, and detail for any highly utilized
// card.
func BuildContext(snap *domain.FeatureSnapshot, assignment *domain.PersonaAssignment,
	accounts []domain.Account, txns []domain.Transaction, liabilities []domain.Liability) (string, error) {

	ctx := userContext{
		UserID:      snap.UserID,
		WindowDays:  snap.WindowDays,
		PersonaType: assignment.PersonaType,
		SubscriptionSignals: map[string]any{
			"recurring_merchants":      snap.RecurringMerchants,
			"monthly_recurring_spend":  round2(snap.MonthlyRecurringSpend),
			"subscription_spend_share": round2(snap.SubscriptionSpendShare),
		},
		SavingsSignals: map[string]any{
			"net_savings_inflow":    round2(snap.NetSavingsInflow),
			"savings_growth_rate":   round2(snap.SavingsGrowthRate),
			"emergency_fund_months": round2(snap.EmergencyFundMonths),
		},
		CreditSignals: map[string]any{
			"avg_utilization":           round2(snap.AvgUtilization),
			"max_utilization":           round2(snap.MaxUtilization),
			"minimum_payment_only_flag": snap.MinimumPaymentOnlyFlag,
			"interest_charges_present":  snap.InterestChargesPresent,
			"any_overdue":               snap.AnyOverdue,
		},
		IncomeSignals: map[string]any{
			"payroll_detected":        snap.PayrollDetected,
			"median_pay_gap_days":     snap.MedianPayGapDays,
			"income_variability":      round2(snap.IncomeVariability),
			"cash_flow_buffer_months": round2(snap.CashFlowBufferMonths),
			"avg_monthly_income":      round2(snap.AvgMonthlyIncome),
		},
	}

	sorted := make([]domain.Account, len(accounts))
	copy(sorted, accounts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BalanceCurrent > sorted[j].BalanceCurrent
	})
	for i, a := range sorted {
		if i == maxContextAccounts {
			break
		}
		info := accountContext{
			Type:    a.Type,
			Name:    fmt.Sprintf("%s %s", titleCase(a.Type), maskAccountID(a.AccountID)),
			Balance: round2(a.BalanceCurrent),
		}
		if domain.IsCreditCardAccount(a) && a.BalanceLimit > 0 {
			info.Limit = round2(a.BalanceLimit)
		}
		ctx.Accounts = append(ctx.Accounts, info)
	}

	// Transactions arrive oldest first; take the most recent.
	start := len(txns) - maxContextTransactions
	if start < 0 {
		start = 0
	}
	for i := len(txns) - 1; i >= start; i-- {
		t := txns[i]
		merchant := t.MerchantName
		if merchant == "" {
			merchant = "Unknown"
		}
		txnType := "expense"
		if t.Amount > 0 {
			txnType = "deposit"
		}
		ctx.RecentTransactions = append(ctx.RecentTransactions, transactionContext{
			Date:     t.Date.Format("2006-01-02"),
			Merchant: merchant,
			Amount:   round2(t.Amount),
			Type:     txnType,
		})
	}
	if ctx.RecentTransactions == nil {
		ctx.RecentTransactions = []transactionContext{}
	}
	if ctx.Accounts == nil {
		ctx.Accounts = []accountContext{}
	}

	if snap.MaxUtilization >= 0.50 {
		ctx.HighUtilCards = highUtilizationCards(accounts, liabilities)
	}

	if snap.RecurringMerchants > 0 {
		ctx.RecurringMerchants = recurringMerchantNames(txns)
	}

	if snap.SavingsGrowthRate != 0 {
		count := 0
		for _, a := range accounts {
			if domain.IsSavingsAccount(a) {
				count++
			}
		}
		if count > 0 {
			ctx.SavingsAccounts = &savingsContext{
				Count:               count,
				TotalBalance:        round2(snap.TotalSavingsBalance),
				GrowthRate:          round2(snap.SavingsGrowthRate),
				EmergencyFundMonths: round2(snap.EmergencyFundMonths),
			}
		}
	}

	payload, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal context: %w", err)
	}
	return string(payload), nil
}

func highUtilizationCards(accounts []domain.Account, liabilities []domain.Liability) []cardContext {
	liabilityByAccount := make(map[string]domain.Liability, len(liabilities))
	for _, l := range liabilities {
		liabilityByAccount[l.AccountID] = l
	}

	var cards []cardContext
	for _, a := range accounts {
		if !domain.IsCreditCardAccount(a) || a.BalanceLimit <= 0 {
			continue
		}
		utilization := a.BalanceCurrent / a.BalanceLimit
		if utilization < 0.50 {
			continue
		}

		card := cardContext{
			Last4:                 last4(a.AccountID),
			CurrentBalance:        round2(a.BalanceCurrent),
			CreditLimit:           round2(a.BalanceLimit),
			UtilizationPercentage: round2(utilization * 100),
		}
		if l, ok := liabilityByAccount[a.AccountID]; ok {
			card.MinimumPayment = round2(l.MinimumPaymentAmount)
			card.APR = round2(l.APRPurchase)
			if l.APRPurchase > 0 && a.BalanceCurrent > 0 {
				card.EstimatedMonthlyDollar = round2(a.BalanceCurrent * l.APRPurchase / 100 / 12)
			}
		}
		cards = append(cards, card)
	}
	return cards
}

// recurringMerchantNames approximates the recurring set with merchants
// seen 3+ times in the window; the full cadence check already ran in the
// aggregator and this list only feeds prompt context.
func recurringMerchantNames(txns []domain.Transaction) []string {
	counts := make(map[string]int)
	for _, t := range txns {
		if t.MerchantName != "" {
			counts[t.MerchantName]++
		}
	}

	var names []string
	for merchant, n := range counts {
		if n >= 3 {
			names = append(names, merchant)
		}
	}
	sort.Strings(names)
	if len(names) > maxRecurringMerchants {
		names = names[:maxRecurringMerchants]
	}
	return names
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func maskAccountID(id string) string {
	return "****" + last4(id)
}

func last4(id string) string {
	if len(id) < 4 {
		return "****"
	}
	return id[len(id)-4:]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
