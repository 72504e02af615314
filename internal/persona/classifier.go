package persona

import (
	"fmt"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// Input is everything a classification run consumes. DerogatoryIn180d
// reports interest charges or overdue liabilities anywhere in the long
// window; the caller derives it from the 180-day snapshot so the
// classifier stays a pure function of its input.
type Input struct {
	Snapshot         *domain.FeatureSnapshot
	DerogatoryIn180d bool
}

// FallbackConfidence is the sentinel assigned when no predicate matches.
const FallbackConfidence = 0.2

// rule is one row of the classification table: a persona, its priority
// weight, and the predicate that decides a match. Rules are evaluated
// uniformly; adding a persona means adding a row, not a branch.
type rule struct {
	persona string
	weight  func(s *domain.FeatureSnapshot) float64
	match   func(in Input) (bool, []string, map[string]any)
}

// rules are ordered by descending priority; slice order breaks weight ties.
var rules = []rule{
	{
		persona: domain.PersonaWealthBuilder,
		weight:  func(*domain.FeatureSnapshot) float64 { return 1.0 },
		match: func(in Input) (bool, []string, map[string]any) {
			s := in.Snapshot
			matched := s.AvgMonthlyIncome > 10000 &&
				s.TotalSavingsBalance > 25000 &&
				s.MaxUtilization <= 0.20 &&
				!in.DerogatoryIn180d &&
				s.InvestmentAccountDetected

			var criteria []string
			if matched {
				criteria = []string{
					fmt.Sprintf("avg_monthly_income=%.2f > 10000", s.AvgMonthlyIncome),
					fmt.Sprintf("total_savings_balance=%.2f > 25000", s.TotalSavingsBalance),
					fmt.Sprintf("max_utilization=%.2f <= 0.20", s.MaxUtilization),
					"no_derogatory_events_180d=true",
					"investment_account_detected=true",
				}
			}
			return matched, criteria, map[string]any{
				"avg_monthly_income":          s.AvgMonthlyIncome,
				"total_savings_balance":       s.TotalSavingsBalance,
				"max_utilization":             s.MaxUtilization,
				"derogatory_events_180d":      in.DerogatoryIn180d,
				"investment_account_detected": s.InvestmentAccountDetected,
			}
		},
	},
	{
		persona: domain.PersonaHighUtilization,
		weight: func(s *domain.FeatureSnapshot) float64 {
			if s.MaxUtilization >= 0.80 {
				return 0.95
			}
			return 0.8
		},
		match: func(in Input) (bool, []string, map[string]any) {
			s := in.Snapshot
			var criteria []string
			if s.MaxUtilization >= 0.50 {
				criteria = append(criteria, fmt.Sprintf("max_utilization=%.2f >= 0.50", s.MaxUtilization))
			}
			if s.InterestChargesPresent {
				criteria = append(criteria, "interest_charges_present=true")
			}
			if s.MinimumPaymentOnlyFlag {
				criteria = append(criteria, "minimum_payment_only_flag=true")
			}
			if s.AnyOverdue {
				criteria = append(criteria, "any_overdue=true")
			}
			return len(criteria) > 0, criteria, map[string]any{
				"max_utilization":           s.MaxUtilization,
				"interest_charges_present":  s.InterestChargesPresent,
				"minimum_payment_only_flag": s.MinimumPaymentOnlyFlag,
				"any_overdue":               s.AnyOverdue,
			}
		},
	},
	{
		persona: domain.PersonaSavingsBuilder,
		weight:  func(*domain.FeatureSnapshot) float64 { return 0.7 },
		match: func(in Input) (bool, []string, map[string]any) {
			s := in.Snapshot
			matched := (s.SavingsGrowthRate >= 0.02 || s.NetSavingsInflow >= 200) &&
				s.AvgUtilization < 0.30

			var criteria []string
			if matched {
				if s.SavingsGrowthRate >= 0.02 {
					criteria = append(criteria, fmt.Sprintf("savings_growth_rate=%.4f >= 0.02", s.SavingsGrowthRate))
				}
				if s.NetSavingsInflow >= 200 {
					criteria = append(criteria, fmt.Sprintf("net_savings_inflow=%.2f >= 200", s.NetSavingsInflow))
				}
				criteria = append(criteria, fmt.Sprintf("avg_utilization=%.2f < 0.30", s.AvgUtilization))
			}
			return matched, criteria, map[string]any{
				"savings_growth_rate": s.SavingsGrowthRate,
				"net_savings_inflow":  s.NetSavingsInflow,
				"avg_utilization":     s.AvgUtilization,
			}
		},
	},
	{
		persona: domain.PersonaVariableIncome,
		weight:  func(*domain.FeatureSnapshot) float64 { return 0.6 },
		match: func(in Input) (bool, []string, map[string]any) {
			s := in.Snapshot
			matched := s.MedianPayGapDays > 45 && s.CashFlowBufferMonths < 1

			var criteria []string
			if matched {
				criteria = []string{
					fmt.Sprintf("median_pay_gap_days=%d > 45", s.MedianPayGapDays),
					fmt.Sprintf("cash_flow_buffer_months=%.2f < 1", s.CashFlowBufferMonths),
				}
			}
			return matched, criteria, map[string]any{
				"median_pay_gap_days":     s.MedianPayGapDays,
				"cash_flow_buffer_months": s.CashFlowBufferMonths,
			}
		},
	},
	{
		persona: domain.PersonaSubscriptionHeavy,
		weight:  func(*domain.FeatureSnapshot) float64 { return 0.5 },
		match: func(in Input) (bool, []string, map[string]any) {
			s := in.Snapshot
			matched := s.RecurringMerchants >= 3 &&
				(s.MonthlyRecurringSpend >= 50 || s.SubscriptionSpendShare >= 0.10)

			var criteria []string
			if matched {
				criteria = append(criteria, fmt.Sprintf("recurring_merchants=%d >= 3", s.RecurringMerchants))
				if s.MonthlyRecurringSpend >= 50 {
					criteria = append(criteria, fmt.Sprintf("monthly_recurring_spend=%.2f >= 50", s.MonthlyRecurringSpend))
				}
				if s.SubscriptionSpendShare >= 0.10 {
					criteria = append(criteria, fmt.Sprintf("subscription_spend_share=%.2f >= 0.10", s.SubscriptionSpendShare))
				}
			}
			return matched, criteria, map[string]any{
				"recurring_merchants":      s.RecurringMerchants,
				"monthly_recurring_spend":  s.MonthlyRecurringSpend,
				"subscription_spend_share": s.SubscriptionSpendShare,
			}
		},
	},
}

// Classify evaluates every rule against the input and returns the
// highest-priority match. Deterministic: the same snapshot always yields
// the same assignment. With no match the result is general_wellness with
// the fallback confidence sentinel.
func Classify(in Input) *domain.PersonaAssignment {
	s := in.Snapshot

	trace := domain.ReasoningTrace{
		PredicateResults: make(map[string]bool, len(rules)),
	}

	bestIdx := -1
	bestWeight := 0.0
	var bestCriteria []string
	var bestValues map[string]any

	for i, r := range rules {
		matched, criteria, values := r.match(in)
		trace.PredicateResults[r.persona] = matched
		if !matched {
			continue
		}
		trace.AllMatched = append(trace.AllMatched, r.persona)
		if w := r.weight(s); bestIdx == -1 || w > bestWeight {
			bestIdx = i
			bestWeight = w
			bestCriteria = criteria
			bestValues = values
		}
	}

	if bestIdx == -1 {
		trace.MatchedCriteria = []string{}
		trace.FeatureValues = map[string]any{}
		trace.Reason = "no persona criteria matched - fallback assignment"
		return &domain.PersonaAssignment{
			UserID:      s.UserID,
			WindowDays:  s.WindowDays,
			PersonaType: domain.PersonaGeneralWellness,
			Confidence:  FallbackConfidence,
			Reasoning:   trace,
		}
	}

	trace.MatchedCriteria = bestCriteria
	trace.FeatureValues = bestValues
	return &domain.PersonaAssignment{
		UserID:      s.UserID,
		WindowDays:  s.WindowDays,
		PersonaType: rules[bestIdx].persona,
		Confidence:  bestWeight,
		Reasoning:   trace,
	}
}
