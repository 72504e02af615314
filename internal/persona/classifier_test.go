package persona

import (
	"reflect"
	"testing"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

func baseSnapshot() *domain.FeatureSnapshot {
	return &domain.FeatureSnapshot{
		UserID:     "user_1",
		WindowDays: domain.WindowShort,
	}
}

func TestClassify_HighUtilizationWithInterest(t *testing.T) {
	snap := baseSnapshot()
	snap.MaxUtilization = 0.68
	snap.InterestChargesPresent = true

	got := Classify(Input{Snapshot: snap})

	if got.PersonaType != domain.PersonaHighUtilization {
		t.Fatalf("persona = %s, want %s", got.PersonaType, domain.PersonaHighUtilization)
	}
	// 0.68 is below the 0.80 escalation threshold.
	if got.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", got.Confidence)
	}
	if len(got.Reasoning.MatchedCriteria) != 2 {
		t.Errorf("matched criteria = %v, want 2 entries", got.Reasoning.MatchedCriteria)
	}
}

func TestClassify_HighUtilizationEscalatedConfidence(t *testing.T) {
	snap := baseSnapshot()
	snap.MaxUtilization = 0.85

	got := Classify(Input{Snapshot: snap})

	if got.PersonaType != domain.PersonaHighUtilization {
		t.Fatalf("persona = %s, want %s", got.PersonaType, domain.PersonaHighUtilization)
	}
	if got.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", got.Confidence)
	}
}

func TestClassify_DualMatchPicksHigherPriority(t *testing.T) {
	// Matches both subscription_heavy and savings_builder;
	// savings_builder wins on weight (0.7 > 0.5).
	snap := baseSnapshot()
	snap.RecurringMerchants = 4
	snap.MonthlyRecurringSpend = 120
	snap.SavingsGrowthRate = 0.03
	snap.AvgUtilization = 0.10

	got := Classify(Input{Snapshot: snap})

	if got.PersonaType != domain.PersonaSavingsBuilder {
		t.Fatalf("persona = %s, want %s", got.PersonaType, domain.PersonaSavingsBuilder)
	}
	if got.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", got.Confidence)
	}

	wantMatched := []string{domain.PersonaSavingsBuilder, domain.PersonaSubscriptionHeavy}
	if !reflect.DeepEqual(got.Reasoning.AllMatched, wantMatched) {
		t.Errorf("all matched = %v, want %v", got.Reasoning.AllMatched, wantMatched)
	}
	if !got.Reasoning.PredicateResults[domain.PersonaSubscriptionHeavy] {
		t.Error("predicate results should record the subscription_heavy match")
	}
}

func TestClassify_WealthBuilderBeatsEverything(t *testing.T) {
	snap := baseSnapshot()
	snap.AvgMonthlyIncome = 12000
	snap.TotalSavingsBalance = 60000
	snap.MaxUtilization = 0.85 // would also be high_utilization at 0.95
	snap.InvestmentAccountDetected = true

	// 0.85 utilization disqualifies wealth_builder outright.
	got := Classify(Input{Snapshot: snap, DerogatoryIn180d: false})
	if got.PersonaType != domain.PersonaHighUtilization {
		t.Fatalf("persona = %s, want %s (max_utilization > 0.20)", got.PersonaType, domain.PersonaHighUtilization)
	}

	snap.MaxUtilization = 0.10
	got = Classify(Input{Snapshot: snap, DerogatoryIn180d: false})
	if got.PersonaType != domain.PersonaWealthBuilder {
		t.Fatalf("persona = %s, want %s", got.PersonaType, domain.PersonaWealthBuilder)
	}
	if got.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", got.Confidence)
	}
}

func TestClassify_WealthBuilderRequiresCleanHistory(t *testing.T) {
	snap := baseSnapshot()
	snap.AvgMonthlyIncome = 12000
	snap.TotalSavingsBalance = 60000
	snap.MaxUtilization = 0.10
	snap.InvestmentAccountDetected = true

	got := Classify(Input{Snapshot: snap, DerogatoryIn180d: true})
	if got.PersonaType == domain.PersonaWealthBuilder {
		t.Error("derogatory events in the long window must disqualify wealth_builder")
	}
}

func TestClassify_VariableIncome(t *testing.T) {
	snap := baseSnapshot()
	snap.MedianPayGapDays = 60
	snap.CashFlowBufferMonths = 0.5

	got := Classify(Input{Snapshot: snap})
	if got.PersonaType != domain.PersonaVariableIncome {
		t.Fatalf("persona = %s, want %s", got.PersonaType, domain.PersonaVariableIncome)
	}
	if got.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", got.Confidence)
	}
}

func TestClassify_FallbackGeneralWellness(t *testing.T) {
	got := Classify(Input{Snapshot: baseSnapshot()})

	if got.PersonaType != domain.PersonaGeneralWellness {
		t.Fatalf("persona = %s, want %s", got.PersonaType, domain.PersonaGeneralWellness)
	}
	if got.Confidence != FallbackConfidence {
		t.Errorf("confidence = %v, want %v", got.Confidence, FallbackConfidence)
	}
	if got.Reasoning.Reason == "" {
		t.Error("fallback assignment should record a reason")
	}
	if len(got.Reasoning.PredicateResults) != 5 {
		t.Errorf("predicate results = %v, want all 5 rules recorded", got.Reasoning.PredicateResults)
	}
	for persona, matched := range got.Reasoning.PredicateResults {
		if matched {
			t.Errorf("predicate %s = true on an empty snapshot", persona)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	snap := baseSnapshot()
	snap.MaxUtilization = 0.55
	snap.RecurringMerchants = 3
	snap.SubscriptionSpendShare = 0.15

	first := Classify(Input{Snapshot: snap})
	for i := 0; i < 10; i++ {
		again := Classify(Input{Snapshot: snap})
		if again.PersonaType != first.PersonaType || again.Confidence != first.Confidence {
			t.Fatalf("run %d: got (%s, %v), want (%s, %v)",
				i, again.PersonaType, again.Confidence, first.PersonaType, first.Confidence)
		}
	}
}
