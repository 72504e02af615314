package products

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// baseScore is every candidate's starting relevance before category rules.
const baseScore = 0.5

// maxMatches caps how many partner offers one generation may surface.
const maxMatches = 2

// CatalogSource reads the product catalog. Implemented by *storage.Store.
type CatalogSource interface {
	ListActiveProducts() ([]*domain.ProductOffer, error)
}

// Match is one surfaced product with its relevance score and a
// deterministic rationale citing the user's own numbers.
type Match struct {
	Product        *domain.ProductOffer
	RelevanceScore float64
	Rationale      string
}

// Matcher scores catalog products against a user's signals and filters
// them through hard eligibility rules.
type Matcher struct {
	catalog CatalogSource
	logger  *zap.Logger
}

// NewMatcher creates a product matcher over the given catalog.
func NewMatcher(catalog CatalogSource, logger *zap.Logger) *Matcher {
	return &Matcher{catalog: catalog, logger: logger}
}

// Match returns the top products for a persona, scored against the
// snapshot and filtered by eligibility. An empty result is a normal
// outcome: the orchestrator proceeds education-only.
func (m *Matcher) Match(personaType string, snap *domain.FeatureSnapshot, accounts []domain.Account) ([]Match, error) {
	catalog, err := m.catalog.ListActiveProducts()
	if err != nil {
		return nil, fmt.Errorf("load product catalog: %w", err)
	}

	var candidates []Match
	for _, p := range catalog {
		if !targetsPersona(p, personaType) {
			continue
		}
		score := relevanceScore(p, snap, accounts)
		if score < baseScore {
			continue
		}
		candidates = append(candidates, Match{
			Product:        p,
			RelevanceScore: score,
			Rationale:      rationale(p, snap),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RelevanceScore > candidates[j].RelevanceScore
	})

	var eligible []Match
	for _, c := range candidates {
		if ok, reason := checkEligibility(c.Product, snap, accounts); ok {
			eligible = append(eligible, c)
		} else {
			m.logger.Debug("product filtered by eligibility",
				zap.String("product_id", c.Product.ProductID),
				zap.String("reason", reason))
		}
		if len(eligible) == maxMatches {
			break
		}
	}

	return eligible, nil
}

func targetsPersona(p *domain.ProductOffer, personaType string) bool {
	for _, t := range p.PersonaTargets {
		if t == personaType {
			return true
		}
	}
	return false
}

// relevanceScore starts every product at 0.5 and applies category-specific
// adjustments, clamped to [0, 1].
func relevanceScore(p *domain.ProductOffer, snap *domain.FeatureSnapshot, accounts []domain.Account) float64 {
	score := baseScore

	switch p.Category {
	case "balance_transfer":
		if snap.AvgUtilization > 0.5 {
			score += 0.3
		}
		if snap.InterestChargesPresent {
			score += 0.2
		}
		if snap.AvgUtilization > 0.7 {
			score += 0.2
		}

	case "hysa":
		if snap.NetSavingsInflow > 0 && snap.EmergencyFundMonths < 3 {
			score += 0.4
		}
		if snap.SavingsGrowthRate > 0.02 {
			score += 0.2
		}
		if hasSavingsAccount(accounts) {
			score -= 0.5
		}

	case "budgeting_app":
		if snap.IncomeVariability > 0.3 {
			score += 0.3
		}
		if snap.CashFlowBufferMonths < 1 {
			score += 0.3
		}
		if snap.IncomeVariability > 0.25 {
			score += 0.2
		}

	case "subscription_manager":
		if snap.RecurringMerchants >= 5 {
			score += 0.4
		}
		if snap.SubscriptionSpendShare > 0.2 {
			score += 0.3
		}

	case "robo_advisor":
		if snap.AvgMonthlyIncome > 5000 && snap.AvgUtilization < 0.3 {
			score += 0.4
		}
		if snap.EmergencyFundMonths >= 3 {
			score += 0.3
		}
		if hasInvestmentAccount(accounts) {
			score -= 0.4
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// checkEligibility applies hard pass/fail rules after scoring. A product
// must clear every rule to be surfaced.
func checkEligibility(p *domain.ProductOffer, snap *domain.FeatureSnapshot, accounts []domain.Account) (bool, string) {
	if p.MinIncome > 0 && snap.AvgMonthlyIncome < p.MinIncome {
		return false, fmt.Sprintf("income below minimum requirement ($%.2f < $%.2f)", snap.AvgMonthlyIncome, p.MinIncome)
	}

	if p.MaxCreditUtilization > 0 && p.MaxCreditUtilization < 1.0 && snap.AvgUtilization > p.MaxCreditUtilization {
		return false, fmt.Sprintf("credit utilization too high (%.1f%% > %.1f%%)", snap.AvgUtilization*100, p.MaxCreditUtilization*100)
	}

	if p.RequiresNoExistingSavings && hasSavingsAccount(accounts) {
		return false, "already has savings account"
	}

	if p.RequiresNoExistingInvestment && hasInvestmentAccount(accounts) {
		return false, "already has investment account"
	}

	// Balance transfer only makes sense with a meaningful balance to move.
	if p.Category == "balance_transfer" && snap.AvgUtilization < 0.3 {
		return false, fmt.Sprintf("balance transfer not beneficial at current utilization (%.1f%% < 30%%)", snap.AvgUtilization*100)
	}

	return true, ""
}

var apyPattern = regexp.MustCompile(`(\d+\.?\d*)%`)

// rationale produces a one-sentence explanation grounded in the user's
// actual signal values.
func rationale(p *domain.ProductOffer, snap *domain.FeatureSnapshot) string {
	switch p.Category {
	case "balance_transfer":
		return fmt.Sprintf(
			"With your credit utilization at %.0f%%, this card could save you approximately $50/month in interest.",
			snap.AvgUtilization*100)

	case "hysa":
		apy := 0.045
		apyStr := p.TypicalAPYOrFee
		if apyStr == "" {
			apyStr = "4.5% APY"
		}
		if m := apyPattern.FindStringSubmatch(apyStr); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				apy = v / 100
			}
		}
		monthlySavings := snap.NetSavingsInflow
		if monthlySavings <= 0 {
			monthlySavings = 500
		}
		return fmt.Sprintf(
			"Your $%.0f/month savings in a HYSA earning %s could generate approximately $%.0f extra per year.",
			monthlySavings, apyStr, monthlySavings*12*apy)

	case "budgeting_app":
		bufferDays := snap.CashFlowBufferMonths * 30
		if snap.IncomeVariability > 0.3 {
			return fmt.Sprintf(
				"With variable income (variability: %.0f%%) and only %.0f days of buffer, this app helps manage irregular cash flow.",
				snap.IncomeVariability*100, bufferDays)
		}
		return fmt.Sprintf(
			"With only %.0f days of cash flow buffer, this app helps you track expenses and build financial stability.",
			bufferDays)

	case "subscription_manager":
		return fmt.Sprintf(
			"You have %d recurring subscriptions totaling $%.0f/month - this tool can help identify savings.",
			snap.RecurringMerchants, snap.MonthlyRecurringSpend)

	case "robo_advisor":
		return fmt.Sprintf(
			"With $%.0f/month income and %.1f months emergency fund, you're ready to start investing.",
			snap.AvgMonthlyIncome, snap.EmergencyFundMonths)
	}

	return "This product aligns with your financial profile and could help you achieve your goals."
}

func hasSavingsAccount(accounts []domain.Account) bool {
	for _, a := range accounts {
		if domain.IsSavingsAccount(a) {
			return true
		}
	}
	return false
}

func hasInvestmentAccount(accounts []domain.Account) bool {
	for _, a := range accounts {
		if domain.IsInvestmentAccount(a) {
			return true
		}
	}
	return false
}
