package domain

import (
	"time"
)

// Aggregation windows in days. All snapshots and persona assignments are
// keyed by one of these.
const (
	WindowShort = 30
	WindowLong  = 180
)

// Persona type constants
const (
	PersonaHighUtilization   = "high_utilization"
	PersonaVariableIncome    = "variable_income"
	PersonaSubscriptionHeavy = "subscription_heavy"
	PersonaSavingsBuilder    = "savings_builder"
	PersonaWealthBuilder     = "wealth_builder"
	PersonaGeneralWellness   = "general_wellness"
)

// Recommendation status constants
const (
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusOverridden      = "overridden"
	StatusRejected        = "rejected"
)

// Recommendation content type constants
const (
	ContentEducation    = "education"
	ContentPartnerOffer = "partner_offer"
)

// Operator action type constants
const (
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionOverride = "override"
)

// User is a customer record. Consent gates all recommendation generation.
type User struct {
	UserID           string     `json:"user_id"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	ConsentStatus    bool       `json:"consent_status"`
	ConsentGrantedAt *time.Time `json:"consent_granted_at,omitempty"`
	ConsentRevokedAt *time.Time `json:"consent_revoked_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Account is a bank, credit, or investment account. Immutable after
// ingestion except for balance refreshes.
type Account struct {
	AccountID        string  `json:"account_id"`
	UserID           string  `json:"user_id"`
	Type             string  `json:"type"`
	Subtype          string  `json:"subtype,omitempty"`
	BalanceAvailable float64 `json:"balance_available"`
	BalanceCurrent   float64 `json:"balance_current"`
	BalanceLimit     float64 `json:"balance_limit"`
}

// Transaction is a single signed ledger entry. Append-only.
type Transaction struct {
	TransactionID    string    `json:"transaction_id"`
	AccountID        string    `json:"account_id"`
	UserID           string    `json:"user_id"`
	Date             time.Time `json:"date"`
	Amount           float64   `json:"amount"` // positive = money in
	MerchantName     string    `json:"merchant_name,omitempty"`
	PaymentChannel   string    `json:"payment_channel,omitempty"`
	CategoryPrimary  string    `json:"category_primary,omitempty"`
	CategoryDetailed string    `json:"category_detailed,omitempty"`
	Pending          bool      `json:"pending"`
}

// Liability carries credit terms for a credit-type account.
type Liability struct {
	LiabilityID          string     `json:"liability_id"`
	AccountID            string     `json:"account_id"`
	UserID               string     `json:"user_id"`
	LiabilityType        string     `json:"liability_type"` // credit_card, mortgage, student_loan
	APRPurchase          float64    `json:"apr_purchase,omitempty"`
	APRBalanceTransfer   float64    `json:"apr_balance_transfer,omitempty"`
	MinimumPaymentAmount float64    `json:"minimum_payment_amount,omitempty"`
	LastPaymentAmount    float64    `json:"last_payment_amount,omitempty"`
	IsOverdue            bool       `json:"is_overdue"`
	NextPaymentDueDate   *time.Time `json:"next_payment_due_date,omitempty"`
}

// FeatureSnapshot holds the windowed behavioral signals for one user.
// Exactly one row exists per (user, window); recomputation overwrites it.
type FeatureSnapshot struct {
	UserID     string    `json:"user_id"`
	WindowDays int       `json:"window_days"`
	ComputedAt time.Time `json:"computed_at"`

	// Subscription signals
	RecurringMerchants     int     `json:"recurring_merchants"`
	MonthlyRecurringSpend  float64 `json:"monthly_recurring_spend"`
	SubscriptionSpendShare float64 `json:"subscription_spend_share"`

	// Savings signals
	NetSavingsInflow    float64 `json:"net_savings_inflow"`
	SavingsGrowthRate   float64 `json:"savings_growth_rate"`
	EmergencyFundMonths float64 `json:"emergency_fund_months"`
	TotalSavingsBalance float64 `json:"total_savings_balance"`

	// Credit signals
	AvgUtilization         float64 `json:"avg_utilization"`
	MaxUtilization         float64 `json:"max_utilization"`
	Utilization30Flag      bool    `json:"utilization_30_flag"`
	Utilization50Flag      bool    `json:"utilization_50_flag"`
	Utilization80Flag      bool    `json:"utilization_80_flag"`
	MinimumPaymentOnlyFlag bool    `json:"minimum_payment_only_flag"`
	InterestChargesPresent bool    `json:"interest_charges_present"`
	AnyOverdue             bool    `json:"any_overdue"`

	// Income signals
	PayrollDetected      bool    `json:"payroll_detected"`
	MedianPayGapDays     int     `json:"median_pay_gap_days"`
	IncomeVariability    float64 `json:"income_variability"`
	CashFlowBufferMonths float64 `json:"cash_flow_buffer_months"`
	AvgMonthlyIncome     float64 `json:"avg_monthly_income"`

	// Investment signals
	InvestmentAccountDetected bool `json:"investment_account_detected"`
}

// ReasoningTrace records every predicate evaluation behind a persona
// assignment so operators can audit why a user was classified.
type ReasoningTrace struct {
	MatchedCriteria  []string        `json:"matched_criteria"`
	FeatureValues    map[string]any  `json:"feature_values"`
	PredicateResults map[string]bool `json:"predicate_results"`
	AllMatched       []string        `json:"all_matched_personas,omitempty"`
	Reason           string          `json:"reason,omitempty"`
}

// PersonaAssignment is the classification result for one (user, window).
// Reassignment overwrites the prior row.
type PersonaAssignment struct {
	UserID      string         `json:"user_id"`
	WindowDays  int            `json:"window_days"`
	PersonaType string         `json:"persona_type"`
	Confidence  float64        `json:"confidence"`
	Reasoning   ReasoningTrace `json:"reasoning"`
	AssignedAt  time.Time      `json:"assigned_at"`
}

// ProductOffer is a catalog entry, read-only to this service.
type ProductOffer struct {
	ProductID                    string   `json:"product_id"`
	ProductName                  string   `json:"product_name"`
	ProductType                  string   `json:"product_type"`
	Category                     string   `json:"category"`
	ShortDescription             string   `json:"short_description"`
	Benefits                     []string `json:"benefits"`
	TypicalAPYOrFee              string   `json:"typical_apy_or_fee,omitempty"`
	PartnerName                  string   `json:"partner_name,omitempty"`
	PartnerLink                  string   `json:"partner_link,omitempty"`
	Disclosure                   string   `json:"disclosure,omitempty"`
	PersonaTargets               []string `json:"persona_targets"`
	MinIncome                    float64  `json:"min_income,omitempty"`
	MaxCreditUtilization         float64  `json:"max_credit_utilization,omitempty"`
	RequiresNoExistingSavings    bool     `json:"requires_no_existing_savings"`
	RequiresNoExistingInvestment bool     `json:"requires_no_existing_investment"`
	Active                       bool     `json:"active"`
}

// Article is a pre-embedded catalog entry used for education enrichment.
type Article struct {
	ArticleID   string   `json:"article_id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Category    string   `json:"category,omitempty"`
	URL         string   `json:"url,omitempty"`
	PersonaTags []string `json:"persona_tags,omitempty"`
}

// ValidationWarning is an advisory tone-check finding. Warnings are
// attached to recommendation metadata and never block persistence.
type ValidationWarning struct {
	Severity string `json:"severity"` // critical or notable
	Type     string `json:"type"`
	Message  string `json:"message"`
}

// RecommendationMetadata is the JSON blob persisted alongside each
// recommendation row.
type RecommendationMetadata struct {
	ValidationWarnings []ValidationWarning `json:"validation_warnings"`
	ArticleID          string              `json:"article_id,omitempty"`
	ArticleTitle       string              `json:"article_title,omitempty"`
	ArticleSimilarity  float64             `json:"article_similarity,omitempty"`
	ProductID          string              `json:"product_id,omitempty"`
	RelevanceScore     float64             `json:"relevance_score,omitempty"`
}

// Recommendation is one generated content item awaiting operator review.
type Recommendation struct {
	RecommendationID string                 `json:"recommendation_id"`
	UserID           string                 `json:"user_id"`
	PersonaType      string                 `json:"persona_type"`
	WindowDays       int                    `json:"window_days"`
	ContentType      string                 `json:"content_type"`
	Title            string                 `json:"title"`
	Content          string                 `json:"content"`
	Rationale        string                 `json:"rationale"`
	Status           string                 `json:"status"`
	ApprovedBy       string                 `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time             `json:"approved_at,omitempty"`
	OverrideReason   string                 `json:"override_reason,omitempty"`
	OriginalContent  string                 `json:"original_content,omitempty"`
	Metadata         RecommendationMetadata `json:"metadata"`
	GeneratedAt      time.Time              `json:"generated_at"`
	GenerationTimeMS int                    `json:"generation_time_ms"`
	ExpiresAt        *time.Time             `json:"expires_at,omitempty"`
}

// OperatorAction is the audit record for one state transition.
type OperatorAction struct {
	ActionID         int64     `json:"action_id"`
	OperatorID       string    `json:"operator_id"`
	ActionType       string    `json:"action_type"`
	RecommendationID string    `json:"recommendation_id"`
	UserID           string    `json:"user_id"`
	Reason           string    `json:"reason,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// ConsentLogEntry is the audit record for one consent toggle.
type ConsentLogEntry struct {
	LogID     int64     `json:"log_id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"` // granted or revoked
	Timestamp time.Time `json:"timestamp"`
}

// CanTransition reports whether a recommendation may move from one status
// to another. The lifecycle is one-way: pending_approval is the only
// non-terminal state.
func CanTransition(from, to string) bool {
	if from != StatusPendingApproval {
		return false
	}
	switch to {
	case StatusApproved, StatusOverridden, StatusRejected:
		return true
	}
	return false
}

// SavingsAccountTypes are the account types counted as savings for the
// savings signals and HYSA exclusion checks.
var SavingsAccountTypes = map[string]bool{
	"savings":         true,
	"money market":    true,
	"cash management": true,
	"hsa":             true,
}

// InvestmentAccountTypes are the account types counted as investment
// vehicles for wealth_builder detection and robo-advisor exclusion.
var InvestmentAccountTypes = map[string]bool{
	"investment": true,
	"brokerage":  true,
	"401k":       true,
	"ira":        true,
	"pension":    true,
}

// IsSavingsAccount reports whether the account counts as savings.
func IsSavingsAccount(a Account) bool {
	return SavingsAccountTypes[normalizeType(a.Type)]
}

// IsInvestmentAccount reports whether the account counts as an investment
// vehicle.
func IsInvestmentAccount(a Account) bool {
	return InvestmentAccountTypes[normalizeType(a.Type)]
}

// IsCreditCardAccount reports whether the account is a revolving credit
// line with a limit.
func IsCreditCardAccount(a Account) bool {
	t := normalizeType(a.Type)
	return t == "credit card" || t == "credit_card"
}

func normalizeType(t string) string {
	out := make([]rune, 0, len(t))
	for _, r := range t {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}
