package features

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// DataSource provides the bank data the aggregator reads.
// Implemented by *storage.Store.
type DataSource interface {
	GetAccounts(userID string) ([]domain.Account, error)
	GetTransactionsSince(userID string, since time.Time) ([]domain.Transaction, error)
	GetLiabilities(userID string) ([]domain.Liability, error)
}

// SnapshotWriter persists computed snapshots keyed by (user, window).
// Implemented by *storage.Store.
type SnapshotWriter interface {
	UpsertSnapshot(snap *domain.FeatureSnapshot) error
}

// Aggregator computes windowed behavioral signals from transactions,
// accounts, and liabilities. The five signal groups (subscription,
// savings, credit, income, investment) are computed independently from
// the same inputs and written as one snapshot row.
type Aggregator struct {
	data      DataSource
	snapshots SnapshotWriter
	logger    *zap.Logger
	now       func() time.Time
}

// NewAggregator creates an aggregator over the given data source.
func NewAggregator(data DataSource, snapshots SnapshotWriter, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		data:      data,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Compute builds the snapshot for (userID, windowDays) and upserts it.
// A user with no accounts or transactions gets a zeroed snapshot, not an
// error: absence of a behavior is itself a signal.
func (a *Aggregator) Compute(userID string, windowDays int) (*domain.FeatureSnapshot, error) {
	computedAt := a.now()
	cutoff := computedAt.AddDate(0, 0, -windowDays)

	accounts, err := a.data.GetAccounts(userID)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	txns, err := a.data.GetTransactionsSince(userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	liabilities, err := a.data.GetLiabilities(userID)
	if err != nil {
		return nil, fmt.Errorf("load liabilities: %w", err)
	}

	snap := &domain.FeatureSnapshot{
		UserID:     userID,
		WindowDays: windowDays,
		ComputedAt: computedAt,
	}

	months := float64(windowDays) / 30.0
	avgMonthlyExpense := averageMonthlyExpense(txns, months)

	computeSubscriptionSignals(snap, txns, months)
	computeSavingsSignals(snap, accounts, txns, avgMonthlyExpense)
	computeCreditSignals(snap, accounts, liabilities, txns)
	computeIncomeSignals(snap, txns, accounts, months, avgMonthlyExpense)
	snap.InvestmentAccountDetected = detectInvestmentAccount(accounts)

	if err := a.snapshots.UpsertSnapshot(snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	a.logger.Info("computed feature snapshot",
		zap.String("user_id", userID),
		zap.Int("window_days", windowDays),
		zap.Int("recurring_merchants", snap.RecurringMerchants),
		zap.Float64("max_utilization", snap.MaxUtilization),
		zap.Bool("payroll_detected", snap.PayrollDetected))

	return snap, nil
}

// --- subscription signals ---

// billing cadences checked for recurring merchants, in days
var recurringIntervals = []int{7, 30, 90}

const recurringToleranceDays = 5

// isRecurringPattern reports whether sorted transaction dates cluster
// around a weekly, monthly, or quarterly cadence. At least 60% of
// consecutive gaps must fall within the tolerance of one interval.
func isRecurringPattern(dates []time.Time) bool {
	if len(dates) < 3 {
		return false
	}

	gaps := make([]int, 0, len(dates)-1)
	for i := 0; i < len(dates)-1; i++ {
		gaps = append(gaps, int(dates[i+1].Sub(dates[i]).Hours()/24))
	}

	for _, interval := range recurringIntervals {
		matching := 0
		for _, g := range gaps {
			if abs(g-interval) <= recurringToleranceDays {
				matching++
			}
		}
		if float64(matching) >= float64(len(gaps))*0.6 {
			return true
		}
	}
	return false
}

func computeSubscriptionSignals(snap *domain.FeatureSnapshot, txns []domain.Transaction, months float64) {
	byMerchant := make(map[string][]domain.Transaction)
	for _, t := range txns {
		if t.MerchantName != "" {
			byMerchant[t.MerchantName] = append(byMerchant[t.MerchantName], t)
		}
	}

	recurringSpend := decimal.Zero
	recurringCount := 0
	for _, group := range byMerchant {
		if len(group) < 3 {
			continue
		}
		dates := make([]time.Time, len(group))
		for i, t := range group {
			dates[i] = t.Date
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		if !isRecurringPattern(dates) {
			continue
		}
		recurringCount++
		for _, t := range group {
			recurringSpend = recurringSpend.Add(decimal.NewFromFloat(t.Amount).Abs())
		}
	}

	totalSpend := decimal.Zero
	for _, t := range txns {
		totalSpend = totalSpend.Add(decimal.NewFromFloat(t.Amount).Abs())
	}

	snap.RecurringMerchants = recurringCount
	if months > 0 {
		snap.MonthlyRecurringSpend = recurringSpend.Div(decimal.NewFromFloat(months)).InexactFloat64()
	}
	if totalSpend.IsPositive() {
		snap.SubscriptionSpendShare = recurringSpend.Div(totalSpend).InexactFloat64()
	}
}

// --- savings signals ---

func computeSavingsSignals(snap *domain.FeatureSnapshot, accounts []domain.Account, txns []domain.Transaction, avgMonthlyExpense float64) {
	savingsAccounts := make(map[string]bool)
	totalBalance := decimal.Zero
	for _, a := range accounts {
		if domain.IsSavingsAccount(a) {
			savingsAccounts[a.AccountID] = true
			totalBalance = totalBalance.Add(decimal.NewFromFloat(a.BalanceCurrent))
		}
	}

	netInflow := decimal.Zero
	for _, t := range txns {
		if savingsAccounts[t.AccountID] {
			netInflow = netInflow.Add(decimal.NewFromFloat(t.Amount))
		}
	}

	snap.TotalSavingsBalance = totalBalance.InexactFloat64()
	snap.NetSavingsInflow = netInflow.InexactFloat64()

	// Window-start balance is reconstructed by backing the net inflow out
	// of the current balance.
	startBalance := totalBalance.Sub(netInflow)
	if startBalance.IsPositive() {
		snap.SavingsGrowthRate = netInflow.Div(startBalance).InexactFloat64()
	}

	if avgMonthlyExpense > 0 {
		snap.EmergencyFundMonths = snap.TotalSavingsBalance / avgMonthlyExpense
	}
}

// --- credit signals ---

// minimumPaymentToleranceDollars is the slack allowed when deciding a user
// is paying only the minimum.
const minimumPaymentToleranceDollars = 5.0

func computeCreditSignals(snap *domain.FeatureSnapshot, accounts []domain.Account, liabilities []domain.Liability, txns []domain.Transaction) {
	var utilizations []float64
	for _, a := range accounts {
		if !domain.IsCreditCardAccount(a) || a.BalanceLimit <= 0 {
			continue
		}
		utilizations = append(utilizations, a.BalanceCurrent/a.BalanceLimit)
	}

	var sum float64
	for _, u := range utilizations {
		sum += u
		if u > snap.MaxUtilization {
			snap.MaxUtilization = u
		}
		if u >= 0.30 {
			snap.Utilization30Flag = true
		}
		if u >= 0.50 {
			snap.Utilization50Flag = true
		}
		if u >= 0.80 {
			snap.Utilization80Flag = true
		}
	}
	if len(utilizations) > 0 {
		snap.AvgUtilization = sum / float64(len(utilizations))
	}

	for _, l := range liabilities {
		if l.IsOverdue {
			snap.AnyOverdue = true
		}
		if l.MinimumPaymentAmount > 0 && l.LastPaymentAmount > 0 &&
			l.LastPaymentAmount <= l.MinimumPaymentAmount+minimumPaymentToleranceDollars {
			snap.MinimumPaymentOnlyFlag = true
		}
	}

	for _, t := range txns {
		if containsAny(t.CategoryPrimary, "interest") ||
			containsAny(t.CategoryDetailed, "interest") ||
			containsAny(t.MerchantName, "interest") {
			snap.InterestChargesPresent = true
			break
		}
	}
}

// --- income signals ---

var payrollKeywords = []string{"payroll", "paycheck", "salary", "direct deposit", "employer"}

func isPayrollTransaction(t domain.Transaction) bool {
	if t.Amount <= 0 {
		return false
	}
	if !strings.Contains(strings.ToLower(t.PaymentChannel), "ach") {
		return false
	}
	for _, kw := range payrollKeywords {
		if containsAny(t.MerchantName, kw) ||
			containsAny(t.CategoryPrimary, kw) ||
			containsAny(t.CategoryDetailed, kw) {
			return true
		}
	}
	return false
}

func computeIncomeSignals(snap *domain.FeatureSnapshot, txns []domain.Transaction, accounts []domain.Account, months float64, avgMonthlyExpense float64) {
	var payroll []domain.Transaction
	for _, t := range txns {
		if isPayrollTransaction(t) {
			payroll = append(payroll, t)
		}
	}

	// Two deposits minimum; a single payment tells nothing about cadence.
	snap.PayrollDetected = len(payroll) >= 2

	payrollSum := decimal.Zero
	for _, t := range payroll {
		payrollSum = payrollSum.Add(decimal.NewFromFloat(t.Amount))
	}
	if months > 0 {
		snap.AvgMonthlyIncome = payrollSum.Div(decimal.NewFromFloat(months)).InexactFloat64()
	}

	if len(payroll) >= 2 {
		dates := make([]time.Time, len(payroll))
		for i, t := range payroll {
			dates[i] = t.Date
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		gaps := make([]int, 0, len(dates)-1)
		for i := 0; i < len(dates)-1; i++ {
			gaps = append(gaps, int(dates[i+1].Sub(dates[i]).Hours()/24))
		}
		snap.MedianPayGapDays = medianInt(gaps)

		amounts := make([]float64, len(payroll))
		for i, t := range payroll {
			amounts[i] = t.Amount
		}
		mean := meanOf(amounts)
		if mean > 0 {
			snap.IncomeVariability = stddevOf(amounts, mean) / mean
		}
	}

	checkingBalance := 0.0
	for _, a := range accounts {
		if strings.EqualFold(a.Type, "checking") {
			checkingBalance += a.BalanceCurrent
		}
	}
	if avgMonthlyExpense > 0 {
		snap.CashFlowBufferMonths = checkingBalance / avgMonthlyExpense
	}
}

// --- investment detection ---

func detectInvestmentAccount(accounts []domain.Account) bool {
	for _, a := range accounts {
		if domain.IsInvestmentAccount(a) {
			return true
		}
	}
	return false
}

// --- helpers ---

// averageMonthlyExpense sums outflows (negative amounts) across all
// accounts and normalizes to a 30-day month.
func averageMonthlyExpense(txns []domain.Transaction, months float64) float64 {
	if months <= 0 {
		return 0
	}
	total := decimal.Zero
	for _, t := range txns {
		if t.Amount < 0 {
			total = total.Add(decimal.NewFromFloat(t.Amount).Abs())
		}
	}
	return total.Div(decimal.NewFromFloat(months)).InexactFloat64()
}

func containsAny(s, substr string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), substr)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func medianInt(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]int, len(vals))
	copy(sorted, vals)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddevOf(vals []float64, mean float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}
