package storage

import (
	"time"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// SaveAccount inserts or replaces an account row.
func (s *Store) SaveAccount(a *domain.Account) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO accounts (account_id, user_id, type, subtype, balance_available, balance_current, balance_limit)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.AccountID, a.UserID, a.Type, a.Subtype, a.BalanceAvailable, a.BalanceCurrent, a.BalanceLimit)

	return err
}

// GetAccounts returns all accounts owned by a user.
func (s *Store) GetAccounts(userID string) ([]domain.Account, error) {
	rows, err := s.db.Query(`
		SELECT account_id, user_id, type, subtype, balance_available, balance_current, balance_limit
		FROM accounts WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.AccountID, &a.UserID, &a.Type, &a.Subtype, &a.BalanceAvailable, &a.BalanceCurrent, &a.BalanceLimit); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SaveTransaction inserts or replaces a transaction row.
func (s *Store) SaveTransaction(t *domain.Transaction) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO transactions (transaction_id, account_id, user_id, date, amount, merchant_name, payment_channel, category_primary, category_detailed, pending)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.TransactionID, t.AccountID, t.UserID, t.Date, t.Amount, t.MerchantName, t.PaymentChannel, t.CategoryPrimary, t.CategoryDetailed, t.Pending)

	return err
}

// GetTransactionsSince returns a user's transactions dated on or after
// the cutoff, oldest first.
func (s *Store) GetTransactionsSince(userID string, since time.Time) ([]domain.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT transaction_id, account_id, user_id, date, amount, merchant_name, payment_channel, category_primary, category_detailed, pending
		FROM transactions WHERE user_id = ? AND date >= ?
		ORDER BY date ASC
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.TransactionID, &t.AccountID, &t.UserID, &t.Date, &t.Amount, &t.MerchantName, &t.PaymentChannel, &t.CategoryPrimary, &t.CategoryDetailed, &t.Pending); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// SaveLiability inserts or replaces a liability row.
func (s *Store) SaveLiability(l *domain.Liability) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO liabilities (liability_id, account_id, user_id, liability_type, apr_purchase, apr_balance_transfer, minimum_payment_amount, last_payment_amount, is_overdue, next_payment_due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.LiabilityID, l.AccountID, l.UserID, l.LiabilityType, l.APRPurchase, l.APRBalanceTransfer, l.MinimumPaymentAmount, l.LastPaymentAmount, l.IsOverdue, l.NextPaymentDueDate)

	return err
}

// GetLiabilities returns all liabilities owned by a user.
func (s *Store) GetLiabilities(userID string) ([]domain.Liability, error) {
	rows, err := s.db.Query(`
		SELECT liability_id, account_id, user_id, liability_type, apr_purchase, apr_balance_transfer, minimum_payment_amount, last_payment_amount, is_overdue, next_payment_due_date
		FROM liabilities WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var liabilities []domain.Liability
	for rows.Next() {
		var l domain.Liability
		var aprP, aprBT, minPay, lastPay *float64
		if err := rows.Scan(&l.LiabilityID, &l.AccountID, &l.UserID, &l.LiabilityType, &aprP, &aprBT, &minPay, &lastPay, &l.IsOverdue, &l.NextPaymentDueDate); err != nil {
			return nil, err
		}
		if aprP != nil {
			l.APRPurchase = *aprP
		}
		if aprBT != nil {
			l.APRBalanceTransfer = *aprBT
		}
		if minPay != nil {
			l.MinimumPaymentAmount = *minPay
		}
		if lastPay != nil {
			l.LastPaymentAmount = *lastPay
		}
		liabilities = append(liabilities, l)
	}
	return liabilities, rows.Err()
}
