package domain

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to approved", StatusPendingApproval, StatusApproved, true},
		{"pending to rejected", StatusPendingApproval, StatusRejected, true},
		{"pending to overridden", StatusPendingApproval, StatusOverridden, true},
		{"approved is terminal", StatusApproved, StatusRejected, false},
		{"rejected is terminal", StatusRejected, StatusApproved, false},
		{"overridden is terminal", StatusOverridden, StatusApproved, false},
		{"no self transition", StatusPendingApproval, StatusPendingApproval, false},
		{"unknown target", StatusPendingApproval, "expired", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestAccountTypeHelpers(t *testing.T) {
	tests := []struct {
		accountType  string
		isSavings    bool
		isInvestment bool
		isCreditCard bool
	}{
		{"savings", true, false, false},
		{"Money Market", true, false, false},
		{"cash management", true, false, false},
		{"HSA", true, false, false},
		{"investment", false, true, false},
		{"Brokerage", false, true, false},
		{"401k", false, true, false},
		{"IRA", false, true, false},
		{"pension", false, true, false},
		{"credit card", false, false, true},
		{"Credit_Card", false, false, true},
		{"checking", false, false, false},
		{"mortgage", false, false, false},
	}

	for _, tt := range tests {
		a := Account{Type: tt.accountType}
		if got := IsSavingsAccount(a); got != tt.isSavings {
			t.Errorf("IsSavingsAccount(%q) = %v, want %v", tt.accountType, got, tt.isSavings)
		}
		if got := IsInvestmentAccount(a); got != tt.isInvestment {
			t.Errorf("IsInvestmentAccount(%q) = %v, want %v", tt.accountType, got, tt.isInvestment)
		}
		if got := IsCreditCardAccount(a); got != tt.isCreditCard {
			t.Errorf("IsCreditCardAccount(%q) = %v, want %v", tt.accountType, got, tt.isCreditCard)
		}
	}
}
