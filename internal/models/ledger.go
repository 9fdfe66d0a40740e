package models

import "github.com/shopspring/decimal"

type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeInvestment AccountType = "INVESTMENT"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeInvestment:
		return true
	}
	return false
}

// Account is a single ledger account. Balance is never negative once committed.
type Account struct {
	ID            int64           `json:"id" db:"id"`
	UserID        int64           `json:"userId" db:"user_id"`
	AccountType   AccountType     `json:"accountType" db:"account_type"`
	AccountNumber string          `json:"accountNumber" db:"account_number"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
}
