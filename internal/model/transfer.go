// Package model defines the core domain models used throughout the application.
package model

import "time"

// TransferStatus tracks a transfer attempt through its lifecycle.
type TransferStatus string

// Transfer status constants. The mixed casing mirrors the backend wire
// values exactly; do not normalize them.
const (
	StatusOTPRequired  TransferStatus = "OTP_REQUIRED"
	StatusPendingAdmin TransferStatus = "PENDING_ADMIN"
	StatusPending      TransferStatus = "pending"
	StatusCompleted    TransferStatus = "completed"
	StatusFailed       TransferStatus = "failed"
)

// Terminal reports whether the status can no longer change.
func (s TransferStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// AccountType identifies which of the user's accounts funds a transfer.
type AccountType string

// Funding account constants.
const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
)

// Amount is a money value with its currency. Value is always rendered with
// exactly two decimal places.
type Amount struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// Party identifies one side of a transfer.
type Party struct {
	Name string `json:"name"`
	Tag  string `json:"tag,omitempty"`
}

// TransferDraft is the ephemeral, form-owned state of an in-progress
// transfer. It is never persisted; only its derived snapshot is.
type TransferDraft struct {
	FromAccount AccountType
	Recipient   string
	Note        string
	RawAmount   string
	Amount      float64
	Fields      map[string]string // rail-specific extras (bank name, SWIFT, network...)
}

// TransferSnapshot is the persisted record of the most recent attempted
// transfer. The snapshot store holds at most one of these at a time.
type TransferSnapshot struct {
	CreatedAt   time.Time      `json:"createdAt"`
	Status      TransferStatus `json:"status"`
	Rail        string         `json:"rail"`
	ReferenceID string         `json:"referenceId"`
	Note        string         `json:"note,omitempty"`
	Sender      Party          `json:"sender"`
	Recipient   Party          `json:"recipient"`
	Amount      Amount         `json:"amount"`
	Cancelable  bool           `json:"cancelable"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// Balances holds the user's account balances as last reported by the
// backend. Locally cached copies are display fallbacks only, never
// authoritative.
type Balances struct {
	Checking float64 `json:"checking"`
	Savings  float64 `json:"savings"`
}

// ForAccount returns the balance of the given funding account.
func (b Balances) ForAccount(account AccountType) float64 {
	if account == AccountSavings {
		return b.Savings
	}
	return b.Checking
}

// User is the authenticated profile returned by the backend.
type User struct {
	Name     string   `json:"name"`
	Role     string   `json:"role"`
	Balances Balances `json:"balances"`
}
