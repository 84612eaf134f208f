package account

import (
	"strings"
	"time"
)

// Table: accounts
type Account struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier, immutable once created
	AccountNumber  string    `gorm:"column:account_number;size:64;not null;uniqueIndex:ux_accounts_account_number"`
	AccountName    string    `gorm:"column:account_name;size:255;not null"`
	Email          *string   `gorm:"column:email;size:320;uniqueIndex:ux_accounts_email"`
	PasswordDigest string    `gorm:"column:password_digest;size:255;not null"`
	AccountRole    Role      `gorm:"column:account_role;type:enum('admin','sub-admin','user');not null;default:'user'"`
	TotalAmount    float64   `gorm:"column:total_amount;type:decimal(18,2);not null;default:0"`
	TotalPenalty   float64   `gorm:"column:total_penalty;type:decimal(18,2);not null;default:0"`
	CreatedOn      time.Time `gorm:"column:created_on;not null"`
	// nil means pending approval
	ApprovedBy *string `gorm:"column:approved_by;size:64;index"`
	// Account numbers, never the owner's own number
	LinkedAccounts []string  `gorm:"column:linked_accounts;type:json;serializer:json"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Account) TableName() string { return "accounts" }

// EmailValue returns the email or "" when the account has none.
func (a *Account) EmailValue() string {
	if a == nil || a.Email == nil {
		return ""
	}
	return *a.Email
}

func (a *Account) IsApproved() bool { return a != nil && a.ApprovedBy != nil && *a.ApprovedBy != "" }

// CanLogin reports whether the account may obtain a session: admins always,
// everyone else only once approved.
func (a *Account) CanLogin() bool {
	return a != nil && (a.AccountRole == RoleAdmin || a.IsApproved())
}

func (a *Account) IsLinkedTo(accountNumber string) bool {
	for _, n := range a.LinkedAccounts {
		if n == accountNumber {
			return true
		}
	}
	return false
}

// NormalizeEmail trims and lower-cases an address. Empty input yields nil.
func NormalizeEmail(raw string) *string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}
	return &s
}

// EditableFields is the allowlist for the self-update path, keyed by the
// request field name and mapped to the column it writes.
var EditableFields = map[string]string{
	"accountName":  "account_name",
	"totalAmount":  "total_amount",
	"totalPenalty": "total_penalty",
}

const MinPasswordLength = 8
