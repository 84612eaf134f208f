package db

import (
	"time"

	"ownbank-account-service/internal/domain/account"

	"gorm.io/gorm"
)

// Migrate creates or updates the accounts table. The mysql schema uses an
// enum role column; sqlite has no enum so it gets a text-only twin.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == DriverSQLite {
		return db.AutoMigrate(&sqliteAccount{})
	}
	return db.AutoMigrate(&account.Account{})
}

type sqliteAccount struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	AccountNumber  string    `gorm:"column:account_number;not null;uniqueIndex:ux_accounts_account_number"`
	AccountName    string    `gorm:"column:account_name;not null"`
	Email          *string   `gorm:"column:email;uniqueIndex:ux_accounts_email"`
	PasswordDigest string    `gorm:"column:password_digest;not null"`
	AccountRole    string    `gorm:"column:account_role;type:text;not null;default:'user'"`
	TotalAmount    float64   `gorm:"column:total_amount;not null;default:0"`
	TotalPenalty   float64   `gorm:"column:total_penalty;not null;default:0"`
	CreatedOn      time.Time `gorm:"column:created_on;not null"`
	ApprovedBy     *string   `gorm:"column:approved_by;index"`
	LinkedAccounts string    `gorm:"column:linked_accounts;type:text"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (sqliteAccount) TableName() string { return "accounts" }
