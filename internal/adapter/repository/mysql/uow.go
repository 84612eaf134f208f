package mysql

import (
	"context"

	"ownbank-account-service/internal/domain/account"
	"ownbank-account-service/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(uow.Repos{Accounts: &AccountRepository{db: tx}})
	})
}

func (u *GormUoW) WithinAccountTx(ctx context.Context, accountNumber string, fn func(r uow.Repos, a *account.Account) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{Accounts: &AccountRepository{db: tx}}
		// lock the account row up-front to prevent lost updates
		a, err := r.Accounts.GetByAccountNumberForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
