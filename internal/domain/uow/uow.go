package uow

import (
	"context"

	"ownbank-account-service/internal/domain/account"
)

type Repos struct {
	Accounts account.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the account row first, then pass it in
	WithinAccountTx(ctx context.Context, accountNumber string, fn func(r Repos, a *account.Account) error) error
}
