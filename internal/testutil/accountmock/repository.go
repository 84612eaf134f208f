package accountmock

import (
	"context"
	"errors"

	domain "ownbank-account-service/internal/domain/account"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("accountmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unfilled methods return errUnimplemented.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *domain.Account) error
	GetByAccountNumberFn          func(ctx context.Context, accountNumber string) (*domain.Account, error)
	GetByAccountNumberForUpdateFn func(ctx context.Context, accountNumber string) (*domain.Account, error)
	GetByEmailFn                  func(ctx context.Context, email string) (*domain.Account, error)
	ExistsByNumberOrEmailFn       func(ctx context.Context, accountNumber string, email *string) (bool, error)
	ListFn                        func(ctx context.Context) ([]domain.Account, error)
	ListByAccountNumbersFn        func(ctx context.Context, accountNumbers []string) ([]domain.Account, error)
	ListPendingApprovalFn         func(ctx context.Context) ([]domain.Account, error)
	SetApprovedByFn               func(ctx context.Context, accountNumber, approver string) (*domain.Account, error)
	SetLinkedAccountsFn           func(ctx context.Context, accountNumber string, linked []string) (*domain.Account, error)
	UpdateFieldsFn                func(ctx context.Context, accountNumber string, columns map[string]any) (*domain.Account, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Account) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return errUnimplemented
}

func (m *Repo) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if m.GetByAccountNumberFn != nil {
		return m.GetByAccountNumberFn(ctx, accountNumber)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByAccountNumberForUpdate(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if m.GetByAccountNumberForUpdateFn != nil {
		return m.GetByAccountNumberForUpdateFn(ctx, accountNumber)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, errUnimplemented
}

func (m *Repo) ExistsByNumberOrEmail(ctx context.Context, accountNumber string, email *string) (bool, error) {
	if m.ExistsByNumberOrEmailFn != nil {
		return m.ExistsByNumberOrEmailFn(ctx, accountNumber, email)
	}
	return false, errUnimplemented
}

func (m *Repo) List(ctx context.Context) ([]domain.Account, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByAccountNumbers(ctx context.Context, accountNumbers []string) ([]domain.Account, error) {
	if m.ListByAccountNumbersFn != nil {
		return m.ListByAccountNumbersFn(ctx, accountNumbers)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListPendingApproval(ctx context.Context) ([]domain.Account, error) {
	if m.ListPendingApprovalFn != nil {
		return m.ListPendingApprovalFn(ctx)
	}
	return nil, errUnimplemented
}

func (m *Repo) SetApprovedBy(ctx context.Context, accountNumber, approver string) (*domain.Account, error) {
	if m.SetApprovedByFn != nil {
		return m.SetApprovedByFn(ctx, accountNumber, approver)
	}
	return nil, errUnimplemented
}

func (m *Repo) SetLinkedAccounts(ctx context.Context, accountNumber string, linked []string) (*domain.Account, error) {
	if m.SetLinkedAccountsFn != nil {
		return m.SetLinkedAccountsFn(ctx, accountNumber, linked)
	}
	return nil, errUnimplemented
}

func (m *Repo) UpdateFields(ctx context.Context, accountNumber string, columns map[string]any) (*domain.Account, error) {
	if m.UpdateFieldsFn != nil {
		return m.UpdateFieldsFn(ctx, accountNumber, columns)
	}
	return nil, errUnimplemented
}
