package mysql

import (
	"context"
	"errors"

	accountDomain "ownbank-account-service/internal/domain/account"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) *AccountRepository { return &AccountRepository{db: db} }

var _ accountDomain.Repository = (*AccountRepository)(nil)

func (r *AccountRepository) Create(ctx context.Context, a *accountDomain.Account) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).Where("account_number = ?", accountNumber).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}

func (r *AccountRepository) GetByAccountNumberForUpdate(ctx context.Context, accountNumber string) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_number = ?", accountNumber).
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).Where("email = ?", email).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}

func (r *AccountRepository) ExistsByNumberOrEmail(ctx context.Context, accountNumber string, email *string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&accountDomain.Account{})
	if email != nil {
		q = q.Where("account_number = ? OR email = ?", accountNumber, *email)
	} else {
		q = q.Where("account_number = ?", accountNumber)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]accountDomain.Account, error) {
	var out []accountDomain.Account
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *AccountRepository) ListByAccountNumbers(ctx context.Context, accountNumbers []string) ([]accountDomain.Account, error) {
	if len(accountNumbers) == 0 {
		return nil, nil
	}
	var out []accountDomain.Account
	err := r.db.WithContext(ctx).Where("account_number IN ?", accountNumbers).Find(&out).Error
	return out, err
}

func (r *AccountRepository) ListPendingApproval(ctx context.Context) ([]accountDomain.Account, error) {
	var out []accountDomain.Account
	err := r.db.WithContext(ctx).
		Where("approved_by IS NULL AND account_role <> ?", accountDomain.RoleAdmin).
		Order("created_on ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *AccountRepository) SetApprovedBy(ctx context.Context, accountNumber, approver string) (*accountDomain.Account, error) {
	return r.UpdateFields(ctx, accountNumber, map[string]any{"approved_by": approver})
}

func (r *AccountRepository) SetLinkedAccounts(ctx context.Context, accountNumber string, linked []string) (*accountDomain.Account, error) {
	if linked == nil {
		linked = []string{}
	}
	// Updates with a struct runs the json serializer; a map would not.
	res := r.db.WithContext(ctx).
		Model(&accountDomain.Account{}).
		Where("account_number = ?", accountNumber).
		Select("linked_accounts").
		Updates(&accountDomain.Account{LinkedAccounts: linked})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	// mysql reports 0 affected rows for unchanged values; the read decides not-found
	return r.GetByAccountNumber(ctx, accountNumber)
}

// UpdateFields writes the given columns and returns the updated row.
func (r *AccountRepository) UpdateFields(ctx context.Context, accountNumber string, columns map[string]any) (*accountDomain.Account, error) {
	if len(columns) > 0 {
		res := r.db.WithContext(ctx).
			Model(&accountDomain.Account{}).
			Where("account_number = ?", accountNumber).
			Updates(columns)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
	}
	return r.GetByAccountNumber(ctx, accountNumber)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return accountDomain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return accountDomain.ErrDuplicateAccount
	}
	return err
}
