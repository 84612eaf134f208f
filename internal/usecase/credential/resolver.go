package credential

import (
	"context"
	"errors"
	"strings"

	"ownbank-account-service/internal/domain/account"
	"ownbank-account-service/internal/domain/auth"

	"github.com/go-playground/validator/v10"
)

// Identifier names an account by number, by email, or both.
type Identifier struct {
	AccountNumber string
	Email         string
}

type Resolver struct {
	accounts account.Repository
	hasher   auth.PasswordHasher
	validate *validator.Validate
}

func NewResolver(accounts account.Repository, hasher auth.PasswordHasher) *Resolver {
	return &Resolver{accounts: accounts, hasher: hasher, validate: validator.New()}
}

// Resolve looks an account up by number first, falling back to email, then
// checks the password. When both identifiers are given they must name the
// same account.
func (r *Resolver) Resolve(ctx context.Context, id Identifier, password string) (*account.Account, error) {
	number := strings.TrimSpace(id.AccountNumber)
	email := strings.TrimSpace(id.Email)

	if number == "" && email == "" {
		return nil, account.ErrMissingIdentifier
	}
	if password == "" {
		return nil, account.ErrMissingPassword
	}

	var found *account.Account
	if number != "" {
		a, err := r.accounts.GetByAccountNumber(ctx, number)
		switch {
		case err == nil:
			found = a
		case !errors.Is(err, account.ErrNotFound):
			return nil, err
		}
	}

	if found == nil {
		if email == "" {
			return nil, account.ErrNotFound
		}
		if err := r.validate.Var(email, "email"); err != nil {
			return nil, account.ErrInvalidEmail
		}
		a, err := r.accounts.GetByEmail(ctx, *account.NormalizeEmail(email))
		if err != nil {
			return nil, err
		}
		found = a
	}

	if !r.hasher.Verify(password, found.PasswordDigest) {
		return nil, account.ErrInvalidCredentials
	}

	if number != "" && email != "" {
		byNumber, err := r.accounts.GetByAccountNumber(ctx, number)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return nil, account.ErrIdentifierMismatch
			}
			return nil, err
		}
		if !strings.EqualFold(byNumber.EmailValue(), email) {
			return nil, account.ErrIdentifierMismatch
		}
	}
	return found, nil
}
