package account

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	domain "ownbank-account-service/internal/domain/account"
	"ownbank-account-service/internal/domain/auth"
	"ownbank-account-service/internal/domain/uow"
	"ownbank-account-service/internal/usecase/credential"
	"ownbank-account-service/internal/usecase/linking"

	"github.com/go-playground/validator/v10"
)

type Usecase struct {
	repo      domain.Repository
	uow       uow.UnitOfWork
	hasher    auth.PasswordHasher
	resolver  *credential.Resolver
	links     *linking.Maintainer
	publisher domain.EventPublisher
	validate  *validator.Validate
	now       func() time.Time
}

// NewUsecase: publisher may be nil.
func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, hasher auth.PasswordHasher, resolver *credential.Resolver, links *linking.Maintainer, publisher domain.EventPublisher) *Usecase {
	return &Usecase{
		repo:      repo,
		uow:       tx,
		hasher:    hasher,
		resolver:  resolver,
		links:     links,
		publisher: publisher,
		validate:  validator.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a pending account. Only privileged callers may pick a
// role other than user.
func (u *Usecase) Create(ctx context.Context, acting *domain.Account, in CreateInput) (*domain.View, error) {
	number := strings.TrimSpace(in.AccountNumber)
	name := strings.TrimSpace(in.AccountName)
	if number == "" {
		return nil, domain.ErrMissingIdentifier
	}
	if name == "" {
		return nil, domain.ErrMissingName
	}
	if len(in.Password) < domain.MinPasswordLength {
		return nil, domain.ErrWeakPassword
	}
	email := domain.NormalizeEmail(in.Email)
	if email != nil {
		if err := u.validate.Var(*email, "email"); err != nil {
			return nil, domain.ErrInvalidEmail
		}
	}
	role := domain.RoleUser
	if r := domain.Role(strings.TrimSpace(in.AccountRole)); r != "" {
		if !domain.ValidateRole(r) {
			return nil, domain.ErrInvalidRole
		}
		if acting != nil && acting.AccountRole.Privileged() {
			role = r
		}
	}

	digest, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	a := &domain.Account{
		AccountNumber:  number,
		AccountName:    name,
		Email:          email,
		PasswordDigest: digest,
		AccountRole:    role,
		CreatedOn:      u.now(),
		LinkedAccounts: []string{},
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		exists, err := r.Accounts.ExistsByNumberOrEmail(ctx, number, email)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateAccount
		}
		return r.Accounts.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("account %s created with role %s", a.AccountNumber, a.AccountRole)
	u.publish(ctx, domain.Event{Type: domain.EventCreated, AccountNumber: a.AccountNumber, Actor: actorOf(acting)})

	if len(in.LinkedAccounts) > 0 {
		verified := u.verify(ctx, a.AccountNumber, in.LinkedAccounts)
		if len(verified) > 0 {
			if updated, err := u.link(ctx, a, verified); err != nil {
				log.Printf("account %s created but linking failed: %v", a.AccountNumber, err)
			} else {
				a = updated
			}
		}
	}

	view, err := u.links.Populate(ctx, a, nil)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (u *Usecase) List(ctx context.Context) ([]domain.View, error) {
	list, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return u.links.PopulateAll(ctx, list, nil)
}

func (u *Usecase) Get(ctx context.Context, accountNumber string) (*domain.View, error) {
	a, err := u.repo.GetByAccountNumber(ctx, strings.TrimSpace(accountNumber))
	if err != nil {
		return nil, err
	}
	view, err := u.links.Populate(ctx, a, nil)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// UpdateSelf applies the editable subset of fields to the acting account.
// Unknown or protected keys are dropped without error.
func (u *Usecase) UpdateSelf(ctx context.Context, acting *domain.Account, fields map[string]any) (*domain.View, error) {
	if acting == nil {
		return nil, domain.ErrUnauthenticated
	}
	columns := map[string]any{}
	for key, value := range fields {
		col, ok := domain.EditableFields[key]
		if !ok {
			continue
		}
		v, err := coerce(key, value)
		if err != nil {
			return nil, err
		}
		columns[col] = v
	}

	var out *domain.Account
	err := u.uow.WithinAccountTx(ctx, acting.AccountNumber, func(r uow.Repos, locked *domain.Account) error {
		if len(columns) == 0 {
			out = locked
			return nil
		}
		a, err := r.Accounts.UpdateFields(ctx, locked.AccountNumber, columns)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	view, err := u.links.Populate(ctx, out, nil)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// LinkAccounts links acting with every account whose credentials check out.
func (u *Usecase) LinkAccounts(ctx context.Context, acting *domain.Account, creds []Credentials) (*domain.View, error) {
	if acting == nil {
		return nil, domain.ErrUnauthenticated
	}
	if len(creds) == 0 {
		return nil, domain.ErrNoAccountsToLink
	}
	verified := u.verify(ctx, acting.AccountNumber, creds)
	if len(verified) == 0 {
		return nil, domain.ErrInvalidCredentials
	}
	updated, err := u.link(ctx, acting, verified)
	if err != nil {
		return nil, err
	}
	u.publish(ctx, domain.Event{
		Type:          domain.EventLinked,
		AccountNumber: acting.AccountNumber,
		Actor:         acting.AccountNumber,
		Linked:        updated.LinkedAccounts,
	})
	view, err := u.links.Populate(ctx, updated, nil)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// verify resolves each credential entry, skipping failures and self.
func (u *Usecase) verify(ctx context.Context, self string, creds []Credentials) []*domain.Account {
	var out []*domain.Account
	for i, c := range creds {
		a, err := u.resolver.Resolve(ctx, credential.Identifier{AccountNumber: c.AccountNumber, Email: c.Email}, c.Password)
		if err != nil {
			log.Printf("link: credentials #%d for %s rejected: %v", i, self, err)
			continue
		}
		if a.AccountNumber == self {
			continue
		}
		out = append(out, a)
	}
	return out
}

// link returns owner as written by the link run.
func (u *Usecase) link(ctx context.Context, owner *domain.Account, peers []*domain.Account) (*domain.Account, error) {
	updated, err := u.links.Link(ctx, append([]*domain.Account{owner}, peers...)...)
	if err != nil {
		return nil, err
	}
	for i := range updated {
		if updated[i].AccountNumber == owner.AccountNumber {
			return &updated[i], nil
		}
	}
	return owner, nil
}

func (u *Usecase) publish(ctx context.Context, ev domain.Event) {
	if u.publisher == nil {
		return
	}
	ev.OccurredAt = u.now()
	if err := u.publisher.Publish(ctx, ev); err != nil {
		log.Printf("publish %s for %s failed: %v", ev.Type, ev.AccountNumber, err)
	}
}

func actorOf(a *domain.Account) string {
	if a == nil {
		return ""
	}
	return a.AccountNumber
}

func coerce(key string, value any) (any, error) {
	switch key {
	case "accountName":
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, domain.ErrInvalidField
		}
		return strings.TrimSpace(s), nil
	default:
		switch n := value.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
		return nil, domain.ErrInvalidField
	}
}

// Bootstrap creates an admin account unless the number or email is already
// taken. It returns false when nothing was created.
func (u *Usecase) Bootstrap(ctx context.Context, in CreateInput) (bool, error) {
	in.AccountRole = string(domain.RoleAdmin)
	_, err := u.Create(ctx, &domain.Account{AccountRole: domain.RoleAdmin}, in)
	if errors.Is(err, domain.ErrDuplicateAccount) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
