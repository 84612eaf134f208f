package approval

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"ownbank-account-service/internal/domain/account"
	"ownbank-account-service/internal/domain/uow"
	"ownbank-account-service/internal/usecase/linking"
)

type Usecase struct {
	accounts  account.Repository
	uow       uow.UnitOfWork
	links     *linking.Maintainer
	publisher account.EventPublisher
}

// NewUsecase: publisher may be nil.
func NewUsecase(accounts account.Repository, tx uow.UnitOfWork, links *linking.Maintainer, publisher account.EventPublisher) *Usecase {
	return &Usecase{accounts: accounts, uow: tx, links: links, publisher: publisher}
}

// Approve records acting as the approver of target and links the two.
// An already approved target is approved again and the approver replaced.
func (u *Usecase) Approve(ctx context.Context, acting *account.Account, targetNumber string) (*ApprovalDTO, error) {
	if acting == nil {
		return nil, account.ErrUnauthenticated
	}
	targetNumber = strings.TrimSpace(targetNumber)
	if targetNumber == "" {
		return nil, account.ErrMissingIdentifier
	}
	if targetNumber == acting.AccountNumber {
		return nil, account.ErrSelfApproval
	}
	if !acting.AccountRole.Privileged() {
		return nil, account.ErrForbidden
	}

	var (
		target   *account.Account
		previous string
	)
	err := u.uow.WithinAccountTx(ctx, targetNumber, func(r uow.Repos, locked *account.Account) error {
		if locked.ApprovedBy != nil {
			previous = *locked.ApprovedBy
		}
		a, err := r.Accounts.SetApprovedBy(ctx, targetNumber, acting.AccountNumber)
		if err != nil {
			return err
		}
		target = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	if previous != "" && previous != acting.AccountNumber {
		log.Printf("approve: %s re-approved by %s (was %s)", targetNumber, acting.AccountNumber, previous)
	}

	updated, err := u.links.Link(ctx, acting, target)
	if err != nil {
		var perr *linking.PartialLinkError
		if !errors.As(err, &perr) {
			return nil, err
		}
		// approval itself is committed; surface the partial link to the caller
		log.Printf("approve: %s approved but %v", targetNumber, perr)
		return nil, err
	}
	for i := range updated {
		if updated[i].AccountNumber == targetNumber {
			target = &updated[i]
		}
	}

	view, err := u.links.Populate(ctx, target, nil)
	if err != nil {
		return nil, err
	}
	u.publish(ctx, account.Event{
		Type:          account.EventApproved,
		AccountNumber: targetNumber,
		Actor:         acting.AccountNumber,
		OccurredAt:    time.Now().UTC(),
	})
	return &ApprovalDTO{Account: view, ApprovedBy: acting.AccountNumber, Previous: previous}, nil
}

// ListPending returns non-admin accounts without an approver, oldest first.
func (u *Usecase) ListPending(ctx context.Context) ([]account.View, error) {
	list, err := u.accounts.ListPendingApproval(ctx)
	if err != nil {
		return nil, err
	}
	return u.links.PopulateAll(ctx, list, nil)
}

func (u *Usecase) publish(ctx context.Context, ev account.Event) {
	if u.publisher == nil {
		return
	}
	if err := u.publisher.Publish(ctx, ev); err != nil {
		log.Printf("publish %s for %s failed: %v", ev.Type, ev.AccountNumber, err)
	}
}
