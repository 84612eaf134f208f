package linking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"ownbank-account-service/internal/domain/account"
)

// PartialLinkError reports a link run that stopped midway. Accounts in
// Updated already carry the new closure; Pending were never written.
type PartialLinkError struct {
	Updated []string
	Pending []string
	Err     error
}

func (e *PartialLinkError) Error() string {
	return fmt.Sprintf("linking stopped after %d of %d accounts (pending: %s): %v",
		len(e.Updated), len(e.Updated)+len(e.Pending), strings.Join(e.Pending, ","), e.Err)
}

func (e *PartialLinkError) Unwrap() error { return e.Err }

type Maintainer struct {
	accounts account.Repository
}

func NewMaintainer(accounts account.Repository) *Maintainer {
	return &Maintainer{accounts: accounts}
}

// Closure returns the ordered, de-duplicated union of the given accounts'
// numbers and everything they are already linked to.
func Closure(accounts ...*account.Account) []string {
	seen := map[string]bool{}
	var out []string
	add := func(n string) {
		if n == "" || seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
	}
	for _, a := range accounts {
		if a == nil {
			continue
		}
		add(a.AccountNumber)
	}
	for _, a := range accounts {
		if a == nil {
			continue
		}
		for _, n := range a.LinkedAccounts {
			add(n)
		}
	}
	return out
}

func without(set []string, self string) []string {
	out := make([]string, 0, len(set))
	for _, n := range set {
		if n != self {
			out = append(out, n)
		}
	}
	return out
}

// Link makes every member of the closure linked to every other member.
// Writes happen one record at a time with no surrounding transaction; the
// first failure stops the run and is returned as a *PartialLinkError along
// with the records written so far.
func (m *Maintainer) Link(ctx context.Context, accounts ...*account.Account) ([]account.Account, error) {
	closure := Closure(accounts...)
	if len(closure) < 2 {
		out := make([]account.Account, 0, 1)
		seen := map[string]bool{}
		for _, a := range accounts {
			if a == nil || seen[a.AccountNumber] {
				continue
			}
			seen[a.AccountNumber] = true
			out = append(out, *a)
		}
		return out, nil
	}

	updated := make([]account.Account, 0, len(closure))
	var done []string
	for i, n := range closure {
		a, err := m.accounts.SetLinkedAccounts(ctx, n, without(closure, n))
		if errors.Is(err, account.ErrNotFound) {
			log.Printf("link: account %s in closure no longer exists, skipped", n)
			continue
		}
		if err != nil {
			return updated, &PartialLinkError{
				Updated: done,
				Pending: append([]string(nil), closure[i:]...),
				Err:     err,
			}
		}
		updated = append(updated, *a)
		done = append(done, n)
	}
	return updated, nil
}

// Populate resolves a's linked account numbers into projected views.
// Numbers that no longer resolve are dropped.
func (m *Maintainer) Populate(ctx context.Context, a *account.Account, p account.Projection) (account.View, error) {
	v := account.NewView(a)
	if len(a.LinkedAccounts) == 0 {
		return v, nil
	}
	if p == nil {
		p = account.DefaultProjection
	}
	peers, err := m.accounts.ListByAccountNumbers(ctx, a.LinkedAccounts)
	if err != nil {
		return v, err
	}
	byNumber := make(map[string]*account.Account, len(peers))
	for i := range peers {
		byNumber[peers[i].AccountNumber] = &peers[i]
	}
	for _, n := range a.LinkedAccounts {
		if peer, ok := byNumber[n]; ok {
			v.LinkedAccounts = append(v.LinkedAccounts, p.Project(peer))
		}
	}
	return v, nil
}

// PopulateAll is Populate over a slice with a single lookup for all peers.
func (m *Maintainer) PopulateAll(ctx context.Context, list []account.Account, p account.Projection) ([]account.View, error) {
	if p == nil {
		p = account.DefaultProjection
	}
	var numbers []string
	seen := map[string]bool{}
	for _, a := range list {
		for _, n := range a.LinkedAccounts {
			if !seen[n] {
				seen[n] = true
				numbers = append(numbers, n)
			}
		}
	}
	byNumber := map[string]*account.Account{}
	if len(numbers) > 0 {
		peers, err := m.accounts.ListByAccountNumbers(ctx, numbers)
		if err != nil {
			return nil, err
		}
		for i := range peers {
			byNumber[peers[i].AccountNumber] = &peers[i]
		}
	}
	out := make([]account.View, 0, len(list))
	for i := range list {
		v := account.NewView(&list[i])
		for _, n := range list[i].LinkedAccounts {
			if peer, ok := byNumber[n]; ok {
				v.LinkedAccounts = append(v.LinkedAccounts, p.Project(peer))
			}
		}
		out = append(out, v)
	}
	return out, nil
}
