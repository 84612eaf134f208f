package accountmock

import (
	"context"
	"sort"
	"strings"
	"sync"

	domain "ownbank-account-service/internal/domain/account"
)

// Store is a map-backed account table for use case tests. Repo() returns a
// mock whose function fields read and write the map; individual fields can be
// overridden afterwards to inject failures.
type Store struct {
	mu   sync.Mutex
	rows map[string]domain.Account
	seq  uint64
}

func NewStore(seed ...domain.Account) *Store {
	s := &Store{rows: map[string]domain.Account{}}
	for _, a := range seed {
		s.put(a)
	}
	return s
}

func (s *Store) put(a domain.Account) {
	if a.ID == 0 {
		s.seq++
		a.ID = s.seq
	}
	a.LinkedAccounts = append([]string(nil), a.LinkedAccounts...)
	s.rows[a.AccountNumber] = a
}

// Get returns a copy of a stored row.
func (s *Store) Get(accountNumber string) (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[accountNumber]
	return a, ok
}

func (s *Store) Delete(accountNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, accountNumber)
}

func (s *Store) sorted() []domain.Account {
	out := make([]domain.Account, 0, len(s.rows))
	for _, a := range s.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) byNumber(_ context.Context, n string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[n]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *Store) Repo() *Repo {
	return &Repo{
		CreateFn: func(_ context.Context, a *domain.Account) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, r := range s.rows {
				if r.AccountNumber == a.AccountNumber ||
					(a.Email != nil && r.Email != nil && *r.Email == *a.Email) {
					return domain.ErrDuplicateAccount
				}
			}
			s.put(*a)
			a.ID = s.rows[a.AccountNumber].ID
			return nil
		},
		GetByAccountNumberFn:          s.byNumber,
		GetByAccountNumberForUpdateFn: s.byNumber,
		GetByEmailFn: func(_ context.Context, email string) (*domain.Account, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, a := range s.rows {
				if a.Email != nil && strings.EqualFold(*a.Email, email) {
					return &a, nil
				}
			}
			return nil, domain.ErrNotFound
		},
		ExistsByNumberOrEmailFn: func(_ context.Context, n string, email *string) (bool, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, a := range s.rows {
				if a.AccountNumber == n || (email != nil && a.Email != nil && *a.Email == *email) {
					return true, nil
				}
			}
			return false, nil
		},
		ListFn: func(context.Context) ([]domain.Account, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.sorted(), nil
		},
		ListByAccountNumbersFn: func(_ context.Context, numbers []string) ([]domain.Account, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			want := map[string]bool{}
			for _, n := range numbers {
				want[n] = true
			}
			var out []domain.Account
			for _, a := range s.sorted() {
				if want[a.AccountNumber] {
					out = append(out, a)
				}
			}
			return out, nil
		},
		ListPendingApprovalFn: func(context.Context) ([]domain.Account, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []domain.Account
			for _, a := range s.sorted() {
				if a.ApprovedBy == nil && a.AccountRole != domain.RoleAdmin {
					out = append(out, a)
				}
			}
			return out, nil
		},
		SetApprovedByFn: func(_ context.Context, n, approver string) (*domain.Account, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			a, ok := s.rows[n]
			if !ok {
				return nil, domain.ErrNotFound
			}
			a.ApprovedBy = &approver
			s.rows[n] = a
			return &a, nil
		},
		SetLinkedAccountsFn: func(_ context.Context, n string, linked []string) (*domain.Account, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			a, ok := s.rows[n]
			if !ok {
				return nil, domain.ErrNotFound
			}
			a.LinkedAccounts = append([]string(nil), linked...)
			s.rows[n] = a
			return &a, nil
		},
		UpdateFieldsFn: func(_ context.Context, n string, cols map[string]any) (*domain.Account, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			a, ok := s.rows[n]
			if !ok {
				return nil, domain.ErrNotFound
			}
			for col, v := range cols {
				switch col {
				case "account_name":
					a.AccountName, _ = v.(string)
				case "total_amount":
					a.TotalAmount, _ = v.(float64)
				case "total_penalty":
					a.TotalPenalty, _ = v.(float64)
				}
			}
			s.rows[n] = a
			return &a, nil
		},
	}
}
