package authmock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ownbank-account-service/internal/domain/auth"
)

var (
	_ auth.PasswordHasher = (*Hasher)(nil)
	_ auth.TokenService   = (*Tokens)(nil)
	_ auth.SessionStore   = (*Sessions)(nil)
)

// Hasher stores "hashed:" + plain. Good enough to exercise the flows without bcrypt cost.
type Hasher struct {
	HashErr error
}

const prefix = "hashed:"

func (h *Hasher) Hash(plain string) (string, error) {
	if h.HashErr != nil {
		return "", h.HashErr
	}
	return prefix + plain, nil
}

func (h *Hasher) Verify(plain, digest string) bool {
	return digest == prefix+plain
}

// Digest returns what Hash would produce for plain.
func Digest(plain string) string { return prefix + plain }

var ErrBadToken = errors.New("authmock: bad token")

// Tokens issues "tok:<number>:<n>" and verifies only tokens it issued.
type Tokens struct {
	mu     sync.Mutex
	issued map[string]*auth.Claims
	n      int
	Now    func() time.Time
	Life   time.Duration
}

func NewTokens() *Tokens {
	return &Tokens{issued: map[string]*auth.Claims{}, Now: time.Now, Life: time.Hour}
}

func (m *Tokens) Sign(accountNumber, email string) (string, *auth.Claims, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	now := m.Now()
	id := fmt.Sprintf("%032x", m.n)
	c := &auth.Claims{
		TokenID:       id,
		AccountNumber: accountNumber,
		Email:         email,
		IssuedAt:      now,
		ExpiresAt:     now.Add(m.Life),
	}
	tok := fmt.Sprintf("tok:%s:%d", accountNumber, m.n)
	m.issued[tok] = c
	return tok, c, nil
}

func (m *Tokens) Verify(token string) (*auth.Claims, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.issued[token]
	if !ok || !m.Now().Before(c.ExpiresAt) {
		return nil, ErrBadToken
	}
	cp := *c
	return &cp, nil
}

// Sessions is an in-memory revocation list.
type Sessions struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	Err     error
}

func NewSessions() *Sessions { return &Sessions{revoked: map[string]time.Time{}} }

func (s *Sessions) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = until
	return nil
}

func (s *Sessions) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[tokenID]
	return ok, nil
}
