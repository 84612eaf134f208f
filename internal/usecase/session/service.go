package session

import (
	"context"
	"log"
	"strings"
	"time"

	"ownbank-account-service/internal/domain/account"
	"ownbank-account-service/internal/domain/auth"
	"ownbank-account-service/internal/usecase/credential"
	"ownbank-account-service/internal/usecase/linking"
)

type Result struct {
	Token     string
	ExpiresAt time.Time
	Account   account.View
}

type Service struct {
	accounts account.Repository
	resolver *credential.Resolver
	links    *linking.Maintainer
	tokens   auth.TokenService
	sessions auth.SessionStore
}

// NewService: sessions may be nil; Logout then only clears the client cookie.
func NewService(accounts account.Repository, resolver *credential.Resolver, links *linking.Maintainer, tokens auth.TokenService, sessions auth.SessionStore) *Service {
	return &Service{accounts: accounts, resolver: resolver, links: links, tokens: tokens, sessions: sessions}
}

// Login verifies the credentials and issues a token. Accounts other than
// admins need an approver first.
func (s *Service) Login(ctx context.Context, id credential.Identifier, password string) (*Result, error) {
	a, err := s.resolver.Resolve(ctx, id, password)
	if err != nil {
		return nil, err
	}
	if !a.CanLogin() {
		return nil, account.ErrPendingApproval
	}
	return s.issue(ctx, a)
}

// Logout revokes the session's token id until it would have expired.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || s.sessions == nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return err
	}
	log.Printf("logout: session for %s revoked", claims.AccountNumber)
	return nil
}

// Switch issues a token for one of acting's linked accounts.
func (s *Service) Switch(ctx context.Context, acting *account.Account, targetNumber string) (*Result, error) {
	if acting == nil {
		return nil, account.ErrUnauthenticated
	}
	targetNumber = strings.TrimSpace(targetNumber)
	if targetNumber == "" {
		return nil, account.ErrMissingIdentifier
	}
	if !acting.IsLinkedTo(targetNumber) {
		return nil, account.ErrNotLinked
	}
	target, err := s.accounts.GetByAccountNumber(ctx, targetNumber)
	if err != nil {
		return nil, err
	}
	if !target.CanLogin() {
		return nil, account.ErrPendingApproval
	}
	log.Printf("switch: %s -> %s", acting.AccountNumber, targetNumber)
	return s.issue(ctx, target)
}

func (s *Service) issue(ctx context.Context, a *account.Account) (*Result, error) {
	token, claims, err := s.tokens.Sign(a.AccountNumber, a.EmailValue())
	if err != nil {
		return nil, err
	}
	view, err := s.links.Populate(ctx, a, nil)
	if err != nil {
		return nil, err
	}
	return &Result{Token: token, ExpiresAt: claims.ExpiresAt, Account: view}, nil
}
