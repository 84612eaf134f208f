package security

import (
	"errors"
	"fmt"
	"time"

	"ownbank-account-service/internal/domain/auth"
	"ownbank-account-service/pkg/id"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "ownbank-account-service"

type tokenClaims struct {
	AccountNumber string `json:"accountNumber"`
	Email         string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

var _ auth.TokenService = (*JWTService)(nil)

// JWTService issues HS256 tokens. Secret and ttl come from config at startup.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTService(secret string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %s", ttl)
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *JWTService) Sign(accountNumber, email string) (string, *auth.Claims, error) {
	if accountNumber == "" {
		return "", nil, errors.New("required inputs are missing to generate token")
	}
	now := s.now().UTC().Truncate(time.Second)
	c := &auth.Claims{
		TokenID:       id.NewID32(),
		AccountNumber: accountNumber,
		Email:         email,
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.ttl),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		AccountNumber: accountNumber,
		Email:         email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.TokenID,
			Subject:   accountNumber,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("unable to sign the token: %w", err)
	}
	return signed, c, nil
}

func (s *JWTService) Verify(token string) (*auth.Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if tc.AccountNumber == "" {
		return nil, errors.New("token has no account number")
	}
	out := &auth.Claims{
		TokenID:       tc.ID,
		AccountNumber: tc.AccountNumber,
		Email:         tc.Email,
	}
	if tc.IssuedAt != nil {
		out.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		out.ExpiresAt = tc.ExpiresAt.Time
	}
	return out, nil
}
