package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// AttemptLimiter is satisfied by *redisstore.AttemptLimiter.
type AttemptLimiter interface {
	Allow(ctx context.Context, subject string) (bool, int, error)
	Reset(ctx context.Context, subject string) error
}

type loginIdentity struct {
	AccountNumber string `json:"accountNumber"`
	Email         string `json:"email"`
}

// loginSubject keys the limiter by the identifier being attacked, falling
// back to the client IP when the body names none.
func loginSubject(c echo.Context) string {
	req := c.Request()
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	req.Body = io.NopCloser(bytes.NewBuffer(body))

	var id loginIdentity
	_ = json.Unmarshal(body, &id)
	if n := strings.TrimSpace(id.AccountNumber); n != "" {
		return "n:" + n
	}
	if e := strings.TrimSpace(id.Email); e != "" {
		return "e:" + strings.ToLower(e)
	}
	return "ip:" + c.RealIP()
}

// LoginRateLimit answers 429 once a subject exceeds the limiter's budget.
// A 2xx login clears the subject's counter, so only failed attempts
// accumulate. Limiter errors are logged and the request let through.
func LoginRateLimit(limiter AttemptLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil {
				return next(c)
			}
			ctx := c.Request().Context()
			subject := loginSubject(c)
			ok, retryAfter, err := limiter.Allow(ctx, subject)
			if err != nil {
				log.Printf("login limiter unavailable: %v", err)
				return next(c)
			}
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return reject(c, http.StatusTooManyRequests, "rate_limited", "too many login attempts, try again later")
			}
			if err := next(c); err != nil {
				return err
			}
			if st := c.Response().Status; st >= 200 && st < 300 {
				if err := limiter.Reset(ctx, subject); err != nil {
					log.Printf("login limiter reset for %s: %v", subject, err)
				}
			}
			return nil
		}
	}
}
