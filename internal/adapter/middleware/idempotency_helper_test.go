package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ownbank-account-service/internal/domain/account"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func Test_idempotencySubject(t *testing.T) {
	tests := []struct {
		name   string
		acting string
		realIP string
		want   string
	}{
		{name: "acting account wins over ip", acting: "1001", realIP: "10.0.0.7", want: "acct:1001"},
		{name: "anonymous request uses ip", realIP: "10.0.0.7", want: "ip:10.0.0.7"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/account/request", nil)
			req.Header.Set(echo.HeaderXRealIP, tc.realIP)
			c := e.NewContext(req, httptest.NewRecorder())
			if tc.acting != "" {
				c.Set(ctxAccount, &account.Account{AccountNumber: tc.acting})
			}
			if got := idempotencySubject(c); got != tc.want {
				t.Fatalf("subject = %q, want %q", got, tc.want)
			}
		})
	}
}

func Test_buildKey_AccountRoutes(t *testing.T) {
	reqID := strings.Repeat("a", 32)
	tests := []struct {
		method, route, subject, want string
	}{
		{http.MethodPost, "/api/v1/account/request", "ip:10.0.0.7", "idemp:post:/api/v1/account/request:ip:10.0.0.7:" + reqID},
		{http.MethodPost, "/api/v1/account/approve", accountSubject("ADM"), "idemp:post:/api/v1/account/approve:acct:ADM:" + reqID},
		{http.MethodPatch, "/api/v1/account", accountSubject("1001"), "idemp:patch:/api/v1/account:acct:1001:" + reqID},
		{http.MethodPost, linkPath, accountSubject("1001"), "idemp:post:/api/v1/account/link-accounts:acct:1001:" + reqID},
	}
	for _, tc := range tests {
		if got := buildKey(tc.method, tc.route, tc.subject, reqID); got != tc.want {
			t.Fatalf("buildKey(%s %s) = %q, want %q", tc.method, tc.route, got, tc.want)
		}
	}
}

func Test_buildKey_ScopesDoNotCollide(t *testing.T) {
	reqID := strings.Repeat("b", 32)
	keys := map[string]string{
		"same id, other account": buildKey(http.MethodPost, linkPath, accountSubject("1002"), reqID),
		"same id, other route":   buildKey(http.MethodPost, "/api/v1/account/approve", accountSubject("1001"), reqID),
		"same id, other method":  buildKey(http.MethodPatch, linkPath, accountSubject("1001"), reqID),
		"account number as ip":   buildKey(http.MethodPost, linkPath, "ip:1001", reqID),
	}
	base := buildKey(http.MethodPost, linkPath, accountSubject("1001"), reqID)
	for name, k := range keys {
		if k == base {
			t.Fatalf("%s: key collides with base %q", name, base)
		}
	}
}

func Test_validReqID(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88", true},  // uuid v4
		{"0190d4c2-7a3e-7c1d-9f00-2b6a1e4c8d10", true},  // uuid v7
		{"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88", true},      // 32 hex, same shape as token ids
		{"", false},
		{"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", false},      // uppercase hex
		{"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8", false},       // 31 chars
		{"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88", false}, // version 9
		{"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88", false}, // uppercase uuid
		{"urn:uuid:3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88", false},
	}
	for _, tc := range tests {
		if got := validReqID(tc.raw); got != tc.want {
			t.Fatalf("validReqID(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func Test_parseAxRequestAt(t *testing.T) {
	sec := int64(1757041200) // 2025-09-05T03:00:00Z
	want := time.Unix(sec, 0).UTC()
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "epoch seconds", raw: "1757041200"},
		{name: "epoch millis", raw: "1757041200000"},
		{name: "rfc3339 zulu", raw: "2025-09-05T03:00:00Z"},
		{name: "rfc3339 offset", raw: "2025-09-05T10:00:00+07:00"},
		{name: "missing", raw: "", wantErr: true},
		{name: "no timezone", raw: "2025-09-05T10:00:00", wantErr: true},
		{name: "junk", raw: "1757041200abc", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseAxRequestAt(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("want error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if !got.Equal(want) || got.Location() != time.UTC {
				t.Fatalf("got %v, want %v UTC", got, want)
			}
		})
	}
}

func Test_entryLifecycle(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	ctx := context.Background()

	key := buildKey(http.MethodPost, linkPath, accountSubject("1001"), strings.Repeat("a", 32))
	body := []byte(`{"accountsToLink":[{"accountNumber":"1002","password":"secret123"}]}`)
	claim := idempEntry{InProgress: true, BodySHA256: bodyHash(body), RequestID: strings.Repeat("a", 32), CreatedAt: nowUTC()}

	ok, err := provisionalSet(ctx, rdb, key, claim)
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > provisionalLockTTL {
		t.Fatalf("claim TTL = %v", ttl)
	}
	if ok, err := provisionalSet(ctx, rdb, key, claim); err != nil || ok {
		t.Fatalf("second claim must lose: ok=%v err=%v", ok, err)
	}

	final := claim
	final.InProgress = false
	final.Code = http.StatusOK
	final.Body = []byte(`{"status":"success"}`)
	if err := saveFinal(ctx, rdb, key, final, 5*time.Second); err != nil {
		t.Fatalf("saveFinal: %v", err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("final TTL = %v", ttl)
	}
	got, err := loadEntry(ctx, rdb, key)
	if err != nil {
		t.Fatalf("loadEntry: %v", err)
	}
	if got.InProgress || got.Code != http.StatusOK || string(got.Body) != `{"status":"success"}` || got.BodySHA256 != bodyHash(body) {
		t.Fatalf("final entry = %+v", got)
	}
}

func Test_loadEntry_MissingAndCorrupt(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	ctx := context.Background()

	if _, err := loadEntry(ctx, rdb, "idemp:missing"); !errors.Is(err, redis.Nil) {
		t.Fatalf("missing key: want redis.Nil, got %v", err)
	}
	if err := mr.Set("idemp:corrupt", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := loadEntry(ctx, rdb, "idemp:corrupt"); err == nil {
		t.Fatal("corrupt entry: want decode error")
	}
}
