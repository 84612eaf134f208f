package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ownbank-account-service/internal/domain/account"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const linkPath = "/api/v1/account/link-accounts"

// bindActing simulates the auth middleware for a fixed account.
func bindActing(number string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if number != "" {
				c.Set(ctxAccount, &account.Account{AccountNumber: number})
			}
			return next(c)
		}
	}
}

// helper: new Echo with the middleware and a simple route
func setupEcho(rdb *redis.Client, ttl time.Duration, acting string, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.POST(linkPath, handler, bindActing(acting), IdempotencyMiddleware(rdb, ttl))
	e.GET(linkPath, handler, bindActing(acting), IdempotencyMiddleware(rdb, ttl))
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

// counting handler to observe whether the request reached it
func countingHandler(n *int32) echo.HandlerFunc {
	return func(c echo.Context) error {
		atomic.AddInt32(n, 1)
		return c.JSON(http.StatusCreated, map[string]any{"status": "success", "call": atomic.LoadInt32(n)})
	}
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderRequestID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func Test_BypassOnGET_And_WithoutRequestID(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	var n int32
	e := setupEcho(rdb, 30*time.Second, "1001", countingHandler(&n))

	if rec := doReq(t, e, http.MethodGet, linkPath, nil, nil); rec.Code != http.StatusCreated {
		t.Fatalf("GET => want handler status, got %d", rec.Code)
	}
	// no Ax-Request-Id: the header is optional, every call reaches the handler
	for i := 0; i < 2; i++ {
		if rec := doReq(t, e, http.MethodPost, linkPath, mkJSONBody(t, map[string]int{"x": 1}), nil); rec.Code != http.StatusCreated {
			t.Fatalf("POST without id => want 201, got %d", rec.Code)
		}
	}
	if n != 3 {
		t.Fatalf("handler calls = %d, want 3", n)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("nothing should be stored without a request id: %v", mr.Keys())
	}
}

func Test_NilRedis_PassThrough(t *testing.T) {
	var n int32
	e := setupEcho(nil, time.Minute, "1001", countingHandler(&n))
	rec := doReq(t, e, http.MethodPost, linkPath, mkJSONBody(t, map[string]int{"x": 1}), validHeaders())
	if rec.Code != http.StatusCreated || n != 1 {
		t.Fatalf("nil redis => want pass-through, got %d (calls %d)", rec.Code, n)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	var n int32
	e := setupEcho(rdb, 30*time.Second, "1001", countingHandler(&n))

	cases := map[string]map[string]string{
		"invalid id":       {HeaderRequestID: "NOT-VALID", HeaderRequestAt: validHeaders()[HeaderRequestAt]},
		"missing at":       {HeaderRequestID: validHeaders()[HeaderRequestID]},
		"invalid at":       {HeaderRequestID: validHeaders()[HeaderRequestID], HeaderRequestAt: "not-a-time"},
		"skewed into past": {HeaderRequestID: validHeaders()[HeaderRequestID], HeaderRequestAt: time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)},
	}
	for name, h := range cases {
		rec := doReq(t, e, http.MethodPost, linkPath, mkJSONBody(t, map[string]int{"x": 1}), h)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s => want 400, got %d", name, rec.Code)
		}
	}
	if n != 0 {
		t.Fatalf("handler must not run on header failures, ran %d times", n)
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	var n int32
	e := setupEcho(rdb, 2*time.Minute, "1001", countingHandler(&n))

	h := validHeaders()
	rec1 := doReq(t, e, http.MethodPost, linkPath, mkJSONBody(t, map[string]any{"accountsToLink": []int{1}}), h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	rec2 := doReq(t, e, http.MethodPost, linkPath, mkJSONBody(t, map[string]any{"accountsToLink": []int{1}}), h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if rec2.Header().Get("Ax-Idempotent-Replay") != "true" {
		t.Fatal("replayed response should be marked")
	}
	if n != 1 {
		t.Fatalf("handler calls = %d, want 1", n)
	}
}

// The same request id from two different accounts must not collide.
func Test_KeyScopedBySubject(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	var n int32
	h := validHeaders()
	for _, who := range []string{"1001", "1002"} {
		e := setupEcho(rdb, time.Minute, who, countingHandler(&n))
		if rec := doReq(t, e, http.MethodPost, linkPath, mkJSONBody(t, map[string]int{"x": 1}), h); rec.Code != http.StatusCreated {
			t.Fatalf("%s => %d", who, rec.Code)
		}
	}
	if n != 2 {
		t.Fatalf("handler calls = %d, want 2", n)
	}
}

func Test_ServerErrorNotCached(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	var n int32
	e := setupEcho(rdb, time.Minute, "1001", func(c echo.Context) error {
		atomic.AddInt32(&n, 1)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "boom"})
	})
	h := validHeaders()
	for i := 0; i < 2; i++ {
		if rec := doReq(t, e, http.MethodPost, linkPath, mkJSONBody(t, map[string]int{"x": 1}), h); rec.Code != http.StatusInternalServerError {
			t.Fatalf("want 500, got %d", rec.Code)
		}
	}
	if n != 2 {
		t.Fatalf("5xx should allow retry, handler calls = %d", n)
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	var n int32
	e := setupEcho(rdb, 2*time.Minute, "1001", countingHandler(&n))

	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	body := []byte(`{"x":1}`)

	key := buildKey(http.MethodPost, linkPath, accountSubject("1001"), reqID)
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, linkPath, bytes.NewReader(body), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	var n int32
	e := setupEcho(rdb, 2*time.Minute, "1001", countingHandler(&n))

	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	key := buildKey(http.MethodPost, linkPath, accountSubject("1001"), reqID)
	final := idempEntry{
		Code:        http.StatusCreated,
		Body:        []byte(`{"status":"success"}`),
		BodySHA256:  bodyHash([]byte(`{"x":1}`)),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, 5*time.Minute); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, linkPath, bytes.NewReader([]byte(`{"x":2}`)), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	var n int32
	e := setupEcho(rdb, time.Minute, "1001", countingHandler(&n))

	rec := doReq(t, e, http.MethodPost, linkPath, bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}
