package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/goremit/internal/domain"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	released      []string
	keys          []string
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	f.keys = append(f.keys, key)
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Release(_ context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

func newIdempotency(store *fakeIdempotencyStore) *IdempotencyMiddleware {
	return NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())
}

func keyedPost(path, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req
}

func TestIdempotencyMiddleware_StoreErrorIs500(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(context.Context, string, []byte, time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}

	called := false
	rr := httptest.NewRecorder()
	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, keyedPost("/api/v1/transactions", "key-err"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_FailedResponseReleasesKey(t *testing.T) {
	updated := false
	store := &fakeIdempotencyStore{
		updateFn: func(context.Context, string, []byte, time.Duration) error {
			updated = true
			return nil
		},
	}

	rr := httptest.NewRecorder()
	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})).ServeHTTP(rr, keyedPost("/api/v1/transactions", "key-fail"))

	if updated {
		t.Fatalf("expected error responses not to be cached")
	}
	if len(store.released) != 1 || store.released[0] != store.keys[0] {
		t.Fatalf("expected claimed key to be released, got %v", store.released)
	}
}

func TestIdempotencyMiddleware_SkipsNonMutatingRequests(t *testing.T) {
	store := &fakeIdempotencyStore{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set(IdempotencyKeyHeader, "ignored")

	called := false
	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatalf("expected next handler to be called")
	}
	if len(store.keys) != 0 {
		t.Fatalf("GET must not touch the store")
	}
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	var stored []byte
	store := &fakeIdempotencyStore{
		updateFn: func(_ context.Context, _ string, response []byte, _ time.Duration) error {
			stored = append([]byte(nil), response...)
			return nil
		},
	}
	mw := newIdempotency(store)

	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"tx-1"}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, keyedPost("/api/v1/transactions", "key-1"))
	if first.Code != http.StatusCreated || stored == nil {
		t.Fatalf("expected first response to be stored, code=%d", first.Code)
	}

	store.checkAndSetFn = func(context.Context, string, []byte, time.Duration) (bool, []byte, error) {
		return true, stored, nil
	}
	replay := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run on replay")
	})).ServeHTTP(replay, keyedPost("/api/v1/transactions", "key-1"))

	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", replay.Code)
	}
	if replay.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected replay header")
	}
	if got := replay.Body.String(); got != `{"id":"tx-1"}` {
		t.Fatalf("unexpected replay body: %s", got)
	}
}

func TestIdempotencyMiddleware_InFlightIsConflict(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(context.Context, string, []byte, time.Duration) (bool, []byte, error) {
			return true, []byte(processingMarker), nil
		},
	}

	rr := httptest.NewRecorder()
	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run while the key is in flight")
	})).ServeHTTP(rr, keyedPost("/api/v1/transactions", "key-busy"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ScopesKeyByActorAndPath(t *testing.T) {
	store := &fakeIdempotencyStore{}
	handler := newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	a := keyedPost("/api/v1/transactions", "same")
	a = a.WithContext(domain.ContextWithActor(a.Context(), &domain.Actor{ID: "agent-1"}))
	b := keyedPost("/api/v1/cash-operations", "same")

	handler.ServeHTTP(httptest.NewRecorder(), a)
	handler.ServeHTTP(httptest.NewRecorder(), b)

	if len(store.keys) != 2 || store.keys[0] == store.keys[1] {
		t.Fatalf("expected distinct scoped keys, got %v", store.keys)
	}
	if !strings.HasPrefix(store.keys[0], "agent-1:POST:/api/v1/transactions:") {
		t.Fatalf("unexpected key %q", store.keys[0])
	}
	if !strings.HasPrefix(store.keys[1], "system:") {
		t.Fatalf("unexpected anonymous key %q", store.keys[1])
	}
}
