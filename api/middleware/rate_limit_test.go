package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeWindowStore struct {
	scopes []string
	limit  int64
	counts map[string]int64
}

func (f *fakeWindowStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.scopes = append(f.scopes, scope)
	f.limit = limit
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	store := &fakeWindowStore{}
	policy := NewRateLimitPolicy("cart_write", time.Minute, 2)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
		req.RemoteAddr = "203.0.113.9:4411"
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusNoContent {
			t.Fatalf("request %d should pass, got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
	req.RemoteAddr = "203.0.113.9:4411"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}

	if store.limit != 2 {
		t.Fatalf("policy limit not forwarded, got %d", store.limit)
	}
	if len(store.scopes) != 3 || store.scopes[0] != "ip:cart_write:203.0.113.9" {
		t.Fatalf("unexpected scopes %v", store.scopes)
	}
}

func TestRateLimitScopesByForwardedIP(t *testing.T) {
	store := &fakeWindowStore{}
	policy := NewRateLimitPolicy("cart_write", time.Minute, 1)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, ip := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusNoContent {
			t.Fatalf("distinct clients must not share a window, got %d for %s", resp.Code, ip)
		}
	}
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := &fakeWindowStore{}
	handler := RateLimit(RateLimitPolicy{}, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("disabled policy must not gate requests, got %d", resp.Code)
	}
	if len(store.scopes) != 0 {
		t.Fatal("disabled policy must not consult the store")
	}
}
