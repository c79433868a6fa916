package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"zenspend/internal/app"
	"zenspend/internal/store"
)

func TestLoginRateLimit(t *testing.T) {
	a, err := app.New(app.Config{
		Store:     store.NewMemoryStore(),
		Sessions:  store.NewMemorySessionStore(),
		Completer: &echoCompleter{reply: "ok"},
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if _, _, err := a.SignUp("mina@example.com", "secret1"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	redis := miniredis.RunT(t)

	s, err := New(Config{
		App:                     a,
		RedisAddr:               redis.Addr(),
		LoginRateLimitPerMinute: 1,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	body := []byte(`{"email":"mina@example.com","password":"secret1"}`)
	resp1, err := http.Post(ts.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	resp1.Body.Close()
	if resp1.StatusCode != http.StatusOK {
		t.Fatalf("first login expected 200, got %d", resp1.StatusCode)
	}

	resp2, err := http.Post(ts.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second login expected 429, got %d", resp2.StatusCode)
	}
	if resp2.Header.Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	ts := newTestServer(t)
	body := []byte(`{"email":"ghost@example.com","password":"secret1"}`)
	for i := 0; i < 20; i++ {
		resp, err := http.Post(ts.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("rate limiting must be off without redis")
		}
	}
}
