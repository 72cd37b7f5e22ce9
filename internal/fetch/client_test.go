package fetch

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"clipcast/internal/logging"
	"clipcast/internal/testsupport"
)

func newTestClient(attempts int) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: 5 * time.Second}, attempts, time.Millisecond, logging.NewNop())
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	result, err := newTestClient(3).Get(context.Background(), server.URL, Options{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(result.Body) != "<html>ok</html>" {
		t.Fatalf("unexpected body %q", result.Body)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := newTestClient(3).Get(context.Background(), server.URL, Options{}); err == nil {
		t.Fatal("expected error for 404")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("404 should not be retried, got %d attempts", got)
	}
}

func TestGetExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := newTestClient(2).Get(context.Background(), server.URL, Options{}); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestGetPerRequestAttemptOverride(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(5)
	if _, err := client.Get(context.Background(), server.URL, Options{MaxAttempts: 1}); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("override should cap attempts at 1, got %d", got)
	}
}

func TestNewClientCapsRedirectChains(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	client := NewClient(cfg, logging.NewNop())
	_, err := client.Get(context.Background(), server.URL, Options{MaxAttempts: 1})
	if err == nil {
		t.Fatal("expected redirect loop to fail")
	}
	if got := calls.Load(); got > 15 {
		t.Fatalf("redirect chain not capped, %d requests", got)
	}
}

func TestGetDecodesGzipBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("compressed payload"))
		gz.Close()
	}))
	defer server.Close()

	result, err := newTestClient(1).Get(context.Background(), server.URL, Options{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(result.Body) != "compressed payload" {
		t.Fatalf("unexpected body %q", result.Body)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	for _, status := range []int{429, 500, 501, 502, 503, 504, 507, 508, 521, 599} {
		if !IsRetryableStatus(status) {
			t.Errorf("status %d should be retryable", status)
		}
	}
	for _, status := range []int{400, 401, 403, 404, 410, 600} {
		if IsRetryableStatus(status) {
			t.Errorf("status %d should not be retryable", status)
		}
	}
}

func TestGetRetriesUncommonServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusInsufficientStorage)
			return
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	result, err := newTestClient(3).Get(context.Background(), server.URL, Options{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(result.Body) != "<html>ok</html>" {
		t.Fatalf("unexpected body %q", result.Body)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}
