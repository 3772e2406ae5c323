package runner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"github.com/dmaas/techwiki/internal/log"
)

func TestRunForwardsToSandbox(t *testing.T) {
	var received Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/execute" {
			t.Errorf("path = %q, want /execute", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Result{Stdout: "hello\n", ExitCode: 0})
	}))
	defer srv.Close()

	client := New(srv.URL, log.NewNop())
	result, err := client.Run(context.Background(), Request{
		Language: "go",
		Code:     `package main; func main() { println("hello") }`,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if received.Language != "go" {
		t.Errorf("forwarded language = %q", received.Language)
	}
	if result.Stdout != "hello\n" || result.ExitCode != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestRunRejectsUnsupportedLanguage(t *testing.T) {
	client := New("http://unused", log.NewNop())

	_, err := client.Run(context.Background(), Request{Language: "brainfuck", Code: "+"})
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("err = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestRunRejectsOversizedCode(t *testing.T) {
	client := New("http://unused", log.NewNop())

	_, err := client.Run(context.Background(), Request{
		Language: "python",
		Code:     strings.Repeat("x", MaxCodeBytes+1),
	})
	if !errors.Is(err, ErrCodeTooLarge) {
		t.Errorf("err = %v, want ErrCodeTooLarge", err)
	}
}

func TestRunRateLimited(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(Result{})
	}))
	defer srv.Close()

	client := New(srv.URL, log.NewNop(), WithRateLimit(rate.Limit(0.001), 1))

	if _, err := client.Run(context.Background(), Request{Language: "go", Code: "x"}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	_, err := client.Run(context.Background(), Request{Language: "go", Code: "x"})
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
	if calls != 1 {
		t.Errorf("sandbox hit %d times, want 1", calls)
	}
}

func TestRunSandboxErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(srv.URL, log.NewNop())
	_, err := client.Run(context.Background(), Request{Language: "go", Code: "x"})
	if !errors.Is(err, ErrSandboxUnavailable) {
		t.Errorf("err = %v, want ErrSandboxUnavailable", err)
	}
}

func TestRunSandboxDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // immediately unreachable

	client := New(srv.URL, log.NewNop())
	_, err := client.Run(context.Background(), Request{Language: "go", Code: "x"})
	if !errors.Is(err, ErrSandboxUnavailable) {
		t.Errorf("err = %v, want ErrSandboxUnavailable", err)
	}
}
