package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchReturnsStatusAndText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent/1.0" {
			t.Errorf("expected User-Agent header set, got %q", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "test-agent/1.0"})
	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != 200 {
		t.Errorf("expected status 200, got %d", res.Status)
	}
	if !strings.Contains(res.Text, "hello") {
		t.Errorf("expected decoded text to contain body, got %q", res.Text)
	}
}

func TestFetchPassesThroughNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{})
	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != http.StatusNotFound {
		t.Errorf("expected 404 to be returned as a result, not an error, got status %d", res.Status)
	}
}

func TestFetchTransportErrorIsReturnedAsError(t *testing.T) {
	f := New(Config{Timeout: 50 * time.Millisecond})
	if _, err := f.Fetch(context.Background(), "http://127.0.0.1:1"); err == nil {
		t.Error("expected a transport error for an unreachable address")
	}
}

func TestFetchDefaultTimeout(t *testing.T) {
	f := New(Config{})
	if f.client.Timeout != 10*time.Second {
		t.Errorf("expected default timeout of 10s, got %v", f.client.Timeout)
	}
}

func TestDecodeUTF8FallsBackOnInvalidBytes(t *testing.T) {
	got := toValidUTF8([]byte{0xff, 0xfe, 'o', 'k'})
	if !strings.HasSuffix(got, "ok") {
		t.Errorf("expected trailing valid bytes preserved, got %q", got)
	}
}
