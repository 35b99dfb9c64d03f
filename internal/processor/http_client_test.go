package processor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
)

func TestHTTPClientPostsForm(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/process" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type: %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		want := map[string]string{
			"request_id":  "req-1",
			"image_path":  "/uploads/a.png",
			"color_count": "32",
			"difficulty":  "medium",
		}
		for k, v := range want {
			if got := r.PostForm.Get(k); got != v {
				t.Errorf("%s = %q, want %q", k, got, v)
			}
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	req := domain.NewGenerationRequest("req-1", "a.png", "/uploads/a.png", domain.ColorCount32, domain.DifficultyMedium, "s")
	client := NewHTTPClient(HTTPOptions{BaseURL: ts.URL + "/"})
	if err := client.TriggerProcessing(context.Background(), JobFor(req)); err != nil {
		t.Fatalf("TriggerProcessing error: %v", err)
	}
}

func TestHTTPClientNon2xx(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := NewHTTPClient(HTTPOptions{BaseURL: ts.URL})
	err := client.TriggerProcessing(context.Background(), Job{RequestID: "r", ColorCount: 16, Difficulty: "easy"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable || statusErr.Body != "busy" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestHTTPClientTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	client := NewHTTPClient(HTTPOptions{BaseURL: ts.URL, Timeout: 50 * time.Millisecond})
	if err := client.TriggerProcessing(context.Background(), Job{RequestID: "r"}); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestHTTPClientRequiresRequestID(t *testing.T) {
	client := NewHTTPClient(HTTPOptions{})
	if err := client.TriggerProcessing(context.Background(), Job{}); err == nil {
		t.Fatalf("expected error for empty request id")
	}
}
