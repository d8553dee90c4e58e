package integrations

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/httputil"
	"github.com/matzehuels/uiadoption/pkg/observability"
)

func testClient(server *httptest.Server, headers map[string]string) *Client {
	return NewClient(headers).WithHTTPClient(server.Client()).WithRetry(3, time.Millisecond)
}

func TestNewClient(t *testing.T) {
	client := NewClient(map[string]string{"Authorization": "Bearer token"})
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
	if client.attempts != 3 {
		t.Errorf("attempts = %d, want 3", client.attempts)
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotHeader = r.Header.Get("X-Default")
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := testClient(server, map[string]string{"X-Default": "default"})

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
	if gotHeader != "default" {
		t.Errorf("X-Default = %q, want default", gotHeader)
	}
}

func TestClientGet_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers map[string]string
		want    errors.Code
	}{
		{"not found", http.StatusNotFound, nil, errors.ErrCodeNotFound},
		{"unauthorized", http.StatusUnauthorized, nil, errors.ErrCodeUnauthorized},
		{"forbidden", http.StatusForbidden, nil, errors.ErrCodeForbidden},
		{"secondary rate limit", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0"}, errors.ErrCodeRateLimited},
		{"too many requests", http.StatusTooManyRequests, map[string]string{"Retry-After": "60"}, errors.ErrCodeRateLimited},
		{"teapot", http.StatusTeapot, nil, errors.ErrCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			var resp map[string]string
			err := testClient(server, nil).Get(context.Background(), server.URL, &resp)
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err %v)", got, tt.want, err)
			}
			if calls.Load() != 1 {
				t.Errorf("calls = %d, want 1 (client errors are not retried)", calls.Load())
			}
		})
	}
}

func TestClientGet_RateLimitedCarriesRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "42")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	var resp map[string]string
	err := testClient(server, nil).Get(context.Background(), server.URL, &resp)

	var rl *errors.RateLimitedError
	if !stderrors.As(err, &rl) {
		t.Fatalf("error = %v, want RateLimitedError in chain", err)
	}
	if rl.RetryAfter != 42 {
		t.Errorf("RetryAfter = %d, want 42", rl.RetryAfter)
	}
}

func TestClientGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	var resp map[string]string
	if err := testClient(server, nil).Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientGet_ServerErrorExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var resp map[string]string
	err := testClient(server, nil).Get(context.Background(), server.URL, &resp)
	if err == nil {
		t.Fatal("Get() should return error for 500")
	}
	if !httputil.IsRetryable(err) {
		t.Errorf("Get() error should be retryable, got %T", err)
	}
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Get() code = %q, want %q", errors.GetCode(err), errors.ErrCodeNetwork)
	}
}

func TestClientGet_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	var resp map[string]string
	err := testClient(server, nil).Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Get() error = %v, want network code", err)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	requests  atomic.Int32
	responses atomic.Int32
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string, string) {
	h.requests.Add(1)
}

func (h *recordingHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {
	h.responses.Add(1)
}

func TestClientGet_FiresHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var resp map[string]string
	if err := testClient(server, nil).Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatal(err)
	}
	if hooks.requests.Load() != 1 || hooks.responses.Load() != 1 {
		t.Errorf("hooks = %d requests, %d responses; want 1, 1", hooks.requests.Load(), hooks.responses.Load())
	}
}
