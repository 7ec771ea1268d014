package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hpkotak/lexbud/internal/sections"
)

func newTestDispatcher(hostedURL, localURL string) *Dispatcher {
	return &Dispatcher{
		Selector: Selector{
			HostedPrefixes: []string{"meta-llama/"},
			HostedEndpoint: hostedURL,
			HostedKey:      "test-key",
			LocalModel:     "llama3.2",
			LocalEndpoint:  localURL,
		},
		Timeout: 5 * time.Second,
	}
}

func TestDispatchUnsupportedModelMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	d := newTestDispatcher(srv.URL, srv.URL)
	sink := &recordSink{}

	result, err := d.Dispatch(context.Background(), Request{
		Model:    "gpt-unknown-x",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, sink)

	var unsupported *UnsupportedModelError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Dispatch() error = %v, want *UnsupportedModelError", err)
	}
	if unsupported.Model != "gpt-unknown-x" {
		t.Errorf("Model = %q, want %q", unsupported.Model, "gpt-unknown-x")
	}
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("server received %d calls, want 0", n)
	}
	if len(sink.updates) != 0 || len(sink.fails) != 0 {
		t.Errorf("sink touched: updates=%q fails=%q", sink.updates, sink.fails)
	}
}

func TestDispatchRoutesByBackend(t *testing.T) {
	hosted := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, []string{"Key Legal Points: hosted answer"})
	}))
	defer hosted.Close()
	local := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"content":"Key Legal Points: local answer"}}` + "\n" + `{"done":true}` + "\n"))
	}))
	defer local.Close()

	d := newTestDispatcher(hosted.URL, local.URL)

	tests := []struct {
		name           string
		model          string
		wantBackend    Backend
		wantText       string
		wantStructured bool
	}{
		{"hosted", "meta-llama/test", Hosted, "Key Legal Points: hosted answer", true},
		{"local", "llama3.2", Local, "Key Legal Points: local answer", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := d.Dispatch(context.Background(), Request{
				Model:    tt.model,
				Messages: []Message{{Role: RoleUser, Content: "q"}},
				Layout:   sections.Summary,
			}, Discard)
			if err != nil {
				t.Fatalf("Dispatch() error: %v", err)
			}
			if result == nil {
				t.Fatal("Dispatch() result = nil")
			}
			if result.Backend != tt.wantBackend {
				t.Errorf("Backend = %v, want %v", result.Backend, tt.wantBackend)
			}
			if result.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", result.Text, tt.wantText)
			}
			if result.Structured() != tt.wantStructured {
				t.Errorf("Structured() = %v, want %v", result.Structured(), tt.wantStructured)
			}
		})
	}
}

func TestDispatchDefaultModel(t *testing.T) {
	local := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"content":"ok"}}` + "\n"))
	}))
	defer local.Close()

	d := newTestDispatcher("", local.URL)
	d.DefaultModel = "llama3.2"

	result, err := d.Dispatch(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "q"}}}, Discard)
	if err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if result == nil || result.Text != "ok" {
		t.Fatalf("Dispatch() = %+v, want text %q", result, "ok")
	}
}

func TestDispatchStreamFailureReturnsNilResult(t *testing.T) {
	local := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer local.Close()

	d := newTestDispatcher("", local.URL)
	sink := &recordSink{}

	result, err := d.Dispatch(context.Background(), Request{Model: "llama3.2"}, sink)
	if err != nil {
		t.Fatalf("Dispatch() error = %v, want nil", err)
	}
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
	if len(sink.fails) != 1 {
		t.Errorf("got %d fails, want 1", len(sink.fails))
	}
}

func TestDispatchTimeout(t *testing.T) {
	release := make(chan struct{})
	local := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer local.Close()
	defer close(release)

	d := newTestDispatcher("", local.URL)
	d.Timeout = 50 * time.Millisecond
	sink := &recordSink{}

	result, err := d.Dispatch(context.Background(), Request{Model: "llama3.2"}, sink)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
	if len(sink.fails) != 1 {
		t.Errorf("got %d fails, want 1", len(sink.fails))
	}
}

func TestDispatcherAvailableUnsupported(t *testing.T) {
	d := newTestDispatcher("", "")
	var unsupported *UnsupportedModelError
	if err := d.Available(context.Background(), "gpt-unknown-x"); !errors.As(err, &unsupported) {
		t.Errorf("Available() error = %v, want *UnsupportedModelError", err)
	}
}

func TestResolveModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		requestModel string
		defaultModel string
		want         string
	}{
		{
			name:         "uses request model",
			requestModel: "meta-llama/Llama-3.3-70B",
			defaultModel: "llama3.2",
			want:         "meta-llama/Llama-3.3-70B",
		},
		{
			name:         "trims request model",
			requestModel: "  llama3.2  ",
			defaultModel: "meta-llama/Llama-3.3-70B",
			want:         "llama3.2",
		},
		{
			name:         "falls back when request model empty",
			requestModel: "",
			defaultModel: "llama3.2",
			want:         "llama3.2",
		},
		{
			name:         "falls back when request model whitespace",
			requestModel: "   ",
			defaultModel: "meta-llama/Meta-Llama-3.2-11B-Vision-Instruct-Turbo",
			want:         "meta-llama/Meta-Llama-3.2-11B-Vision-Instruct-Turbo",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := resolveModel(tc.requestModel, tc.defaultModel)
			if got != tc.want {
				t.Fatalf("resolveModel(%q, %q) = %q, want %q", tc.requestModel, tc.defaultModel, got, tc.want)
			}
		})
	}
}
