package server

import (
	"context"
	"encoding/json"
	"html"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/csp"
	"github.com/Lin-Jiong-HDU/guardrail/internal/observability"
	"github.com/Lin-Jiong-HDU/guardrail/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestServer(cfg csp.RequestConfig) (*Server, *observability.Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	s := New(Options{
		CSP:      cfg,
		Metrics:  metrics,
		Gatherer: registry,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return s, metrics, registry
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

var scriptNonce = regexp.MustCompile(`<script nonce="([^"]+)">`)

func TestServer_IndexCarriesNonce(t *testing.T) {
	s, metrics, _ := newTestServer(csp.RequestConfig{})

	rec := get(t, s.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	match := scriptNonce.FindStringSubmatch(rec.Body.String())
	if match == nil {
		t.Fatalf("no nonced script in body:\n%s", rec.Body.String())
	}

	// The template entity-escapes '+' inside attributes.
	nonce := html.UnescapeString(match[1])
	header := rec.Header().Get(csp.HeaderName)
	if !strings.Contains(header, "script-src 'self' 'nonce-"+nonce+"'") {
		t.Errorf("header %q does not allow the page's nonce %q", header, nonce)
	}
	if strings.Contains(header, "localhost") {
		t.Errorf("production header opens localhost: %s", header)
	}
	if !strings.Contains(rec.Body.String(), "<code>npm</code>") {
		t.Error("index does not list allowed commands")
	}

	if got := testutil.ToFloat64(metrics.PolicyHeaders.WithLabelValues("production")); got != 1 {
		t.Errorf("Expected 1 production header, got %v", got)
	}
}

func TestServer_DevelopmentHeader(t *testing.T) {
	s, _, _ := newTestServer(csp.RequestConfig{IsDevelopment: true, DevServerURL: "http://localhost:5173"})

	header := get(t, s.Handler(), "/").Header().Get(csp.HeaderName)
	for _, want := range []string{"http://localhost:5173", "ws://localhost:5173", "ws://localhost:*"} {
		if !strings.Contains(header, want) {
			t.Errorf("header missing %s: %s", want, header)
		}
	}
}

func TestServer_EveryResponseHasPolicy(t *testing.T) {
	s, _, _ := newTestServer(csp.RequestConfig{})

	for _, target := range []string{"/", "/api/policy", "/api/validate/pid?value=1", "/metrics", "/missing"} {
		rec := get(t, s.Handler(), target)
		if rec.Header().Get(csp.HeaderName) == "" {
			t.Errorf("%s served without a policy header", target)
		}
	}
}

func TestServer_Validate(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantValid  bool
		wantValue  any
		wantKind   string
	}{
		{"command ok", "/api/validate/command?value=npm+install+lodash", http.StatusOK, true, "npm install lodash", ""},
		{"command chained", "/api/validate/command?value=npm+install%3B+rm", http.StatusUnprocessableEntity, false, nil, "dangerous_character"},
		{"command missing", "/api/validate/command", http.StatusUnprocessableEntity, false, nil, "empty_input"},
		{"package ok", "/api/validate/package?value=%40types%2Fnode", http.StatusOK, true, "@types/node", ""},
		{"package bad", "/api/validate/package?value=..%2Fx", http.StatusUnprocessableEntity, false, nil, "malformed_format"},
		{"pid ok", "/api/validate/pid?value=1234", http.StatusOK, true, float64(1234), ""},
		{"pid fraction", "/api/validate/pid?value=1.5", http.StatusUnprocessableEntity, false, nil, "not_an_integer"},
		{"pid text", "/api/validate/pid?value=abc", http.StatusUnprocessableEntity, false, nil, "not_numeric"},
		{"path ok", "/api/validate/path?value=src%2Fapp", http.StatusOK, true, "src/app", ""},
		{"path traversal", "/api/validate/path?value=..%2Fetc", http.StatusUnprocessableEntity, false, nil, "malformed_format"},
		{"manager ok", "/api/validate/manager?value=Composer", http.StatusOK, true, "composer", ""},
		{"manager bad", "/api/validate/manager?value=yarn", http.StatusUnprocessableEntity, false, nil, "malformed_format"},
	}

	s, _, _ := newTestServer(csp.RequestConfig{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s.Handler(), tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["valid"] != tt.wantValid {
				t.Errorf("valid = %v, want %v", body["valid"], tt.wantValid)
			}
			if tt.wantValid && body["value"] != tt.wantValue {
				t.Errorf("value = %v, want %v", body["value"], tt.wantValue)
			}
			if !tt.wantValid {
				if body["kind"] != tt.wantKind {
					t.Errorf("kind = %v, want %v", body["kind"], tt.wantKind)
				}
				if _, ok := body["value"]; ok {
					t.Errorf("rejection carries a value: %v", body)
				}
			}
		})
	}
}

func TestServer_ValidateUnknownKind(t *testing.T) {
	s, _, _ := newTestServer(csp.RequestConfig{})

	if rec := get(t, s.Handler(), "/api/validate/shell?value=x"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServer_Policy(t *testing.T) {
	s, _, _ := newTestServer(csp.RequestConfig{IsDevelopment: true})

	rec := get(t, s.Handler(), "/api/policy")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var rep report.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !rep.Development || !strings.Contains(rep.Header, "ws://localhost:*") {
		t.Errorf("unexpected report %+v", rep)
	}
	if strings.Contains(rep.Header, "nonce-") {
		t.Errorf("policy report carries a nonce: %s", rep.Header)
	}
}

func TestServer_Metrics(t *testing.T) {
	s, _, _ := newTestServer(csp.RequestConfig{})

	get(t, s.Handler(), "/api/validate/command?value=rm")
	rec := get(t, s.Handler(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := `guardrail_validations_total{component="command",kind="not_allow_listed",outcome="invalid"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics missing %s:\n%s", want, rec.Body.String())
	}
}

func TestServer_NoGathererNoMetrics(t *testing.T) {
	s := New(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	if rec := get(t, s.Handler(), "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServer_InvalidDevServerFailsClosed(t *testing.T) {
	s, _, _ := newTestServer(csp.RequestConfig{IsDevelopment: true, DevServerURL: "http://x; script-src *"})

	rec := get(t, s.Handler(), "/")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<script") {
		t.Error("page served without a policy")
	}
}

func TestServer_ListenAndServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	s, _, _ := newTestServer(csp.RequestConfig{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, addr) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/api/policy")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get(csp.HeaderName) == "" {
		t.Error("live response missing policy header")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
