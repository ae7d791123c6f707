// Package server serves content behind the Content-Security-Policy
// middleware together with a JSON validation API and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core"
	"github.com/Lin-Jiong-HDU/guardrail/internal/core/csp"
	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
	"github.com/Lin-Jiong-HDU/guardrail/internal/observability"
	"github.com/Lin-Jiong-HDU/guardrail/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server. Validator and Builder default to the
// package defaults; a nil Gatherer disables /metrics and a nil Engine
// disables /api/exec.
type Options struct {
	Validator *security.CommandValidator
	Engine    *core.Engine
	Builder   *csp.Builder
	CSP       csp.RequestConfig
	Metrics   *observability.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	validator *security.CommandValidator
	engine    *core.Engine
	builder   *csp.Builder
	cspConfig csp.RequestConfig
	metrics   *observability.Metrics
	logger    *slog.Logger
	handler   http.Handler
}

// New creates a Server.
func New(opts Options) *Server {
	s := &Server{
		validator: opts.Validator,
		engine:    opts.Engine,
		builder:   opts.Builder,
		cspConfig: opts.CSP,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
	if s.validator == nil && s.engine != nil {
		s.validator = s.engine.Validator()
	}
	if s.validator == nil {
		s.validator = security.NewCommandValidator(nil)
	}
	if s.builder == nil {
		s.builder = csp.NewBuilder()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.cspConfig.Nonce = ""

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/validate/{kind}", s.handleValidate)
	mux.HandleFunc("GET /api/policy", s.handlePolicy)
	if s.engine != nil {
		mux.HandleFunc("POST /api/exec", s.handleExec)
	}
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	s.handler = csp.Middleware(s.builder, s.cspConfig, s.logger)(s.countPolicy(mux))
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr, "development", s.cspConfig.IsDevelopment, "exec", s.engine != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) countPolicy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.RecordPolicyHeader(s.cspConfig.IsDevelopment)
		next.ServeHTTP(w, r)
	})
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>guardrail</title>
<style>body { font-family: sans-serif; margin: 2rem; } .ok { color: green; } .bad { color: red; }</style>
</head>
<body>
<h1>guardrail</h1>
<form id="check"><input id="line" size="60" placeholder="npm install lodash"> <button>Validate</button></form>
<pre id="verdict"></pre>
<h2>Allowed commands</h2>
<ul>{{range .Allowed}}<li><code>{{.}}</code></li>{{end}}</ul>
<script nonce="{{.Nonce}}">
document.getElementById("check").addEventListener("submit", async (ev) => {
  ev.preventDefault();
  const line = document.getElementById("line").value;
  const res = await fetch("/api/validate/command?value=" + encodeURIComponent(line));
  const out = await res.json();
  const el = document.getElementById("verdict");
  el.className = out.valid ? "ok" : "bad";
  el.textContent = out.valid ? out.value : out.kind + ": " + out.reason;
});
</script>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	nonce, _ := csp.NonceFromContext(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, struct {
		Nonce   string
		Allowed []string
	}{nonce, s.validator.AllowedCommands()})
	if err != nil {
		s.logger.Error("failed to render index", "error", err)
	}
}

// verdict is the JSON body of a validation response.
type verdict struct {
	Field  string `json:"field"`
	Valid  bool   `json:"valid"`
	Value  any    `json:"value,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	value := r.URL.Query().Get("value")

	var v verdict
	switch kind {
	case "command":
		v = fromOutcome(kind, s.validator.Validate(value))
	case "package":
		v = fromOutcome(kind, security.ValidatePackageName(value))
	case "pid":
		v = fromOutcome(kind, security.ValidatePidString(value))
	case "path":
		v = fromOutcome(kind, security.ValidatePath(value))
	case "manager":
		v = fromOutcome(kind, security.ValidatePackageManager(value))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown validator %q", kind)})
		return
	}

	s.metrics.RecordValidation(kind, v.Valid, v.Kind)
	if !v.Valid {
		s.logger.Info("validation rejected", "field", kind, "kind", v.Kind, "reason", v.Reason)
		writeJSON(w, http.StatusUnprocessableEntity, v)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func fromOutcome[T any](field string, o security.Outcome[T]) verdict {
	if !o.OK() {
		return verdict{Field: field, Kind: string(o.Kind()), Reason: o.Reason()}
	}
	return verdict{Field: field, Valid: true, Value: o.Value()}
}

func (s *Server) handlePolicy(w http.ResponseWriter, r *http.Request) {
	rep, err := report.Build(s.validator, s.builder, s.cspConfig)
	if err != nil {
		s.logger.Error("failed to build policy report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "policy unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
