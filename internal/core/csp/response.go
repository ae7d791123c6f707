package csp

import (
	"log/slog"
	"net/http"
	"strings"
)

// HeaderName is the response header carrying the policy.
const HeaderName = "Content-Security-Policy"

// ApplyToResponse returns a copy of headers with exactly one policy value
// generated from cfg. Every other header is kept as is; headers is never
// modified.
func (b *Builder) ApplyToResponse(headers http.Header, cfg RequestConfig) (http.Header, error) {
	value, err := b.GenerateHeader(cfg)
	if err != nil {
		return nil, err
	}

	out := headers.Clone()
	if out == nil {
		out = make(http.Header, 1)
	}
	for key := range out {
		if strings.EqualFold(key, HeaderName) {
			delete(out, key)
		}
	}
	out.Set(HeaderName, value)
	return out, nil
}

// Middleware sets the policy header on every response. Each response gets
// its own nonce, which handlers read back with NonceFromContext to tag
// their inline scripts. If the header cannot be built the request fails
// with 500 rather than being served without a policy.
func Middleware(b *Builder, base RequestConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg := base
			cfg.Nonce = GenerateNonce()

			value, err := b.GenerateHeader(cfg)
			if err != nil {
				logger.Error("csp header generation failed", "error", err, "path", r.URL.Path)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			w.Header().Set(HeaderName, value)
			next.ServeHTTP(w, r.WithContext(WithNonce(r.Context(), cfg.Nonce)))
		})
	}
}
