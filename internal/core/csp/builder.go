package csp

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Errors returned by Builder.GenerateHeader.
var (
	ErrInvalidNonce        = errors.New("csp: invalid nonce")
	ErrInvalidDevServerURL = errors.New("csp: invalid dev server url")
)

// Development-mode connect sources.
const (
	localhostHTTP = "http://localhost:*"
	localhostWS   = "ws://localhost:*"
)

var noncePattern = regexp.MustCompile(`^[A-Za-z0-9+/_-]+={0,2}$`)

// RequestConfig carries the per-response parameters of a policy.
type RequestConfig struct {
	IsDevelopment bool   `mapstructure:"development" json:"development" yaml:"development"`
	DevServerURL  string `mapstructure:"dev_server_url" json:"dev_server_url,omitempty" yaml:"dev_server_url,omitempty"`
	Nonce         string `mapstructure:"-" json:"nonce,omitempty" yaml:"nonce,omitempty"`
}

// Builder generates header values from a base policy table it never mutates.
type Builder struct {
	base PolicyTable
}

// NewBuilder creates a builder over DefaultPolicy.
func NewBuilder() *Builder {
	return NewBuilderWithPolicy(DefaultPolicy())
}

// NewBuilderWithPolicy creates a builder over a private copy of base.
func NewBuilderWithPolicy(base PolicyTable) *Builder {
	return &Builder{base: base.Clone()}
}

// Base returns a copy of the base table.
func (b *Builder) Base() PolicyTable {
	return b.base.Clone()
}

// Policy derives the request-scoped table for cfg.
//
// script-src never keeps 'unsafe-inline' and gains 'nonce-<v>' when a nonce
// is set. style-src always carries 'self' and 'unsafe-inline'. Development
// mode opens connect-src to localhost and to the dev server origin together
// with its websocket equivalent. object-src and frame-ancestors are pinned
// to 'none' whatever the base table says.
func (b *Builder) Policy(cfg RequestConfig) (PolicyTable, error) {
	if cfg.Nonce != "" && !noncePattern.MatchString(cfg.Nonce) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNonce, cfg.Nonce)
	}

	var devOrigin, devSocket string
	if cfg.IsDevelopment && cfg.DevServerURL != "" {
		var err error
		devOrigin, devSocket, err = devServerOrigins(cfg.DevServerURL)
		if err != nil {
			return nil, err
		}
	}

	p := b.base.Clone()

	p.remove(ScriptSrc, SourceUnsafeInline)
	if cfg.Nonce != "" {
		p = p.appendSources(ScriptSrc, "'nonce-"+cfg.Nonce+"'")
	}

	p = p.appendSources(StyleSrc, SourceSelf, SourceUnsafeInline)

	if cfg.IsDevelopment {
		p = p.appendSources(ConnectSrc, localhostHTTP, localhostWS)
		if devOrigin != "" {
			p = p.appendSources(ConnectSrc, devOrigin, devSocket)
		}
	}

	p = p.set(ObjectSrc, SourceNone)
	p = p.set(FrameAncestors, SourceNone)
	return p, nil
}

// GenerateHeader returns the Content-Security-Policy value for cfg. On
// error no header is produced.
func (b *Builder) GenerateHeader(cfg RequestConfig) (string, error) {
	p, err := b.Policy(cfg)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}

// devServerOrigins checks raw is an http(s) origin and returns it together
// with its ws(s) equivalent.
func devServerOrigins(raw string) (string, string, error) {
	origin := strings.TrimSpace(raw)
	if strings.ContainsAny(origin, " \t\r\n;,'\"") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDevServerURL, raw)
	}

	u, err := url.Parse(origin)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidDevServerURL, err)
	}
	if u.Host == "" || u.User != nil || u.RawQuery != "" || u.Fragment != "" || (u.Path != "" && u.Path != "/") {
		return "", "", fmt.Errorf("%w: %q is not an origin", ErrInvalidDevServerURL, raw)
	}

	var socketScheme string
	switch u.Scheme {
	case "http":
		socketScheme = "ws"
	case "https":
		socketScheme = "wss"
	default:
		return "", "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidDevServerURL, u.Scheme)
	}

	hostPart := "://" + u.Host
	return u.Scheme + hostPart, socketScheme + hostPart, nil
}
