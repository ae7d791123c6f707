package csp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
)

// nonceBytes encodes to 24 base64 characters.
const nonceBytes = 16

// GenerateNonce returns a fresh base64 nonce from crypto/rand.
func GenerateNonce() string {
	b := make([]byte, nonceBytes)
	// crypto/rand.Read never returns an error since Go 1.24.
	_, _ = rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}

type nonceKey struct{}

// WithNonce stores the response nonce in ctx.
func WithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceKey{}, nonce)
}

// NonceFromContext returns the nonce stored by WithNonce.
func NonceFromContext(ctx context.Context) (string, bool) {
	nonce, ok := ctx.Value(nonceKey{}).(string)
	return nonce, ok && nonce != ""
}
