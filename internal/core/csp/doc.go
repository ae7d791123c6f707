// Package csp builds Content-Security-Policy header values from an
// immutable base policy table plus per-response parameters.
//
// A Builder owns a private copy of its base table and derives a fresh,
// request-scoped copy on every call, so one Builder can serve any number of
// concurrent responses. Nonces come from crypto/rand.
package csp
