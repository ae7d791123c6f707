// Package observability holds the logging and Prometheus metrics shared by
// the command handler, the CLI and the HTTP server.
package observability
