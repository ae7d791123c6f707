// Package security validates values that cross the boundary between the
// untrusted front-end and the privileged back-end.
//
// The package sits between IPC handlers and the command executor and
// protects the host through:
//
//   - Command validation (allow-listed base command + metacharacter rejection)
//   - Argument escaping that is idempotent on already-escaped input
//   - Narrow grammars for package names, process ids, paths and package managers
//
// Every validator returns an Outcome value instead of panicking. The tables
// used here are built once at startup and only read afterwards, so all
// functions are safe for concurrent use.
package security
