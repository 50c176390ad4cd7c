// Package credstore provides secret storage backed by the operating
// system's native credential store.
//
// Secrets are keyed by a (service, account) pair and stored as:
//   - macOS: generic passwords in the login Keychain
//     (service → kSecAttrService, account → kSecAttrAccount)
//   - Linux: freedesktop.org Secret Service items in the default
//     collection, with {service, account} attributes
//   - Windows: generic credentials named "service/account" in the
//     Windows Credential Manager
//
// The store holds no state of its own: every operation is a fresh round
// trip to the native backend, and the backend alone decides how
// concurrent writes to the same key are serialized.
package credstore

import "errors"

// ErrNotFound is returned when no credential matches the query.
//
// Absence is an expected outcome, not a malfunction: callers should
// branch on errors.Is(err, ErrNotFound) rather than treating it as
// fatal. Any other non-nil error is a genuine backend failure and
// carries the native diagnostic in its message.
var ErrNotFound = errors.New("credential not found")

// Credential is one stored secret, materialized by a lookup.
type Credential struct {
	Account string
	Secret  string
}

// Store is the interface for credential storage operations.
//
// Exactly one system-backed implementation is compiled per platform;
// MemoryStore provides an in-process implementation for tests and for
// platforms without a native store.
type Store interface {
	// Set stores secret under (service, account), updating the entry
	// if it already exists and creating it otherwise.
	Set(service, account, secret string) error

	// Get returns the secret stored under exactly (service, account).
	Get(service, account string) (string, error)

	// Delete removes the entry stored under exactly (service, account).
	// Deleting an absent entry returns ErrNotFound.
	Delete(service, account string) error

	// FindPassword returns the secret of the first entry matching
	// service, regardless of account. When multiple accounts share the
	// service, which one is returned is backend-defined; callers must
	// not rely on any particular order.
	FindPassword(service string) (string, error)

	// FindCredentials returns every entry matching service, in the
	// backend's enumeration order. No matches returns ErrNotFound and
	// an empty list.
	FindCredentials(service string) ([]Credential, error)
}
