package storage

import "context"

// Scope selects how long a stored value survives.
type Scope string

const (
	// Ephemeral values live as long as the current process (the "tab").
	Ephemeral Scope = "ephemeral"
	// Persistent values survive restarts until they are removed.
	Persistent Scope = "persistent"
)

// Backend is a single-scope key-value store.
type Backend interface {
	// Get returns errors.ErrKeyNotFound when key is absent
	Get(ctx context.Context, key string) (string, error)

	// Set creates or replaces key
	Set(ctx context.Context, key, value string) error

	// Remove deletes key; removing an absent key is not an error
	Remove(ctx context.Context, key string) error
}

// KeyValue is the scope-aware store the session layer depends on.
type KeyValue interface {
	Get(ctx context.Context, key string, scope Scope) (string, error)
	Set(ctx context.Context, key, value string, scope Scope) error
	Remove(ctx context.Context, key string, scope Scope) error
}
