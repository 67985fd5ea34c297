// Package kv is the durable key-value surface the engine mirrors its state
// into: the logged-in identity, the auto-reconnect flag and each entity
// collection live under their own key.
package kv

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	KeyIdentity      = "pot_user"
	KeyAccounts      = "pot_accounts"
	KeyAutoReconnect = "isConnected"
	KeyJobs          = "job-store"
	KeyApplications  = "application-store"
	KeySkills        = "skill-store"
	KeyProposals     = "proposal-store"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("kv: key not found")

// Store abstracts the durable storage. Implementations may be in-memory,
// a local file, SQL or Redis. Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
