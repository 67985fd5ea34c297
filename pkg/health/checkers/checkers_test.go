package checkers

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
	"github.com/mk-2871/Proof-of-Talent/pkg/wallet"
	"github.com/mk-2871/Proof-of-Talent/pkg/wallet/wallettest"
)

// spyStore records the keys it was asked to write.
type spyStore struct {
	kv.Store
	keys   []string
	setErr error
	lossy  bool
}

func (s *spyStore) Set(ctx context.Context, key string, value []byte) error {
	s.keys = append(s.keys, key)
	if s.setErr != nil {
		return s.setErr
	}
	if s.lossy {
		return nil
	}
	return s.Store.Set(ctx, key, value)
}

func TestStorageCheckerRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := fs.NewDir(t, "health")
	defer dir.Remove()
	file, err := kv.NewFile(filepath.Join(dir.Path(), "engine.json"))
	require.NoError(t, err)

	for name, store := range map[string]kv.Store{"memory": kv.NewMemory(), "file": file} {
		t.Run(name, func(t *testing.T) {
			spy := &spyStore{Store: store}
			c := NewStorageChecker(name, spy)

			assert.Equal(t, "storage:"+name, c.Name())
			require.NoError(t, c.Check(ctx))
			require.Len(t, spy.keys, 1)
			assert.True(t, strings.HasPrefix(spy.keys[0], scratchPrefix))

			_, err := store.Get(ctx, spy.keys[0])
			assert.ErrorIs(t, err, kv.ErrNotFound, "scratch key is removed")
		})
	}
}

func TestStorageCheckerFailures(t *testing.T) {
	ctx := context.Background()

	c := NewStorageChecker("redis", &spyStore{Store: kv.NewMemory(), setErr: errors.New("connection refused")})
	assert.EqualError(t, c.Check(ctx), "write: connection refused")

	c = NewStorageChecker("file", &spyStore{Store: kv.NewMemory(), lossy: true})
	assert.EqualError(t, c.Check(ctx), "read back: value missing")
}

func TestWalletChecker(t *testing.T) {
	ctx := context.Background()

	c := NewWalletChecker(nil)
	assert.True(t, c.Advisory())
	assert.ErrorIs(t, c.Check(ctx), apperr.ErrCapabilityUnavailable)

	w := wallettest.New(wallet.Sepolia.ChainID)
	assert.NoError(t, NewWalletChecker(w).Check(ctx))

	w.ChainErr = errors.New("rpc down")
	assert.EqualError(t, NewWalletChecker(w).Check(ctx), "chain id: rpc down")
}
