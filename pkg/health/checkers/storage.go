package checkers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
)

// scratchPrefix namespaces the throwaway keys written by StorageChecker.
const scratchPrefix = "pot_health:"

// StorageChecker writes, reads back and deletes a throwaway key, so every
// driver (memory and file included) is checked through the same path the
// stores use.
type StorageChecker struct {
	driver  string
	store   kv.Store
	timeout time.Duration
}

func NewStorageChecker(driver string, store kv.Store) *StorageChecker {
	return &StorageChecker{driver: driver, store: store, timeout: time.Second}
}

func (c *StorageChecker) Name() string { return "storage:" + c.driver }

func (c *StorageChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token := uuid.NewString()
	key := scratchPrefix + token
	if err := c.store.Set(ctx, key, []byte(token)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	defer func() {
		if err := c.store.Delete(context.WithoutCancel(ctx), key); err != nil {
			log.Printf("level=warn msg=\"remove health key\" key=%s err=%v", key, err)
		}
	}()

	got, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return errors.New("read back: value missing")
	case err != nil:
		return fmt.Errorf("read back: %w", err)
	case !bytes.Equal(got, []byte(token)):
		return errors.New("read back: value mismatch")
	}
	return nil
}
