package checkers

import (
	"context"
	"fmt"
	"time"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
	"github.com/mk-2871/Proof-of-Talent/pkg/wallet"
)

// WalletChecker reports whether a wallet provider is configured and answers
// a chain id query. It is advisory: the marketplace keeps working without a
// wallet, only signing and payments degrade.
type WalletChecker struct {
	provider wallet.Provider
	timeout  time.Duration
}

// NewWalletChecker accepts a nil provider, which is reported as missing
// capability.
func NewWalletChecker(provider wallet.Provider) *WalletChecker {
	return &WalletChecker{provider: provider, timeout: time.Second}
}

func (c *WalletChecker) Name() string   { return "wallet" }
func (c *WalletChecker) Advisory() bool { return true }

func (c *WalletChecker) Check(ctx context.Context) error {
	if c.provider == nil {
		return apperr.ErrCapabilityUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if _, err := c.provider.ChainID(ctx); err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	return nil
}
