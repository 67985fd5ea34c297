// Package wallet describes the external wallet capability the session
// manager drives: account access, message signing, a native-currency
// transfer and chain switching.
package wallet

import (
	"context"
	"math/big"
)

// EventKind distinguishes wallet notifications.
type EventKind int

const (
	AccountsChanged EventKind = iota + 1
	ChainChanged
)

// Event is pushed by a provider when the user switches account or chain in
// the wallet. Accounts is set for AccountsChanged, ChainID for ChainChanged.
type Event struct {
	Kind     EventKind
	Accounts []string
	ChainID  uint64
}

// TxRequest is a native-currency transfer from the active account.
type TxRequest struct {
	From  string
	To    string
	Value *big.Int
}

// Provider is the wallet capability. Implementations return errors that
// Classify understands (EIP-1193 provider error codes).
type Provider interface {
	// RequestAccounts prompts for access and returns the authorised accounts.
	RequestAccounts(ctx context.Context) ([]string, error)
	// Accounts returns the authorised accounts without prompting.
	Accounts(ctx context.Context) ([]string, error)
	ChainID(ctx context.Context) (uint64, error)
	SignMessage(ctx context.Context, account, message string) (string, error)
	// SendTransaction returns the transaction hash once the wallet accepted it.
	SendTransaction(ctx context.Context, tx TxRequest) (string, error)
	SwitchChain(ctx context.Context, chainID uint64) error
	AddChain(ctx context.Context, network Network) error
	// Subscribe delivers account and chain changes until unsubscribe is
	// called. The channel is closed after unsubscribe.
	Subscribe() (events <-chan Event, unsubscribe func())
}
