// Package wallettest provides a scriptable in-process wallet.Provider.
package wallettest

import (
	"context"
	"fmt"
	"sync"

	"github.com/mk-2871/Proof-of-Talent/pkg/wallet"
)

// Call records one invocation made against the fake.
type Call struct {
	Method string
	Args   []any
}

// Wallet is a fake wallet. Zero-value fields mean success with empty data;
// set the Err fields to script failures. Block, when non-nil, is waited on
// by SignMessage and SendTransaction so tests can interleave events with an
// in-flight request.
type Wallet struct {
	mu sync.Mutex

	accounts []string
	chainID  uint64
	known    map[uint64]bool

	RequestErr error
	SignErr    error
	SendErr    error
	SwitchErr  error
	AddErr     error
	ChainErr   error

	Block chan struct{}

	calls []Call
	subs  map[int]chan wallet.Event
	next  int
}

// New returns a wallet holding accounts on chainID. chainID is registered.
func New(chainID uint64, accounts ...string) *Wallet {
	return &Wallet{
		accounts: accounts,
		chainID:  chainID,
		known:    map[uint64]bool{chainID: true},
		subs:     map[int]chan wallet.Event{},
	}
}

func (w *Wallet) record(method string, args ...any) {
	w.mu.Lock()
	w.calls = append(w.calls, Call{Method: method, Args: args})
	w.mu.Unlock()
}

// Calls returns the method names invoked so far, in order.
func (w *Wallet) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.calls))
	for i, c := range w.calls {
		out[i] = c.Method
	}
	return out
}

// LastCall returns the most recent invocation of method.
func (w *Wallet) LastCall(method string) (Call, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := len(w.calls) - 1; i >= 0; i-- {
		if w.calls[i].Method == method {
			return w.calls[i], true
		}
	}
	return Call{}, false
}

func (w *Wallet) RequestAccounts(ctx context.Context) ([]string, error) {
	w.record("eth_requestAccounts")
	if w.RequestErr != nil {
		return nil, w.RequestErr
	}
	return w.Accounts(ctx)
}

func (w *Wallet) Accounts(context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.accounts...), nil
}

func (w *Wallet) ChainID(context.Context) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ChainErr != nil {
		return 0, w.ChainErr
	}
	return w.chainID, nil
}

func (w *Wallet) SignMessage(ctx context.Context, account, message string) (string, error) {
	w.record("personal_sign", account, message)
	if err := w.wait(ctx); err != nil {
		return "", err
	}
	if w.SignErr != nil {
		return "", w.SignErr
	}
	return fmt.Sprintf("0xsig(%s)", message), nil
}

func (w *Wallet) SendTransaction(ctx context.Context, tx wallet.TxRequest) (string, error) {
	w.record("eth_sendTransaction", tx)
	if err := w.wait(ctx); err != nil {
		return "", err
	}
	if w.SendErr != nil {
		return "", w.SendErr
	}
	return "0xtxhash", nil
}

func (w *Wallet) SwitchChain(_ context.Context, chainID uint64) error {
	w.record("wallet_switchEthereumChain", chainID)
	if w.SwitchErr != nil {
		return w.SwitchErr
	}
	w.mu.Lock()
	if !w.known[chainID] {
		w.mu.Unlock()
		return &wallet.ProviderError{Code: wallet.CodeUnrecognizedChain, Message: "Unrecognized chain ID " + wallet.HexChainID(chainID)}
	}
	w.chainID = chainID
	w.mu.Unlock()
	w.emit(wallet.Event{Kind: wallet.ChainChanged, ChainID: chainID})
	return nil
}

func (w *Wallet) AddChain(_ context.Context, network wallet.Network) error {
	w.record("wallet_addEthereumChain", network)
	if w.AddErr != nil {
		return w.AddErr
	}
	w.mu.Lock()
	w.known[network.ChainID] = true
	w.mu.Unlock()
	return nil
}

func (w *Wallet) Subscribe() (<-chan wallet.Event, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.next
	w.next++
	ch := make(chan wallet.Event, 16)
	w.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, id)
			w.mu.Unlock()
			close(ch)
		})
	}
}

// SetAccounts replaces the account list and emits AccountsChanged.
func (w *Wallet) SetAccounts(accounts ...string) {
	w.mu.Lock()
	w.accounts = accounts
	w.mu.Unlock()
	w.emit(wallet.Event{Kind: wallet.AccountsChanged, Accounts: append([]string(nil), accounts...)})
}

// SetChain moves the wallet to chainID and emits ChainChanged.
func (w *Wallet) SetChain(chainID uint64) {
	w.mu.Lock()
	w.chainID = chainID
	w.known[chainID] = true
	w.mu.Unlock()
	w.emit(wallet.Event{Kind: wallet.ChainChanged, ChainID: chainID})
}

// Forget unregisters chainID so switching to it reports code 4902.
func (w *Wallet) Forget(chainID uint64) {
	w.mu.Lock()
	delete(w.known, chainID)
	w.mu.Unlock()
}

// Subscribers is the number of live subscriptions.
func (w *Wallet) Subscribers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

func (w *Wallet) emit(ev wallet.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (w *Wallet) wait(ctx context.Context) error {
	if w.Block == nil {
		return nil
	}
	select {
	case <-w.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Rejected is the error a wallet returns when the user declines.
func Rejected() error {
	return &wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "User rejected the request."}
}

var _ wallet.Provider = (*Wallet)(nil)
