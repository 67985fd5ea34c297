// Package session owns the wallet connection: who is connected, on which
// chain, and the sign/send/switch operations that require a connection.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
	"github.com/mk-2871/Proof-of-Talent/pkg/notify"
	"github.com/mk-2871/Proof-of-Talent/pkg/wallet"
)

// DefaultTimeout bounds each wallet call. A human may need to approve the
// request in the wallet, so it is generous.
const DefaultTimeout = 2 * time.Minute

// Manager is safe for concurrent use. Its mutex is never held across a
// wallet call; every sign/send re-checks the connection epoch after the
// wallet answers so a disconnect or account switch in the meantime wins.
type Manager struct {
	provider wallet.Provider
	store    kv.Store
	notifier notify.Notifier
	target   wallet.Network
	timeout  time.Duration

	mu      sync.Mutex
	state   State
	address string
	chainID uint64
	epoch   uint64

	// flagMu orders writes of the auto-reconnect flag; it is taken after mu
	// is released, never while holding it.
	flagMu sync.Mutex

	unsubscribe func()
	done        chan struct{}
}

type Option func(*Manager)

func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithTargetNetwork replaces Sepolia as the network the session expects.
func WithTargetNetwork(n wallet.Network) Option {
	return func(m *Manager) { m.target = n }
}

// NewManager returns a disconnected session. provider may be nil when no
// wallet is available; Connect then fails with ErrCapabilityUnavailable.
func NewManager(provider wallet.Provider, store kv.Store, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		store:    store,
		notifier: notify.Discard,
		target:   wallet.Sepolia,
		timeout:  DefaultTimeout,
		state:    Disconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Target is the network the session expects to be on.
func (m *Manager) Target() wallet.Network { return m.target }

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{
		State:        m.state,
		IsConnected:  m.state == Connected,
		IsConnecting: m.state == Connecting,
	}
	if m.state == Connected {
		s.Address = m.address
		s.ChainID = m.chainID
		s.WrongNetwork = m.chainID != m.target.ChainID
	}
	return s
}

// Connect requests account access, reads the chain id and moves to
// Connected. A wallet on the wrong chain still connects, with
// Snapshot.WrongNetwork set and a warning notification.
func (m *Manager) Connect(ctx context.Context) (Snapshot, error) {
	return m.connect(ctx, false)
}

func (m *Manager) connect(ctx context.Context, silent bool) (Snapshot, error) {
	fail := func(n notify.Notification, err error) (Snapshot, error) {
		if !silent {
			m.notify(ctx, n)
		}
		return m.Snapshot(), err
	}

	if m.provider == nil {
		return fail(notify.Error("Wallet not installed", "Please install a wallet to use this application"),
			apperr.ErrCapabilityUnavailable)
	}

	m.mu.Lock()
	if m.state == Connecting {
		m.mu.Unlock()
		return m.Snapshot(), apperr.New(apperr.CodeConflict, "connection already in progress")
	}
	m.state = Connecting
	m.epoch++
	epoch := m.epoch
	m.mu.Unlock()

	abort := func(err error) (Snapshot, error) {
		m.mu.Lock()
		if m.epoch == epoch {
			m.resetLocked()
		}
		m.mu.Unlock()
		return fail(notify.Error("Connection Error", "Failed to connect to wallet"), err)
	}

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	accounts, err := m.provider.RequestAccounts(cctx)
	if err != nil {
		return abort(classify(err, apperr.CodeInternal, "request accounts"))
	}
	if len(accounts) == 0 {
		return abort(apperr.New(apperr.CodeNoSignerAvailable, "no accounts found"))
	}
	chainID, err := m.provider.ChainID(cctx)
	if err != nil {
		return abort(classify(err, apperr.CodeInternal, "read chain id"))
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return m.Snapshot(), apperr.New(apperr.CodeConflict, "connection superseded")
	}
	m.state = Connected
	m.address = strings.ToLower(accounts[0])
	m.chainID = chainID
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if !m.rememberConnection(ctx) {
		return m.Snapshot(), apperr.New(apperr.CodeConflict, "disconnected while connecting")
	}

	m.notify(ctx, notify.Success("Wallet Connected", "Connected to "+shortAddress(snap.Address)))
	if snap.WrongNetwork {
		m.notify(ctx, notify.Warning("Wrong Network", "Please switch to "+m.target.Name))
	}
	return snap, nil
}

// Disconnect clears the session and the auto-reconnect flag. It is
// idempotent.
func (m *Manager) Disconnect(ctx context.Context) Snapshot {
	m.mu.Lock()
	m.resetLocked()
	m.epoch++
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.flagMu.Lock()
	if err := m.store.Delete(ctx, kv.KeyAutoReconnect); err != nil {
		log.Printf("level=warn msg=\"clear auto-reconnect flag\" err=%v", err)
	}
	m.flagMu.Unlock()
	m.notify(ctx, notify.Info("Disconnected", "Your wallet has been disconnected"))
	return snap
}

// rememberConnection sets the auto-reconnect flag unless the session was
// torn down after connect committed. A Disconnect racing with it either
// runs first, and the flag is not written, or waits on flagMu and deletes
// the flag afterwards.
func (m *Manager) rememberConnection(ctx context.Context) bool {
	m.flagMu.Lock()
	defer m.flagMu.Unlock()

	m.mu.Lock()
	connected := m.state == Connected
	m.mu.Unlock()
	if !connected {
		return false
	}
	if err := m.store.Set(ctx, kv.KeyAutoReconnect, []byte("true")); err != nil {
		log.Printf("level=warn msg=\"persist auto-reconnect flag\" err=%v", err)
	}
	return true
}

// SignMessage asks the wallet to sign text with the connected account. The
// signature is returned as-is and never verified.
func (m *Manager) SignMessage(ctx context.Context, text string) (string, error) {
	address, epoch, err := m.signer(ctx)
	if err != nil {
		return "", err
	}

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	sig, err := m.provider.SignMessage(cctx, address, text)

	if !m.current(epoch) {
		return "", m.noSigner(ctx)
	}
	if err != nil {
		m.notify(ctx, notify.Error("Signing Error", "Failed to sign message"))
		return "", classify(err, apperr.CodeInternal, "sign message")
	}
	m.notify(ctx, notify.Success("Message Signed", "Your message has been signed successfully"))
	return sig, nil
}

// SendTransaction transfers amount ether (a decimal string) to the address to.
func (m *Manager) SendTransaction(ctx context.Context, to, amount string) (TxResult, error) {
	address, epoch, err := m.signer(ctx)
	if err != nil {
		return TxResult{}, err
	}
	if !wallet.ValidAddress(to) {
		return TxResult{}, apperr.Validation("invalid recipient address %q", to)
	}
	wei, err := wallet.ParseEther(amount)
	if err != nil {
		return TxResult{}, apperr.Validation("invalid amount %q", amount)
	}

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	hash, err := m.provider.SendTransaction(cctx, wallet.TxRequest{From: address, To: to, Value: wei})

	if !m.current(epoch) {
		return TxResult{}, m.noSigner(ctx)
	}
	if err != nil {
		m.notify(ctx, notify.Error("Transaction Error", "Failed to send transaction"))
		return TxResult{}, classify(err, apperr.CodeInternal, "send transaction")
	}
	m.notify(ctx, notify.Success("Transaction Sent", "Transaction hash: "+truncate(hash, 10)+"..."))
	return TxResult{Hash: hash, To: to, Amount: amount, Wei: wei.String()}, nil
}

// SwitchToTargetNetwork asks the wallet to move to the target chain,
// registering the chain first when the wallet does not know it. Session
// state only changes through the refreshed chain id.
func (m *Manager) SwitchToTargetNetwork(ctx context.Context) (Snapshot, error) {
	if m.provider == nil {
		m.notify(ctx, notify.Error("Wallet not installed", "Please install a wallet to use this application"))
		return m.Snapshot(), apperr.ErrCapabilityUnavailable
	}

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.provider.SwitchChain(cctx, m.target.ChainID)
	if wallet.IsUnrecognizedChain(err) {
		if addErr := m.provider.AddChain(cctx, m.target); addErr != nil {
			m.notify(ctx, notify.Error("Network Error", "Failed to add "+m.target.Name+" network"))
			return m.Snapshot(), apperr.Wrap(apperr.CodeNetworkSwitchFailed, addErr, "add network")
		}
		m.notify(ctx, notify.Success("Network Added", m.target.Name+" has been added to your wallet"))
		err = m.provider.SwitchChain(cctx, m.target.ChainID)
	}
	if err != nil {
		m.notify(ctx, notify.Error("Network Error", "Failed to switch to "+m.target.Name+" network"))
		return m.Snapshot(), apperr.Wrap(apperr.CodeNetworkSwitchFailed, err, "switch network")
	}

	m.mu.Lock()
	connected, epoch := m.state == Connected, m.epoch
	m.mu.Unlock()
	if connected {
		chainID, err := m.provider.ChainID(cctx)
		if err != nil {
			log.Printf("level=warn msg=\"refresh chain id after switch\" err=%v", err)
		} else {
			m.mu.Lock()
			if m.epoch == epoch && m.state == Connected {
				m.chainID = chainID
			}
			m.mu.Unlock()
		}
	}
	m.notify(ctx, notify.Success("Network Switched", "Successfully switched to "+m.target.Name))
	return m.Snapshot(), nil
}

// HandleAccountsChanged applies a wallet account change. An empty list means
// the user disconnected in the wallet.
func (m *Manager) HandleAccountsChanged(ctx context.Context, accounts []string) {
	if len(accounts) == 0 {
		m.mu.Lock()
		active := m.state != Disconnected
		m.mu.Unlock()
		if active {
			m.Disconnect(ctx)
		}
		return
	}

	address := strings.ToLower(accounts[0])
	m.mu.Lock()
	if m.state != Connected || m.address == address {
		m.mu.Unlock()
		return
	}
	m.address = address
	m.epoch++
	m.mu.Unlock()

	m.notify(ctx, notify.Info("Account Changed", "Connected to "+shortAddress(address)))
}

// HandleChainChanged updates the chain id in place while connected. Other
// states ignore the event.
func (m *Manager) HandleChainChanged(ctx context.Context, chainID uint64) {
	m.mu.Lock()
	connected := m.state == Connected
	if connected {
		m.chainID = chainID
	}
	m.mu.Unlock()

	if !connected {
		return
	}
	if chainID != m.target.ChainID {
		m.notify(ctx, notify.Warning("Wrong Network", "Please switch to "+m.target.Name))
		return
	}
	m.notify(ctx, notify.Info("Network Changed", "Connected to "+m.target.Name))
}

// Start subscribes to wallet events and, when the previous session left the
// auto-reconnect flag behind, reconnects without prompting for attention.
// A failed reconnect is silent and leaves the session Disconnected.
func (m *Manager) Start(ctx context.Context) {
	if m.provider == nil {
		return
	}

	m.mu.Lock()
	if m.unsubscribe == nil {
		events, unsubscribe := m.provider.Subscribe()
		m.unsubscribe = unsubscribe
		m.done = make(chan struct{})
		go m.listen(events, m.done)
	}
	m.mu.Unlock()

	flag, err := m.store.Get(ctx, kv.KeyAutoReconnect)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.Printf("level=warn msg=\"read auto-reconnect flag\" err=%v", err)
		}
		return
	}
	if string(flag) != "true" {
		return
	}
	if _, err := m.connect(ctx, true); err != nil {
		log.Printf("level=info msg=\"auto-reconnect skipped\" err=%v", err)
	}
}

// Close releases the wallet subscription taken by Start.
func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe, done := m.unsubscribe, m.done
	m.unsubscribe, m.done = nil, nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
		<-done
	}
}

func (m *Manager) listen(events <-chan wallet.Event, done chan struct{}) {
	defer close(done)
	ctx := context.Background()
	for ev := range events {
		switch ev.Kind {
		case wallet.AccountsChanged:
			m.HandleAccountsChanged(ctx, ev.Accounts)
		case wallet.ChainChanged:
			m.HandleChainChanged(ctx, ev.ChainID)
		}
	}
}

// signer returns the connected address and current epoch, or
// ErrNoSignerAvailable.
func (m *Manager) signer(ctx context.Context) (string, uint64, error) {
	m.mu.Lock()
	connected, address, epoch := m.state == Connected, m.address, m.epoch
	m.mu.Unlock()
	if !connected || m.provider == nil {
		return "", 0, m.noSigner(ctx)
	}
	return address, epoch, nil
}

func (m *Manager) current(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch == epoch && m.state == Connected
}

func (m *Manager) noSigner(ctx context.Context) error {
	m.notify(ctx, notify.Error("No signer available", "Connect your wallet first"))
	return apperr.ErrNoSignerAvailable
}

func (m *Manager) resetLocked() {
	m.state = Disconnected
	m.address = ""
	m.chainID = 0
}

func (m *Manager) notify(ctx context.Context, n notify.Notification) {
	m.notifier.Notify(ctx, n)
}

// classify maps wallet errors onto the engine taxonomy.
func classify(err error, fallback, op string) error {
	if wallet.IsUserRejected(err) {
		return apperr.Wrap(apperr.CodeUserRejected, err, op)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(fallback, err, fmt.Sprintf("%s: wallet did not answer in time", op))
	}
	return apperr.Wrap(fallback, err, op)
}

func shortAddress(a string) string {
	if len(a) < 10 {
		return a
	}
	return a[:6] + "..." + a[len(a)-4:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
