// Package local is a development wallet: one secp256k1 key from the OS
// keyring, personal_sign style signatures and legacy value transfers
// broadcast through an Ethereum JSON-RPC node.
package local

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/mk-2871/Proof-of-Talent/pkg/wallet"
)

const transferGas = 21000

// Backend is the subset of ethclient.Client used to broadcast transfers.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Dialer opens a Backend for an RPC URL.
type Dialer func(ctx context.Context, url string) (Backend, error)

func dialEthclient(ctx context.Context, url string) (Backend, error) {
	return ethclient.DialContext(ctx, url)
}

// Wallet implements wallet.Provider with a single local key.
type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	dial    Dialer

	mu        sync.Mutex
	chainID   uint64
	endpoints map[uint64]string
	backends  map[uint64]Backend
	subs      map[int]chan wallet.Event
	nextID    int
}

type Option func(*Wallet)

// WithDialer replaces ethclient as the broadcast backend.
func WithDialer(d Dialer) Option {
	return func(w *Wallet) { w.dial = d }
}

// WithEndpoint registers an RPC URL for chainID.
func WithEndpoint(chainID uint64, url string) Option {
	return func(w *Wallet) { w.endpoints[chainID] = url }
}

// New returns a wallet for key, initially on chainID. chainID must have an
// endpoint registered through WithEndpoint or AddChain before sending.
func New(key *ecdsa.PrivateKey, chainID uint64, opts ...Option) *Wallet {
	w := &Wallet{
		key:       key,
		address:   crypto.PubkeyToAddress(key.PublicKey),
		dial:      dialEthclient,
		chainID:   chainID,
		endpoints: map[uint64]string{},
		backends:  map[uint64]Backend{},
		subs:      map[int]chan wallet.Event{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Address is the wallet's account.
func (w *Wallet) Address() common.Address { return w.address }

func (w *Wallet) RequestAccounts(ctx context.Context) ([]string, error) {
	return w.Accounts(ctx)
}

func (w *Wallet) Accounts(context.Context) ([]string, error) {
	return []string{w.address.Hex()}, nil
}

func (w *Wallet) ChainID(context.Context) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainID, nil
}

// SignMessage produces an EIP-191 personal message signature with v in
// {27, 28}.
func (w *Wallet) SignMessage(_ context.Context, account, message string) (string, error) {
	if err := w.owns(account); err != nil {
		return "", err
	}
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), w.key)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

func (w *Wallet) SendTransaction(ctx context.Context, req wallet.TxRequest) (string, error) {
	if err := w.owns(req.From); err != nil {
		return "", err
	}
	if !common.IsHexAddress(req.To) {
		return "", wallet.ErrInvalidAddress
	}
	if req.Value == nil || req.Value.Sign() < 0 {
		return "", wallet.ErrInvalidAmount
	}

	chainID, backend, err := w.backend(ctx)
	if err != nil {
		return "", err
	}
	nonce, err := backend.PendingNonceAt(ctx, w.address)
	if err != nil {
		return "", fmt.Errorf("pending nonce: %w", err)
	}
	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}
	tx := types.NewTransaction(nonce, common.HexToAddress(req.To), req.Value, transferGas, gasPrice, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(new(big.Int).SetUint64(chainID)), w.key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}
	if err := backend.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("broadcast transaction: %w", err)
	}
	return signed.Hash().Hex(), nil
}

// SwitchChain moves to a chain with a registered endpoint. Unknown chains
// fail with code 4902 like a browser wallet.
func (w *Wallet) SwitchChain(_ context.Context, chainID uint64) error {
	w.mu.Lock()
	if _, ok := w.endpoints[chainID]; !ok {
		w.mu.Unlock()
		return &wallet.ProviderError{Code: wallet.CodeUnrecognizedChain, Message: "Unrecognized chain ID " + wallet.HexChainID(chainID)}
	}
	changed := w.chainID != chainID
	w.chainID = chainID
	w.mu.Unlock()

	if changed {
		w.emit(wallet.Event{Kind: wallet.ChainChanged, ChainID: chainID})
	}
	return nil
}

func (w *Wallet) AddChain(_ context.Context, network wallet.Network) error {
	if len(network.RPCURLs) == 0 {
		return &wallet.ProviderError{Code: -32602, Message: "rpcUrls must not be empty"}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.endpoints[network.ChainID] != network.RPCURLs[0] {
		delete(w.backends, network.ChainID)
	}
	w.endpoints[network.ChainID] = network.RPCURLs[0]
	return nil
}

func (w *Wallet) Subscribe() (<-chan wallet.Event, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	ch := make(chan wallet.Event, 8)
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

func (w *Wallet) owns(account string) error {
	if !strings.EqualFold(account, w.address.Hex()) {
		return &wallet.ProviderError{Code: wallet.CodeUnauthorized, Message: "account " + account + " is not managed by this wallet"}
	}
	return nil
}

// backend returns the broadcast client for the current chain, dialing it on
// first use.
func (w *Wallet) backend(ctx context.Context) (uint64, Backend, error) {
	w.mu.Lock()
	chainID := w.chainID
	if b, ok := w.backends[chainID]; ok {
		w.mu.Unlock()
		return chainID, b, nil
	}
	url, ok := w.endpoints[chainID]
	w.mu.Unlock()
	if !ok {
		return 0, nil, &wallet.ProviderError{Code: wallet.CodeChainDisconnected, Message: "no rpc endpoint for chain " + wallet.HexChainID(chainID)}
	}

	b, err := w.dial(ctx, url)
	if err != nil {
		return 0, nil, fmt.Errorf("dial %s: %w", url, err)
	}
	w.mu.Lock()
	w.backends[chainID] = b
	w.mu.Unlock()
	return chainID, b, nil
}

var _ wallet.Provider = (*Wallet)(nil)
