// Package rpc talks to an EIP-1193 wallet exposed over JSON-RPC, such as a
// desktop wallet's local endpoint or a development node with unlocked
// accounts.
package rpc

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	"github.com/mk-2871/Proof-of-Talent/pkg/wallet"
)

const defaultPollInterval = 2 * time.Second

// Client implements wallet.Provider over a go-ethereum RPC client. Account and
// chain changes are detected by polling while at least one subscriber exists.
type Client struct {
	rpc      *gethrpc.Client
	interval time.Duration
	limiter  *rate.Limiter

	mu     sync.Mutex
	subs   map[int]chan wallet.Event
	nextID int
	stop   context.CancelFunc
	done   chan struct{}
}

type Option func(*Client)

// WithPollInterval sets how often accounts and chain id are re-read.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.interval = d
		}
	}
}

// Dial connects to the wallet endpoint at url (http, ws or ipc).
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	c, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial wallet rpc: %w", err)
	}
	return New(c, opts...), nil
}

// New wraps an established RPC client.
func New(c *gethrpc.Client, opts ...Option) *Client {
	cl := &Client{rpc: c, interval: defaultPollInterval, subs: map[int]chan wallet.Event{}}
	for _, opt := range opts {
		opt(cl)
	}
	// Poll reads share the endpoint with user-facing calls; cap them at one
	// round per interval even if ticks pile up.
	cl.limiter = rate.NewLimiter(rate.Every(cl.interval), 1)
	return cl
}

func (c *Client) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.rpc.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, fmt.Errorf("eth_requestAccounts: %w", err)
	}
	return accounts, nil
}

func (c *Client) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts: %w", err)
	}
	return accounts, nil
}

func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var id hexutil.Uint64
	if err := c.rpc.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return 0, fmt.Errorf("eth_chainId: %w", err)
	}
	return uint64(id), nil
}

func (c *Client) SignMessage(ctx context.Context, account, message string) (string, error) {
	var sig hexutil.Bytes
	if err := c.rpc.CallContext(ctx, &sig, "personal_sign", hexutil.Encode([]byte(message)), account); err != nil {
		return "", fmt.Errorf("personal_sign: %w", err)
	}
	return sig.String(), nil
}

type sendTxArgs struct {
	From  string       `json:"from"`
	To    string       `json:"to"`
	Value *hexutil.Big `json:"value"`
}

func (c *Client) SendTransaction(ctx context.Context, tx wallet.TxRequest) (string, error) {
	var hash string
	args := sendTxArgs{From: tx.From, To: tx.To, Value: (*hexutil.Big)(tx.Value)}
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return "", fmt.Errorf("eth_sendTransaction: %w", err)
	}
	return hash, nil
}

type switchChainArgs struct {
	ChainID string `json:"chainId"`
}

func (c *Client) SwitchChain(ctx context.Context, chainID uint64) error {
	args := switchChainArgs{ChainID: wallet.HexChainID(chainID)}
	if err := c.rpc.CallContext(ctx, nil, "wallet_switchEthereumChain", args); err != nil {
		return fmt.Errorf("wallet_switchEthereumChain: %w", err)
	}
	return nil
}

func (c *Client) AddChain(ctx context.Context, network wallet.Network) error {
	if err := c.rpc.CallContext(ctx, nil, "wallet_addEthereumChain", network.Params()); err != nil {
		return fmt.Errorf("wallet_addEthereumChain: %w", err)
	}
	return nil
}

// Subscribe starts the poller on first use and stops it when the last
// subscriber leaves.
func (c *Client) Subscribe() (<-chan wallet.Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan wallet.Event, 8)
	c.subs[id] = ch
	if c.stop == nil {
		ctx, cancel := context.WithCancel(context.Background())
		c.stop = cancel
		c.done = make(chan struct{})
		go c.poll(ctx, c.done)
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

func (c *Client) unsubscribe(id int) {
	c.mu.Lock()
	ch, ok := c.subs[id]
	delete(c.subs, id)
	var (
		stop context.CancelFunc
		done chan struct{}
	)
	if len(c.subs) == 0 && c.stop != nil {
		stop, done = c.stop, c.done
		c.stop, c.done = nil, nil
	}
	c.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
	if ok {
		close(ch)
	}
}

// Close stops polling and closes the RPC connection.
func (c *Client) Close() {
	c.mu.Lock()
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	for _, id := range ids {
		c.unsubscribe(id)
	}
	c.rpc.Close()
}

func (c *Client) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	var (
		accounts []string
		chainID  uint64
		primed   bool
	)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}
		acc, aErr := c.Accounts(ctx)
		id, cErr := c.ChainID(ctx)
		if ctx.Err() != nil {
			return
		}
		if aErr != nil || cErr != nil {
			log.Printf("level=warn msg=\"wallet poll failed\" accounts_err=%v chain_err=%v", aErr, cErr)
		} else {
			if primed && !slices.Equal(acc, accounts) {
				c.emit(wallet.Event{Kind: wallet.AccountsChanged, Accounts: acc})
			}
			if primed && id != chainID {
				c.emit(wallet.Event{Kind: wallet.ChainChanged, ChainID: id})
			}
			accounts, chainID, primed = acc, id, true
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Client) emit(ev wallet.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("level=warn msg=\"dropping wallet event for slow subscriber\" kind=%d", ev.Kind)
		}
	}
}

var _ wallet.Provider = (*Client)(nil)
