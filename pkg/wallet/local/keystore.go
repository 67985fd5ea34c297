package local

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/zalando/go-keyring"
)

// KeyringService groups the development wallet's key in the OS keychain.
const KeyringService = "proof-of-talent"

var ErrNoKey = errors.New("no wallet key in keyring")

// LoadKey reads the hex private key stored for account.
func LoadKey(account string) (*ecdsa.PrivateKey, error) {
	if strings.TrimSpace(account) == "" {
		return nil, errors.New("keyring account name is empty")
	}
	raw, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNoKey
	}
	if err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(raw), "0x"))
	if err != nil {
		return nil, fmt.Errorf("decode wallet key: %w", err)
	}
	return key, nil
}

// StoreKey writes key to the keyring under account.
func StoreKey(account string, key *ecdsa.PrivateKey) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Set(KeyringService, account, hex.EncodeToString(crypto.FromECDSA(key)))
}

// LoadOrCreateKey returns the stored key, generating and storing a fresh one
// on first use.
func LoadOrCreateKey(account string) (*ecdsa.PrivateKey, error) {
	key, err := LoadKey(account)
	if !errors.Is(err, ErrNoKey) {
		return key, err
	}
	key, err = crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := StoreKey(account, key); err != nil {
		return nil, fmt.Errorf("store wallet key: %w", err)
	}
	return key, nil
}
