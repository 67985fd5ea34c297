package wallet

import (
	"errors"
	"fmt"
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
	CodeUnrecognizedChain = 4902
)

// ProviderError is an error reported by the wallet with an EIP-1193 code.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

// ErrorCode matches the go-ethereum rpc.Error interface.
func (e *ProviderError) ErrorCode() int { return e.Code }

type coded interface {
	ErrorCode() int
}

// CodeOf returns the provider error code in err's chain, or 0.
func CodeOf(err error) int {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return 0
}

// IsUserRejected reports whether the user declined the request in the wallet.
func IsUserRejected(err error) bool { return CodeOf(err) == CodeUserRejected }

// IsUnrecognizedChain reports whether the wallet does not know the chain.
func IsUnrecognizedChain(err error) bool { return CodeOf(err) == CodeUnrecognizedChain }
