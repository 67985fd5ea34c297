package wallet

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.5", "500000000000000000"},
		{"1", "1000000000000000000"},
		{"0.3", "300000000000000000"},
		{".25", "250000000000000000"},
		{"2.", "2000000000000000000"},
		{"0", "0"},
		{"0.000000000000000001", "1"},
		{" 12.75 ", "12750000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEther(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseEtherRejects(t *testing.T) {
	for _, in := range []string{"", ".", "-1", "+1", "1.2.3", "abc", "0.5 ETH", "0.0000000000000000001"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseEther(in)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestFormatEther(t *testing.T) {
	wei, _ := new(big.Int).SetString("500000000000000000", 10)
	assert.Equal(t, "0.5", FormatEther(wei))
	assert.Equal(t, "0", FormatEther(new(big.Int)))
	assert.Equal(t, "0.000000000000000001", FormatEther(big.NewInt(1)))
	wei, _ = new(big.Int).SetString("12750000000000000000", 10)
	assert.Equal(t, "12.75", FormatEther(wei))
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("0x1234567890123456789012345678901234567890"))
	assert.True(t, ValidAddress("0xAbCdEf7890123456789012345678901234567890"))
	assert.False(t, ValidAddress("1234567890123456789012345678901234567890"))
	assert.False(t, ValidAddress("0x12345"))
	assert.False(t, ValidAddress("0xZZ34567890123456789012345678901234567890"))
}

func TestChainIDFormatting(t *testing.T) {
	assert.Equal(t, "0xaa36a7", HexChainID(Sepolia.ChainID))

	id, err := ParseChainID("0xaa36a7")
	require.NoError(t, err)
	assert.Equal(t, uint64(11155111), id)

	id, err = ParseChainID("1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestSepoliaParams(t *testing.T) {
	p := Sepolia.Params()
	assert.Equal(t, "0xaa36a7", p.ChainID)
	assert.Equal(t, "Sepolia Testnet", p.ChainName)
	assert.Equal(t, Currency{Name: "Sepolia ETH", Symbol: "ETH", Decimals: 18}, p.NativeCurrency)
	assert.Equal(t, []string{"https://sepolia.infura.io/v3/"}, p.RPCURLs)
	assert.Equal(t, []string{"https://sepolia.etherscan.io"}, p.BlockExplorerURLs)
}

func TestClassify(t *testing.T) {
	rejected := fmt.Errorf("sign: %w", &ProviderError{Code: CodeUserRejected, Message: "User denied"})
	assert.True(t, IsUserRejected(rejected))
	assert.False(t, IsUnrecognizedChain(rejected))

	unknown := &ProviderError{Code: CodeUnrecognizedChain, Message: "Unrecognized chain ID"}
	assert.True(t, IsUnrecognizedChain(unknown))
	assert.Equal(t, 0, CodeOf(errors.New("plain")))
}
