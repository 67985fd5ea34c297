package wallet

import (
	"strconv"
	"strings"
)

// Currency is the native currency of a network.
type Currency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals int    `json:"decimals" yaml:"decimals"`
}

// Network is the descriptor handed to the wallet when a chain has to be
// registered before switching to it.
type Network struct {
	ChainID     uint64   `json:"chainId" yaml:"chain_id"`
	Name        string   `json:"chainName" yaml:"name"`
	Currency    Currency `json:"nativeCurrency" yaml:"currency"`
	RPCURLs     []string `json:"rpcUrls" yaml:"rpc_urls"`
	ExplorerURL []string `json:"blockExplorerUrls" yaml:"explorer_urls"`
}

// Sepolia is the target network.
var Sepolia = Network{
	ChainID: 11155111,
	Name:    "Sepolia Testnet",
	Currency: Currency{
		Name:     "Sepolia ETH",
		Symbol:   "ETH",
		Decimals: 18,
	},
	RPCURLs:     []string{"https://sepolia.infura.io/v3/"},
	ExplorerURL: []string{"https://sepolia.etherscan.io"},
}

// HexChainID formats id the way wallets expect it ("0xaa36a7").
func HexChainID(id uint64) string {
	return "0x" + strconv.FormatUint(id, 16)
}

// ParseChainID accepts hex ("0xaa36a7") or decimal chain ids.
func ParseChainID(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

// AddChainParams is the wallet_addEthereumChain parameter object.
type AddChainParams struct {
	ChainID           string   `json:"chainId"`
	ChainName         string   `json:"chainName"`
	NativeCurrency    Currency `json:"nativeCurrency"`
	RPCURLs           []string `json:"rpcUrls"`
	BlockExplorerURLs []string `json:"blockExplorerUrls"`
}

// Params converts the descriptor into wallet_addEthereumChain form.
func (n Network) Params() AddChainParams {
	return AddChainParams{
		ChainID:           HexChainID(n.ChainID),
		ChainName:         n.Name,
		NativeCurrency:    n.Currency,
		RPCURLs:           n.RPCURLs,
		BlockExplorerURLs: n.ExplorerURL,
	}
}
