package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "erc 20 defi", Normalize("  ERC-20,  DeFi!"))
	assert.Equal(t, "", Normalize("--"))
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, ContainsPhrase("a rest api service", "rest api"))
	assert.False(t, ContainsPhrase("rest apis", "rest api"))
	assert.False(t, ContainsPhrase("anything", ""))
}

func TestVariants(t *testing.T) {
	assert.Equal(t, []string{"erc 20", "erc20"}, Variants("ERC-20"))
	assert.Equal(t, []string{"solidity"}, Variants("Solidity"))
	assert.Empty(t, Variants("  "))
}

func TestQueryMatch(t *testing.T) {
	doc := []string{"Smart Contract Developer", "DeFi Protocol", "Solidity ERC-20 DeFi"}

	assert.True(t, Parse("").Match(doc...))
	assert.True(t, Parse("solidity").Match(doc...))
	assert.True(t, Parse("erc20 defi").Match(doc...))
	assert.True(t, Parse("Contract").Match(doc...))
	assert.Contains(t, Variants("Smart-Contracts"), "smart contract")
	assert.False(t, Parse("solidity react").Match(doc...))
	assert.False(t, Parse("sol").Match(doc...))
}

func TestFilter(t *testing.T) {
	items := []string{"React frontend", "Solidity auditor", "NFT marketplace UI"}
	id := func(s string) []string { return []string{s} }

	assert.Equal(t, items, Filter(items, Parse(""), id))
	assert.Equal(t, []string{"Solidity auditor"}, Filter(items, Parse("solidity"), id))
	assert.Equal(t, []string{"NFT marketplace UI"}, Filter(items, Parse("nfts"), id))
}
