// Package search matches free-text queries against job postings,
// applications, skill claims and proposals, the way the search boxes of the
// client filter their lists.
package search

import (
	"regexp"
	"strings"
)

var (
	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s, turns every non letter/digit run into a space and
// collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = reNonWord.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// aliases pairs common spellings of the same skill. Keys and values are
// normalized.
var aliases = map[string][]string{
	"eth":             {"ethereum"},
	"ethereum":        {"eth"},
	"erc20":           {"erc 20"},
	"erc 20":          {"erc20"},
	"erc721":          {"erc 721", "nft"},
	"erc 721":         {"erc721", "nft"},
	"nft":             {"nfts", "erc721", "erc 721"},
	"nfts":            {"nft"},
	"js":              {"javascript"},
	"javascript":      {"js"},
	"ts":              {"typescript"},
	"typescript":      {"ts"},
	"golang":          {"go"},
	"go":              {"golang"},
	"web3":            {"web 3"},
	"web 3":           {"web3"},
	"smart contract":  {"smart contracts"},
	"smart contracts": {"smart contract"},
	"dao":             {"daos"},
	"ui ux":           {"ux", "ui"},
}

// Variants returns term and its aliases, normalized and deduplicated.
func Variants(term string) []string {
	base := Normalize(term)
	if base == "" {
		return []string{}
	}
	out := []string{base}
	seen := map[string]struct{}{base: {}}
	for _, a := range aliases[base] {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// ContainsPhrase reports whether the normalized phrase occurs in the
// normalized text as whole words: "rest api" is found in "a rest api" but
// not in "rest apis".
func ContainsPhrase(normalizedText, normalizedPhrase string) bool {
	if normalizedPhrase == "" {
		return false
	}
	return strings.Contains(" "+normalizedText+" ", " "+normalizedPhrase+" ")
}

// Query is a parsed search string. Every term must match.
type Query struct {
	terms [][]string
}

// Parse splits q on whitespace. "ERC-20" stays one term ("erc 20").
func Parse(q string) Query {
	var out Query
	for _, f := range strings.Fields(q) {
		if v := Variants(f); len(v) > 0 {
			out.terms = append(out.terms, v)
		}
	}
	return out
}

func (q Query) Empty() bool { return len(q.terms) == 0 }

// Match reports whether every term, or one of its aliases, occurs in one of
// fields. An empty query matches everything.
func (q Query) Match(fields ...string) bool {
	if q.Empty() {
		return true
	}
	doc := Normalize(strings.Join(fields, " "))
	for _, variants := range q.terms {
		found := false
		for _, v := range variants {
			if ContainsPhrase(doc, v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Filter keeps the items whose fields match q, in order.
func Filter[T any](items []T, q Query, fields func(T) []string) []T {
	if q.Empty() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if q.Match(fields(it)...) {
			out = append(out, it)
		}
	}
	return out
}
