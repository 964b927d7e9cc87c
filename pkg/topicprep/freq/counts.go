package freq

import "sort"

// Local maps a token to its occurrence count within one document.
type Local map[string]int64

// Count builds the local frequency map for one token sequence.
func Count(tokens []string) Local {
	local := make(Local, len(tokens))
	for _, t := range tokens {
		local[t]++
	}
	return local
}

// Global holds corpus-wide token counts. It is built once by Merge and has
// no mutators, so it can be shared by any number of readers.
type Global struct {
	counts map[string]int64
	total  int64
}

// TokenCount pairs a token with its corpus-wide count.
type TokenCount struct {
	Token string
	Count int64
}

// Merge sums the local maps into a Global. Absent tokens count as zero, and
// the result does not depend on the order of locals.
func Merge(locals []Local) *Global {
	g := &Global{counts: make(map[string]int64)}
	for _, local := range locals {
		for token, n := range local {
			g.counts[token] += n
			g.total += n
		}
	}
	return g
}

// Count returns the corpus-wide count for a token, zero if unseen.
func (g *Global) Count(token string) int64 {
	if g == nil {
		return 0
	}
	return g.counts[token]
}

// Len returns the number of distinct tokens.
func (g *Global) Len() int {
	if g == nil {
		return 0
	}
	return len(g.counts)
}

// Total returns the number of token occurrences across the corpus.
func (g *Global) Total() int64 {
	if g == nil {
		return 0
	}
	return g.total
}

// Tokens returns all distinct tokens in sorted order.
func (g *Global) Tokens() []string {
	if g == nil {
		return nil
	}
	tokens := make([]string, 0, len(g.counts))
	for t := range g.counts {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// Top returns the n most frequent tokens, ties broken alphabetically.
// n <= 0 returns every token.
func (g *Global) Top(n int) []TokenCount {
	if g == nil {
		return nil
	}
	ss := make([]TokenCount, 0, len(g.counts))
	for t, c := range g.counts {
		ss = append(ss, TokenCount{Token: t, Count: c})
	}
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Count != ss[j].Count {
			return ss[i].Count > ss[j].Count
		}
		return ss[i].Token < ss[j].Token
	})
	if n > 0 && n < len(ss) {
		ss = ss[:n]
	}
	return ss
}
