package freq

import "github.com/cognicore/topicprep/pkg/topicprep/stoplist"

// Filter keeps the tokens whose corpus-wide count is strictly greater than
// threshold and which are not stopwords. Input order is preserved.
//
// The threshold is applied to global counts, so Filter must only be called
// once every document has been merged into g.
func Filter(tokens []string, g *Global, threshold int64, stops *stoplist.Set) []string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if g.Count(t) > threshold && !stops.IsStop(t) {
			kept = append(kept, t)
		}
	}
	return kept
}
