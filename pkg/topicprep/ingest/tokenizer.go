package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/topicprep/pkg/topicprep/freq"
	"github.com/cognicore/topicprep/pkg/topicprep/stoplist"
)

const (
	// NewlineToken replaces every line break so paragraph boundaries survive
	// tokenization.
	NewlineToken = "###newline###"

	// DefaultPunctuation is stripped from both ends of every token.
	DefaultPunctuation = "!\"$%&'()*+,-./:;<=>?[\\]^_`{|}~"

	// EntityPasses is how many times HTML entities are decoded. Entities that
	// were escaped more often than this stay partially encoded.
	EntityPasses = 4
)

var whitespaceRun = regexp.MustCompile(`(\s)+`)

// TokenizerOptions configures a Tokenizer.
type TokenizerOptions struct {
	// Generic is removed from the normalized text before splitting.
	// Nil selects stoplist.Generic(); use stoplist.Empty() to keep everything.
	Generic *stoplist.Set

	// Punctuation is trimmed from token edges. Empty selects DefaultPunctuation.
	Punctuation string

	// KeepEmpty retains tokens that punctuation stripping reduced to "".
	KeepEmpty bool
}

// Tokenizer turns raw document text into tokens. It holds no mutable state
// and is safe for concurrent use.
type Tokenizer struct {
	generic     *stoplist.Set
	punctuation string
	keepEmpty   bool
}

// NewTokenizer creates a tokenizer with the given options
func NewTokenizer(opts TokenizerOptions) *Tokenizer {
	t := &Tokenizer{
		generic:     opts.Generic,
		punctuation: opts.Punctuation,
		keepEmpty:   opts.KeepEmpty,
	}
	if t.generic == nil {
		t.generic = stoplist.Generic()
	}
	if t.punctuation == "" {
		t.punctuation = DefaultPunctuation
	}
	return t
}

// Tokenize normalizes text and returns its token sequence together with the
// document's local frequency map.
func (t *Tokenizer) Tokenize(text string) ([]string, freq.Local) {
	tokens := t.Split(t.Normalize(text))
	return tokens, freq.Count(tokens)
}

// Normalize applies the whole-string steps: lowercase, newline sentinel,
// whitespace collapse, entity decoding and generic stopword removal.
func (t *Tokenizer) Normalize(text string) string {
	s := strings.ToLower(text)
	s = strings.ReplaceAll(s, "\n", " "+NewlineToken+" ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = DecodeEntities(s)
	return t.removeGeneric(s)
}

// Split breaks normalized text on whitespace and strips punctuation from the
// edges of each token.
func (t *Tokenizer) Split(normalized string) []string {
	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.Trim(f, t.punctuation)
		if tok == "" && !t.keepEmpty {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func (t *Tokenizer) removeGeneric(s string) string {
	if t.generic.Len() == 0 {
		return s
	}
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !t.generic.IsStop(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// DecodeEntities unescapes HTML entities EntityPasses times, so "&amp;amp;"
// becomes "&". Deeper nesting is left partially encoded.
func DecodeEntities(s string) string {
	for i := 0; i < EntityPasses; i++ {
		s = html.UnescapeString(s)
	}
	return s
}
