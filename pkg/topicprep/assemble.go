package topicprep

import (
	"fmt"

	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
)

// Corpus maps a document identifier to its filtered token sequence.
type Corpus map[string][]string

// Assemble zips identifiers with the positionally matching token sequences.
// A length mismatch or a repeated identifier means the worker pool broke its
// ordering contract; both fail with internalerr.ErrAssembly.
func Assemble(ids []string, seqs [][]string) (Corpus, error) {
	if len(ids) != len(seqs) {
		return nil, fmt.Errorf("%w: %d identifiers, %d results", internalerr.ErrAssembly, len(ids), len(seqs))
	}
	corpus := make(Corpus, len(ids))
	for i, id := range ids {
		if _, dup := corpus[id]; dup {
			return nil, fmt.Errorf("%w: duplicate identifier %s", internalerr.ErrAssembly, id)
		}
		corpus[id] = seqs[i]
	}
	return corpus, nil
}
