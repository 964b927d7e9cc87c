package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
)

// Item is one line of a JSONL feed dump, as written by news and RSS crawlers.
type Item struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Body string `json:"text"`
}

func (it Item) key() string {
	if it.ID != "" {
		return it.ID
	}
	return it.URL
}

// JSONL serves the items of a JSONL file as documents. Identifiers are the
// item's id, falling back to its url.
type JSONL struct {
	ids  []string
	docs map[string]string
}

// LoadJSONL reads every item of path. A malformed line, an item without an
// identifier or a repeated identifier fails the whole load.
func LoadJSONL(path string) (*JSONL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	j := &JSONL{docs: make(map[string]string)}
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", internalerr.ErrDocumentRead, path, i+1, err)
		}
		key := item.key()
		if key == "" {
			return nil, fmt.Errorf("%w: %s line %d has no id or url", internalerr.ErrInvalidInput, path, i+1)
		}
		if _, dup := j.docs[key]; dup {
			return nil, fmt.Errorf("%w: %s line %d repeats %s", internalerr.ErrInvalidInput, path, i+1, key)
		}
		j.ids = append(j.ids, key)
		j.docs[key] = item.Body
	}
	return j, nil
}

// List returns the identifiers in file order.
func (j *JSONL) List(context.Context) ([]string, error) {
	return append([]string(nil), j.ids...), nil
}

// Open returns the body of the item with identifier id.
func (j *JSONL) Open(_ context.Context, id string) (io.ReadCloser, error) {
	body, ok := j.docs[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, internalerr.ErrNotFound)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}
