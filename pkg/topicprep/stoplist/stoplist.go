package stoplist

import (
	"sort"
	"strings"
)

// Set is an immutable stopword set. The zero value and a nil *Set are empty.
type Set struct {
	stops map[string]struct{}
}

// New builds a set from the given terms. Terms are lowercased and trimmed;
// blanks are ignored.
func New(terms []string) *Set {
	stops := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		stops[t] = struct{}{}
	}
	return &Set{stops: stops}
}

// Empty returns a set containing no stopwords.
func Empty() *Set {
	return &Set{}
}

// IsStop checks if a token is a stopword
func (s *Set) IsStop(token string) bool {
	if s == nil {
		return false
	}
	_, ok := s.stops[token]
	return ok
}

// Len returns the number of stopwords.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.stops)
}

// All returns all stopwords in sorted order.
func (s *Set) All() []string {
	if s == nil {
		return nil
	}
	result := make([]string, 0, len(s.stops))
	for t := range s.stops {
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}

// Union returns a new set holding the stopwords of both sets.
func (s *Set) Union(other *Set) *Set {
	terms := append(s.All(), other.All()...)
	return New(terms)
}
