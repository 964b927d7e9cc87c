package topicprep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cognicore/topicprep/pkg/topicprep/ingest"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/stoplist"
)

// memSource serves documents from memory in the order given.
type memSource struct {
	ids  []string
	docs map[string]string
	bad  map[string]error // Open fails for these ids
	wait map[string]bool  // Open blocks on these ids until ctx is done
}

func newMemSource(pairs ...string) *memSource {
	s := &memSource{docs: map[string]string{}, bad: map[string]error{}, wait: map[string]bool{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		s.ids = append(s.ids, pairs[i])
		s.docs[pairs[i]] = pairs[i+1]
	}
	return s
}

func (s *memSource) List(context.Context) ([]string, error) {
	return append([]string(nil), s.ids...), nil
}

func (s *memSource) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if s.wait[id] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err, ok := s.bad[id]; ok {
		return nil, err
	}
	text, ok := s.docs[id]
	if !ok {
		return nil, internalerr.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(text)), nil
}

func bareTokenizer() *ingest.Tokenizer {
	return ingest.NewTokenizer(ingest.TokenizerOptions{Generic: stoplist.Empty()})
}

func TestPrepareScenarioA(t *testing.T) {
	src := newMemSource(
		"doc1.txt", "the cat sat",
		"doc2.txt", "the cat ran",
	)
	p := New(Options{Source: src, Tokenizer: bareTokenizer(), Threshold: 0, Workers: 2})

	res, err := p.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	wantCounts := map[string]int64{"the": 2, "cat": 2, "sat": 1, "ran": 1}
	if res.Global.Len() != len(wantCounts) {
		t.Errorf("Vocabulary size = %d, want %d", res.Global.Len(), len(wantCounts))
	}
	for tok, want := range wantCounts {
		if got := res.Global.Count(tok); got != want {
			t.Errorf("Count(%q) = %d, want %d", tok, got, want)
		}
	}

	if !reflect.DeepEqual(res.Corpus["doc1.txt"], []string{"the", "cat", "sat"}) {
		t.Errorf("doc1 = %v", res.Corpus["doc1.txt"])
	}
	if !reflect.DeepEqual(res.Corpus["doc2.txt"], []string{"the", "cat", "ran"}) {
		t.Errorf("doc2 = %v", res.Corpus["doc2.txt"])
	}

	if res.Stats.Docs != 2 || res.Stats.TokensIn != 6 || res.Stats.TokensOut != 6 {
		t.Errorf("Unexpected stats: %+v", res.Stats)
	}
	if res.Stats.BytesRead != int64(len("the cat sat")+len("the cat ran")) {
		t.Errorf("BytesRead = %d", res.Stats.BytesRead)
	}
}

func TestPrepareThresholdIsCorpusWide(t *testing.T) {
	// "rare" appears 10 times and "common" 11 times, spread over several
	// documents so that no single document passes the threshold alone.
	var pairs []string
	for i := 0; i < 10; i++ {
		text := "rare common"
		if i == 0 {
			text += " common"
		}
		pairs = append(pairs, fmt.Sprintf("d%02d.txt", i), text)
	}
	p := New(Options{Source: newMemSource(pairs...), Tokenizer: bareTokenizer(), Threshold: 10})

	res, err := p.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if res.Global.Count("rare") != 10 || res.Global.Count("common") != 11 {
		t.Fatalf("Unexpected counts: rare=%d common=%d", res.Global.Count("rare"), res.Global.Count("common"))
	}
	for id, toks := range res.Corpus {
		for _, tok := range toks {
			if tok != "common" {
				t.Errorf("%s kept %q, which does not exceed the threshold", id, tok)
			}
		}
	}
	if got := res.Corpus["d00.txt"]; !reflect.DeepEqual(got, []string{"common", "common"}) {
		t.Errorf("d00 = %v", got)
	}
}

func TestPrepareAppliesStoplist(t *testing.T) {
	src := newMemSource(
		"a.txt", "covid vaccine trial",
		"b.txt", "covid vaccine dose",
	)
	p := New(Options{
		Source:    src,
		Tokenizer: bareTokenizer(),
		Stoplist:  stoplist.New([]string{"covid"}),
		Threshold: 0,
	})

	res, err := p.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	// The stoplist filters output, not counting.
	if res.Global.Count("covid") != 2 {
		t.Errorf("covid should still be counted, got %d", res.Global.Count("covid"))
	}
	if !reflect.DeepEqual(res.Corpus["a.txt"], []string{"vaccine", "trial"}) {
		t.Errorf("a.txt = %v", res.Corpus["a.txt"])
	}
}

func TestPrepareNewlineSentinel(t *testing.T) {
	src := newMemSource("a.txt", "line1\nline2")
	p := New(Options{Source: src, Tokenizer: bareTokenizer()})

	res, err := p.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	want := []string{"line1", ingest.NewlineToken, "line2"}
	if !reflect.DeepEqual(res.Corpus["a.txt"], want) {
		t.Errorf("Got %v, want %v", res.Corpus["a.txt"], want)
	}
}

func TestPrepareEmptyCorpus(t *testing.T) {
	p := New(Options{Source: newMemSource()})

	res, err := p.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(res.Corpus) != 0 || res.Global.Len() != 0 {
		t.Errorf("Expected empty result, got %d docs, %d tokens", len(res.Corpus), res.Global.Len())
	}
}

func TestPrepareIsIdempotent(t *testing.T) {
	src := newMemSource(
		"a.txt", "Alpha beta &amp; gamma.\nAlpha again",
		"b.txt", "beta, beta; gamma!",
		"c.txt", "",
	)
	p := New(Options{Source: src, Tokenizer: bareTokenizer(), Threshold: 1, Workers: 3})

	first, err := p.Prepare(context.Background())
	if err != nil {
		t.Fatalf("first Prepare: %v", err)
	}
	second, err := p.Prepare(context.Background())
	if err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
	if !reflect.DeepEqual(first.Corpus, second.Corpus) {
		t.Errorf("Corpus differs between runs:\n%v\n%v", first.Corpus, second.Corpus)
	}
	if !reflect.DeepEqual(first.Global.Top(0), second.Global.Top(0)) {
		t.Errorf("Frequencies differ between runs")
	}
}

func TestPrepareIndependentOfOrderAndWorkers(t *testing.T) {
	texts := map[string]string{
		"a.txt": "one two two three",
		"b.txt": "two three three",
		"c.txt": "three four",
		"d.txt": "four four one",
	}
	forward := newMemSource()
	backward := newMemSource()
	for _, id := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		forward.ids = append(forward.ids, id)
		forward.docs[id] = texts[id]
	}
	for _, id := range []string{"d.txt", "c.txt", "b.txt", "a.txt"} {
		backward.ids = append(backward.ids, id)
		backward.docs[id] = texts[id]
	}

	serial, err := New(Options{Source: forward, Tokenizer: bareTokenizer(), Threshold: 2, Workers: 1}).Prepare(context.Background())
	if err != nil {
		t.Fatalf("serial Prepare: %v", err)
	}
	parallel, err := New(Options{Source: backward, Tokenizer: bareTokenizer(), Threshold: 2, Workers: 4}).Prepare(context.Background())
	if err != nil {
		t.Fatalf("parallel Prepare: %v", err)
	}
	if !reflect.DeepEqual(serial.Corpus, parallel.Corpus) {
		t.Errorf("Corpus depends on order or worker count:\n%v\n%v", serial.Corpus, parallel.Corpus)
	}
}

func TestPrepareFailsOnUnreadableDocument(t *testing.T) {
	src := newMemSource(
		"a.txt", "fine",
		"b.txt", "also fine",
	)
	src.bad["b.txt"] = errors.New("permission denied")
	p := New(Options{Source: src})

	res, err := p.Prepare(context.Background())
	if !errors.Is(err, internalerr.ErrDocumentRead) {
		t.Fatalf("Expected ErrDocumentRead, got %v", err)
	}
	if res != nil {
		t.Errorf("No partial result expected, got %+v", res)
	}
}

func TestPrepareReportsFailingDocument(t *testing.T) {
	src := newMemSource(
		"a.txt", "slow",
		"b.txt", "broken",
	)
	src.wait["a.txt"] = true
	src.bad["b.txt"] = errors.New("permission denied")
	p := New(Options{Source: src, Workers: 2})

	_, err := p.Prepare(context.Background())
	if !errors.Is(err, internalerr.ErrDocumentRead) {
		t.Fatalf("Expected ErrDocumentRead, got %v", err)
	}
	if errors.Is(err, context.Canceled) || !strings.Contains(err.Error(), "b.txt: permission denied") {
		t.Errorf("Expected the b.txt failure, got %v", err)
	}
}

func TestPrepareZeroThresholdKeepsEverything(t *testing.T) {
	p := New(Options{Source: newMemSource("a.txt", "rare word"), Tokenizer: bareTokenizer()})

	res, err := p.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if want := []string{"rare", "word"}; !reflect.DeepEqual(res.Corpus["a.txt"], want) {
		t.Errorf("a.txt = %v, want %v", res.Corpus["a.txt"], want)
	}
}

func TestPrepareFailsOnInvalidEncoding(t *testing.T) {
	src := newMemSource(
		"a.txt", "fine",
		"b.txt", "bad \xff\xfe bytes",
	)
	p := New(Options{Source: src})

	res, err := p.Prepare(context.Background())
	if !errors.Is(err, internalerr.ErrEncoding) {
		t.Fatalf("Expected ErrEncoding, got %v", err)
	}
	if res != nil {
		t.Errorf("No partial result expected, got %+v", res)
	}
}

func TestPrepareCancelled(t *testing.T) {
	src := newMemSource("a.txt", "fine", "b.txt", "fine")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{Source: src}).Prepare(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunIDsAreOrdered(t *testing.T) {
	ids := newRunIDs()
	now := time.Now()

	a := ids.next(now)
	b := ids.next(now)
	if len(a) != 26 {
		t.Errorf("Expected 26-character ULID, got %q", a)
	}
	if !(a < b) {
		t.Errorf("IDs in the same millisecond should increase: %s then %s", a, b)
	}
}
