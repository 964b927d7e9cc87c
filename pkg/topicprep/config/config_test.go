package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/topicprep/pkg/topicprep/ingest"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/pool"
)

func TestLoadStoplist(t *testing.T) {
	// Create temp file
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "stoplist.yaml")

	content := `terms:
  - the
  - a
  - and
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sl, err := LoadStoplist(path)
	if err != nil {
		t.Fatalf("Failed to load stoplist: %v", err)
	}

	if len(sl.Terms) != 3 {
		t.Errorf("Expected 3 terms, got %d", len(sl.Terms))
	}

	expected := map[string]bool{"the": true, "a": true, "and": true}
	for _, term := range sl.Terms {
		if !expected[term] {
			t.Errorf("Unexpected term: %s", term)
		}
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.Threshold != 10 {
		t.Errorf("Expected threshold 10, got %d", s.Threshold)
	}
	if s.Workers != pool.AllUnits {
		t.Errorf("Expected all units, got %d", s.Workers)
	}
	if s.Extension != ".txt" {
		t.Errorf("Expected .txt, got %q", s.Extension)
	}
	if s.Punctuation != ingest.DefaultPunctuation {
		t.Errorf("Unexpected punctuation %q", s.Punctuation)
	}
	if !s.GenericStopwords {
		t.Error("Generic stopwords should be on by default")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoadSettings(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "settings.yaml")

	content := `threshold: 3
workers: 2
generic_stopwords: false
keep_empty_tokens: true
trainer:
  mallet: /opt/mallet/bin/mallet
  num_topics: 8
bucket:
  endpoint: localhost:9000
  bucket: corpus
  prefix: weekly/
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}

	if s.Threshold != 3 || s.Workers != 2 {
		t.Errorf("Unexpected threshold/workers %d/%d", s.Threshold, s.Workers)
	}
	if s.GenericStopwords || !s.KeepEmptyTokens {
		t.Error("Boolean settings not applied")
	}
	if s.Trainer.Mallet != "/opt/mallet/bin/mallet" || s.Trainer.NumTopics != 8 {
		t.Errorf("Unexpected trainer settings %+v", s.Trainer)
	}
	// Unset keys keep defaults.
	if s.Trainer.NumIterations != 2000 || s.Extension != ".txt" {
		t.Errorf("Defaults should survive partial files: %+v", s)
	}
	if s.Bucket == nil || s.Bucket.Bucket != "corpus" || s.Bucket.Prefix != "weekly/" {
		t.Errorf("Unexpected bucket settings %+v", s.Bucket)
	}
}

func TestLoadSettingsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	cases := map[string]string{
		"negative threshold": "threshold: -1\n",
		"bad workers":        "workers: -5\n",
		"empty extension":    "extension: \"\"\n",
		"negative topics":    "trainer:\n  num_topics: -2\n",
	}
	for name, content := range cases {
		path := filepath.Join(tmpDir, "bad.yaml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadSettings(path)
		if !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestLoadSettingsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("threshold: [unclosed\n"), 0644)

	if _, err := LoadSettings(path); err == nil {
		t.Error("Should error on malformed YAML")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := LoadStoplist("/nonexistent/path.yaml")
	if err == nil {
		t.Error("Should error on non-existent file")
	}

	_, err = LoadSettings("/nonexistent/path.yaml")
	if err == nil {
		t.Error("Should error on non-existent file")
	}
}

func TestLoadEmptyStoplistFile(t *testing.T) {
	tmpDir := t.TempDir()

	slPath := filepath.Join(tmpDir, "empty_stoplist.yaml")
	os.WriteFile(slPath, []byte("terms: []"), 0644)
	sl, err := LoadStoplist(slPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(sl.Terms) != 0 {
		t.Error("Empty stoplist should have no terms")
	}
}
