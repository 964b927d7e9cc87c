// Package trainer drives the external MALLET topic-model trainer over a
// prepared corpus directory. MALLET's output is not parsed.
package trainer

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
)

// Hyper holds the train-topics hyperparameters.
type Hyper struct {
	NumTopics        int
	NumIterations    int
	OptimizeInterval int
	NumTopWords      int
}

// DefaultHyper returns the hyperparameters used for weekly news corpora.
func DefaultHyper() Hyper {
	return Hyper{
		NumTopics:        16,
		NumIterations:    2000,
		OptimizeInterval: 10,
		NumTopWords:      100,
	}
}

// Layout names the files MALLET reads and writes under one work directory.
type Layout struct {
	Dir string
}

// Data is the directory holding one token file per document.
func (l Layout) Data() string { return filepath.Join(l.Dir, "data") }

// Input is the serialized instance list produced by import-dir.
func (l Layout) Input() string { return filepath.Join(l.Dir, "topic-input.mallet") }

// State is the gzipped Gibbs sampling state written after training.
func (l Layout) State() string { return filepath.Join(l.Dir, "topic-state.gz") }

// DocTopics is the per-document topic proportions file.
func (l Layout) DocTopics() string { return filepath.Join(l.Dir, "doc_topics.txt") }

// TopicKeys lists the top words of each topic.
func (l Layout) TopicKeys() string { return filepath.Join(l.Dir, "topic_keys.txt") }

// Inferencer is the saved topic inferencer for unseen documents.
func (l Layout) Inferencer() string { return filepath.Join(l.Dir, "model.mallet") }

// Mallet runs the MALLET binary at Path.
type Mallet struct {
	Path   string
	Hyper  Hyper
	Logger *slog.Logger
	// Stdout and Stderr receive MALLET's output; nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// ImportArgs returns the arguments converting the data directory into
// MALLET's binary input format.
func (m *Mallet) ImportArgs(l Layout) []string {
	return []string{
		"import-dir",
		"--input", l.Data(),
		"--output", l.Input(),
		"--keep-sequence",
		"--remove-stopwords",
	}
}

// TrainArgs returns the train-topics arguments.
func (m *Mallet) TrainArgs(l Layout) []string {
	return []string{
		"train-topics",
		"--input", l.Input(),
		"--output-state", l.State(),
		"--output-doc-topics", l.DocTopics(),
		"--output-topic-keys", l.TopicKeys(),
		"--inferencer-filename", l.Inferencer(),
		"--num-topics", strconv.Itoa(m.Hyper.NumTopics),
		"--num-iterations", strconv.Itoa(m.Hyper.NumIterations),
		"--optimize-interval", strconv.Itoa(m.Hyper.OptimizeInterval),
		"--num-top-words", strconv.Itoa(m.Hyper.NumTopWords),
	}
}

// Train imports l.Data() and trains the topic model. A non-zero exit of
// either step stops the run with an error wrapping internalerr.ErrTrainer.
func (m *Mallet) Train(ctx context.Context, l Layout) error {
	if err := m.run(ctx, "import-dir", m.ImportArgs(l)); err != nil {
		return err
	}
	return m.run(ctx, "train-topics", m.TrainArgs(l))
}
