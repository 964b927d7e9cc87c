package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cognicore/topicprep/pkg/topicprep/config"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/source"
	"github.com/cognicore/topicprep/pkg/topicprep/trainer"
)

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", internalerr.ErrInvalidConfig, level)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// openSource picks the document source: an input directory, then a JSONL
// file, then a bucket. The returned label describes the input for the run
// ledger.
func openSource(input, jsonl string, bucket *source.BucketConfig, s config.Settings) (source.Source, string, error) {
	if input != "" {
		return source.Dir{Path: input, Extension: s.Extension, Recursive: s.Recursive}, input, nil
	}
	if jsonl != "" {
		src, err := source.LoadJSONL(jsonl)
		if err != nil {
			return nil, "", err
		}
		return src, jsonl, nil
	}
	if bucket == nil {
		return nil, "", fmt.Errorf("%w: one of --input, --jsonl or a bucket is required", internalerr.ErrInvalidConfig)
	}
	cfg := *bucket
	if cfg.Extension == "" {
		cfg.Extension = s.Extension
	}
	b, err := source.NewBucket(cfg)
	if err != nil {
		return nil, "", err
	}
	return b, "s3://" + cfg.Bucket + "/" + cfg.Prefix, nil
}

func newMallet(t config.Trainer) *trainer.Mallet {
	return &trainer.Mallet{
		Path: t.Mallet,
		Hyper: trainer.Hyper{
			NumTopics:        t.NumTopics,
			NumIterations:    t.NumIterations,
			OptimizeInterval: t.OptimizeInterval,
			NumTopWords:      t.NumTopWords,
		},
	}
}
