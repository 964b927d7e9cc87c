package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/cognicore/topicprep/pkg/topicprep"
	"github.com/cognicore/topicprep/pkg/topicprep/config"
	"github.com/cognicore/topicprep/pkg/topicprep/source"
	"github.com/cognicore/topicprep/pkg/topicprep/store"
	"github.com/cognicore/topicprep/pkg/topicprep/store/sqlite"
	"github.com/cognicore/topicprep/pkg/topicprep/trainer"
)

func prepareAction(c *cli.Context) error {
	logger, err := newLogger(c.String("log-level"))
	if err != nil {
		return err
	}
	comp, err := loadComponents(c)
	if err != nil {
		return err
	}
	_, err = prepare(c, logger, comp)
	return err
}

func trainAction(c *cli.Context) error {
	logger, err := newLogger(c.String("log-level"))
	if err != nil {
		return err
	}
	comp, err := loadComponents(c)
	if err != nil {
		return err
	}
	return train(c, logger, comp.Settings)
}

func runAction(c *cli.Context) error {
	logger, err := newLogger(c.String("log-level"))
	if err != nil {
		return err
	}
	comp, err := loadComponents(c)
	if err != nil {
		return err
	}
	if _, err := prepare(c, logger, comp); err != nil {
		return err
	}
	return train(c, logger, comp.Settings)
}

func prepare(c *cli.Context, logger *slog.Logger, comp *config.Components) (*topicprep.Result, error) {
	ctx := c.Context
	s := comp.Settings

	src, label, err := openSource(c.String("input"), c.String("jsonl"), bucketConfig(c, s.Bucket), s)
	if err != nil {
		return nil, err
	}

	var ledger store.Store
	if path := c.String("db"); path != "" {
		ledger, err = sqlite.OpenSQLite(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open run ledger: %w", err)
		}
		defer ledger.Close()
	}

	p := topicprep.New(topicprep.Options{
		Source:    src,
		Tokenizer: comp.Tokenizer,
		Stoplist:  comp.Stoplist,
		Threshold: s.Threshold,
		Workers:   s.Workers,
		Store:     ledger,
		Label:     label,
		Logger:    logger,
	})

	layout := trainer.Layout{Dir: c.String("output")}
	res, err := p.Run(ctx, layout.Data())
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.App.Writer, "run %s: %d documents, %d of %d tokens kept, vocabulary %d\n",
		res.RunID, res.Stats.Docs, res.Stats.TokensOut, res.Stats.TokensIn, res.Stats.VocabSize)
	return res, nil
}

func train(c *cli.Context, logger *slog.Logger, s config.Settings) error {
	m := newMallet(s.Trainer)
	m.Logger = logger
	m.Stdout = os.Stderr
	m.Stderr = os.Stderr

	layout := trainer.Layout{Dir: c.String("output")}
	if err := m.Train(c.Context, layout); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "topic keys: %s\n", layout.TopicKeys())
	return nil
}

// loadComponents reads the settings file and applies command line overrides.
func loadComponents(c *cli.Context) (*config.Components, error) {
	loader := config.Loader{
		SettingsPath: c.String("config"),
		StoplistPath: c.String("stoplist"),
	}
	comp, err := loader.Load()
	if err != nil {
		return nil, err
	}

	s := &comp.Settings
	if c.IsSet("threshold") {
		s.Threshold = c.Int64("threshold")
	}
	if c.IsSet("workers") {
		s.Workers = c.Int("workers")
	}
	if c.IsSet("recursive") {
		s.Recursive = c.Bool("recursive")
	}
	if c.IsSet("mallet") {
		s.Trainer.Mallet = c.String("mallet")
	}
	if c.IsSet("topics") {
		s.Trainer.NumTopics = c.Int("topics")
	}
	if c.IsSet("iterations") {
		s.Trainer.NumIterations = c.Int("iterations")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return comp, nil
}

// bucketConfig merges the bucket flags over the settings file's bucket
// block. It returns nil when neither names a bucket.
func bucketConfig(c *cli.Context, base *source.BucketConfig) *source.BucketConfig {
	var cfg source.BucketConfig
	if base != nil {
		cfg = *base
	}
	if v := c.String("bucket"); v != "" {
		cfg.Bucket = v
	}
	if v := c.String("endpoint"); v != "" {
		cfg.Endpoint = v
	}
	if v := c.String("prefix"); v != "" {
		cfg.Prefix = v
	}
	if v := c.String("access-key"); v != "" {
		cfg.AccessKeyID = v
	}
	if v := c.String("secret-key"); v != "" {
		cfg.SecretAccessKey = v
	}
	if cfg.Bucket == "" {
		return nil
	}
	return &cfg
}
