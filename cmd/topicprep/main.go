package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		slog.Error("topicprep failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	sourceFlags := []cli.Flag{
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "directory of plain-text documents"},
		&cli.StringFlag{Name: "jsonl", Usage: "read documents from a JSONL dump (one {id, url, text} object per line)"},
		&cli.StringFlag{Name: "bucket", Usage: "read documents from this S3-compatible bucket instead of --input"},
		&cli.StringFlag{Name: "endpoint", Usage: "bucket endpoint (host:port)"},
		&cli.StringFlag{Name: "prefix", Usage: "object key prefix inside the bucket"},
		&cli.StringFlag{Name: "access-key", EnvVars: []string{"TOPICPREP_ACCESS_KEY"}, Usage: "bucket access key"},
		&cli.StringFlag{Name: "secret-key", EnvVars: []string{"TOPICPREP_SECRET_KEY"}, Usage: "bucket secret key"},
		&cli.BoolFlag{Name: "recursive", Usage: "descend into subdirectories of --input"},
		&cli.StringFlag{Name: "stoplist", Usage: "YAML stoplist applied after counting (overrides the settings file)"},
		&cli.Int64Flag{Name: "threshold", Usage: "keep tokens whose corpus-wide count exceeds this value"},
		&cli.IntFlag{Name: "workers", Usage: "worker count; 0 uses every CPU"},
		&cli.StringFlag{Name: "db", Usage: "SQLite run ledger path (optional)"},
	}
	trainFlags := []cli.Flag{
		&cli.StringFlag{Name: "mallet", Usage: "path to the MALLET binary"},
		&cli.IntFlag{Name: "topics", Usage: "number of topics"},
		&cli.IntFlag{Name: "iterations", Usage: "number of sampling iterations"},
	}
	outputFlag := &cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "work directory; documents go to <output>/data"}

	return &cli.App{
		Name:  "topicprep",
		Usage: "prepare plain-text corpora for topic modelling",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML settings file"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
		},
		Commands: []*cli.Command{
			{
				Name:   "prepare",
				Usage:  "tokenize, count and filter documents, then write the trainer input",
				Flags:  append([]cli.Flag{outputFlag}, sourceFlags...),
				Action: prepareAction,
			},
			{
				Name:   "train",
				Usage:  "run MALLET over a prepared work directory",
				Flags:  append([]cli.Flag{outputFlag}, trainFlags...),
				Action: trainAction,
			},
			{
				Name:   "run",
				Usage:  "prepare and train in one step",
				Flags:  append(append([]cli.Flag{outputFlag}, sourceFlags...), trainFlags...),
				Action: runAction,
			},
		},
	}
}
