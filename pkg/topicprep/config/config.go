package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/topicprep/pkg/topicprep/ingest"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/pool"
	"github.com/cognicore/topicprep/pkg/topicprep/source"
)

// DefaultThreshold is the corpus-wide count a token must exceed to be kept.
const DefaultThreshold = 10

// Settings holds the process-wide pipeline settings.
type Settings struct {
	Threshold        int64                `yaml:"threshold"`
	Workers          int                  `yaml:"workers"`
	Extension        string               `yaml:"extension"`
	Recursive        bool                 `yaml:"recursive"`
	Punctuation      string               `yaml:"punctuation"`
	GenericStopwords bool                 `yaml:"generic_stopwords"`
	KeepEmptyTokens  bool                 `yaml:"keep_empty_tokens"`
	Stoplist         string               `yaml:"stoplist"`
	Bucket           *source.BucketConfig `yaml:"bucket"`
	Trainer          Trainer              `yaml:"trainer"`
}

// Trainer configures the MALLET invocation.
type Trainer struct {
	Mallet           string `yaml:"mallet"`
	NumTopics        int    `yaml:"num_topics"`
	NumIterations    int    `yaml:"num_iterations"`
	OptimizeInterval int    `yaml:"optimize_interval"`
	NumTopWords      int    `yaml:"num_top_words"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		Threshold:        DefaultThreshold,
		Workers:          pool.AllUnits,
		Extension:        source.DefaultExtension,
		Punctuation:      ingest.DefaultPunctuation,
		GenericStopwords: true,
		Trainer: Trainer{
			Mallet:           "mallet",
			NumTopics:        16,
			NumIterations:    2000,
			OptimizeInterval: 10,
			NumTopWords:      100,
		},
	}
}

// LoadSettings reads a YAML settings file. Keys absent from the file keep
// their default values.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings for values the pipeline cannot run with.
func (s *Settings) Validate() error {
	if s.Threshold < 0 {
		return fmt.Errorf("%w: threshold must be >= 0, got %d", internalerr.ErrInvalidConfig, s.Threshold)
	}
	if s.Workers < pool.AllUnits {
		return fmt.Errorf("%w: workers must be >= %d, got %d", internalerr.ErrInvalidConfig, pool.AllUnits, s.Workers)
	}
	if s.Extension == "" {
		return fmt.Errorf("%w: extension is required", internalerr.ErrInvalidConfig)
	}
	if s.Trainer.NumTopics < 0 || s.Trainer.NumIterations < 0 || s.Trainer.OptimizeInterval < 0 || s.Trainer.NumTopWords < 0 {
		return fmt.Errorf("%w: trainer values must be >= 0", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
