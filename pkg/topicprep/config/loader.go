package config

import (
	"fmt"

	"github.com/cognicore/topicprep/pkg/topicprep/ingest"
	"github.com/cognicore/topicprep/pkg/topicprep/stoplist"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	SettingsPath string
	// StoplistPath overrides the stoplist named in the settings file.
	StoplistPath string
}

// Components holds all loaded configuration components. They are built once
// at startup and never modified afterwards.
type Components struct {
	Settings  Settings
	Tokenizer *ingest.Tokenizer
	Stoplist  *stoplist.Set
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	settings := DefaultSettings()
	if l.SettingsPath != "" {
		s, err := LoadSettings(l.SettingsPath)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		settings = *s
	}

	comp := &Components{Settings: settings}

	stoplistPath := settings.Stoplist
	if l.StoplistPath != "" {
		stoplistPath = l.StoplistPath
	}
	if stoplistPath != "" {
		sl, err := LoadStoplist(stoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stoplist = stoplist.New(sl.Terms)
	} else {
		comp.Stoplist = stoplist.Empty()
	}

	generic := stoplist.Empty()
	if settings.GenericStopwords {
		generic = stoplist.Generic()
	}
	comp.Tokenizer = ingest.NewTokenizer(ingest.TokenizerOptions{
		Generic:     generic,
		Punctuation: settings.Punctuation,
		KeepEmpty:   settings.KeepEmptyTokens,
	})

	return comp, nil
}
