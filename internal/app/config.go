package app

import (
	"errors"
	"time"

	"github.com/vk/flakego/internal/pkgset"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Target is the manifest file, or a directory containing flake.hcl.
	Target string

	// Attr optionally selects a dotted attribute path from the evaluated
	// flake; empty means the whole outputs object.
	Attr string

	// System is the platform the package collection is built for.
	System pkgset.SystemID

	LogFormat string
	LogLevel  string

	// InputTTL bounds how long resolved inputs are served from cache.
	InputTTL time.Duration

	// FetchTimeout bounds a single remote input download.
	FetchTimeout time.Duration
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Target == "" {
		return nil, errors.New("Target is a required configuration field and cannot be empty")
	}
	if cfg.System == "" {
		cfg.System = pkgset.CurrentSystem()
	}
	return &cfg, nil
}
