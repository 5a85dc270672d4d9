// Package config validates the flat, CLI-populated configuration the
// pipeline runs with. Validation happens once at startup, before shard
// iteration; every failure here is fatal (cmd/corpusbuild calls
// cos.ExitLogf on Validate's error return, exit code 1).
package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Config is the pipeline's full runtime configuration, populated from
// CLI flags.
type Config struct {
	SourceDir          string
	DestDir            string
	ModelPath          string
	BlocklistDir       string // optional; empty disables ContentDetector
	PerplexityDir      string // optional; empty disables HarmfulPerplexity
	PartSizeBytes      int64  // optional; 0 disables part rotation
	Compress           bool
	DetectMultilingual bool
	EnableLSH          bool
	Workers            int // 0 means runtime.NumCPU()
}

// Validate checks the configuration is usable, returning an error on the
// first problem found: missing model, unreadable source directory, or a
// destination that doesn't exist / isn't writable. Re-running over a
// populated destination is undefined and is not itself a validation
// failure.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("config: source directory is required")
	}
	if info, err := os.Stat(c.SourceDir); err != nil {
		return errors.Wrapf(err, "config: source directory %s", c.SourceDir)
	} else if !info.IsDir() {
		return fmt.Errorf("config: source %s is not a directory", c.SourceDir)
	}

	if c.DestDir == "" {
		return fmt.Errorf("config: destination directory is required")
	}
	if info, err := os.Stat(c.DestDir); err != nil {
		return errors.Wrapf(err, "config: destination directory %s", c.DestDir)
	} else if !info.IsDir() {
		return fmt.Errorf("config: destination %s is not a directory", c.DestDir)
	}
	if err := probeWritable(c.DestDir); err != nil {
		return errors.Wrapf(err, "config: destination %s not writable", c.DestDir)
	}

	if c.ModelPath == "" {
		return fmt.Errorf("config: identification model path is required")
	}
	if _, err := os.Stat(c.ModelPath); err != nil {
		return errors.Wrapf(err, "config: model path %s", c.ModelPath)
	}

	if c.BlocklistDir != "" {
		if info, err := os.Stat(c.BlocklistDir); err != nil || !info.IsDir() {
			return fmt.Errorf("config: blocklist directory %s is not a valid directory", c.BlocklistDir)
		}
	}
	if c.PerplexityDir != "" {
		if info, err := os.Stat(c.PerplexityDir); err != nil || !info.IsDir() {
			return fmt.Errorf("config: perplexity model directory %s is not a valid directory", c.PerplexityDir)
		}
	}
	if c.PartSizeBytes < 0 {
		return fmt.Errorf("config: part size must be >= 0, got %d", c.PartSizeBytes)
	}
	return nil
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".corpusbuild-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
