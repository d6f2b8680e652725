// Package config loads glistix-nix.toml, the project's optional
// configuration file. Its absence is not an error: every field defaults to
// a value that makes the driver usable straight out of a bare directory of
// *.gleamir.json files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

const fileName = "glistix-nix.toml"

// Config is the decoded project configuration.
type Config struct {
	OutRoot    string `toml:"out_root"`
	LineWidth  int    `toml:"line_width"`
	PreludePath string `toml:"prelude_path"`
	CacheDir   string `toml:"cache_dir"`
	Jobs       int    `toml:"jobs"`
}

// file mirrors Config's shape for decoding, so a field intentionally left
// out of glistix-nix.toml decodes to its zero value and Load can tell that
// apart from an explicit zero.
type file struct {
	OutRoot     string `toml:"out_root"`
	LineWidth   int    `toml:"line_width"`
	PreludePath string `toml:"prelude_path"`
	CacheDir    string `toml:"cache_dir"`
	Jobs        int    `toml:"jobs"`
}

func defaults() Config {
	cacheDir := filepath.Join(".cache", "glistix-nix")
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		cacheDir = filepath.Join(xdg, "glistix-nix")
	} else if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".cache", "glistix-nix")
	}
	return Config{
		OutRoot:     filepath.Join("build", "nix"),
		LineWidth:   80,
		PreludePath: "gleam.nix",
		CacheDir:    cacheDir,
		Jobs:        runtime.NumCPU(),
	}
}

// Load reads glistix-nix.toml from dir, falling back to defaults for any
// field the file leaves unset, or for every field when the file itself
// does not exist.
func Load(dir string) (Config, error) {
	cfg := defaults()
	path := filepath.Join(dir, fileName)
	var f file
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if meta.IsDefined("out_root") {
		cfg.OutRoot = f.OutRoot
	}
	if meta.IsDefined("line_width") {
		cfg.LineWidth = f.LineWidth
	}
	if meta.IsDefined("prelude_path") {
		cfg.PreludePath = f.PreludePath
	}
	if meta.IsDefined("cache_dir") {
		cfg.CacheDir = f.CacheDir
	}
	if meta.IsDefined("jobs") {
		cfg.Jobs = f.Jobs
	}
	if cfg.Jobs <= 0 {
		return Config{}, fmt.Errorf("config: %s: jobs must be positive, got %d", path, cfg.Jobs)
	}
	if cfg.LineWidth <= 0 {
		return Config{}, fmt.Errorf("config: %s: line_width must be positive, got %d", path, cfg.LineWidth)
	}
	return cfg, nil
}
