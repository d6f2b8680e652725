package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LineWidth != 80 {
		t.Errorf("LineWidth = %d, want 80", cfg.LineWidth)
	}
	if cfg.PreludePath != "gleam.nix" {
		t.Errorf("PreludePath = %q, want gleam.nix", cfg.PreludePath)
	}
	if cfg.Jobs <= 0 {
		t.Errorf("Jobs = %d, want positive default", cfg.Jobs)
	}
}

func TestLoadPartialOverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	writeToml(t, dir, "line_width = 100\n")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LineWidth != 100 {
		t.Errorf("LineWidth = %d, want 100", cfg.LineWidth)
	}
	if cfg.PreludePath != "gleam.nix" {
		t.Errorf("PreludePath should keep default, got %q", cfg.PreludePath)
	}
}

func TestLoadRejectsNonPositiveJobs(t *testing.T) {
	dir := t.TempDir()
	writeToml(t, dir, "jobs = 0\n")
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for jobs = 0")
	}
}

func TestLoadRejectsNonPositiveLineWidth(t *testing.T) {
	dir := t.TempDir()
	writeToml(t, dir, "line_width = -1\n")
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for negative line_width")
	}
}

func TestLoadAllFieldsOverridden(t *testing.T) {
	dir := t.TempDir()
	writeToml(t, dir, `
out_root = "dist"
line_width = 120
prelude_path = "runtime.nix"
cache_dir = "/tmp/glistix-cache"
jobs = 4
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutRoot != "dist" || cfg.LineWidth != 120 || cfg.PreludePath != "runtime.nix" || cfg.CacheDir != "/tmp/glistix-cache" || cfg.Jobs != 4 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func writeToml(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "glistix-nix.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
