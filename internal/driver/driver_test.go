package driver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverModulesFindsIRFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.gleamir.json"), "{}")
	writeFile(t, filepath.Join(dir, "sub", "b.gleamir.json"), "{}")
	writeFile(t, filepath.Join(dir, "ignore.txt"), "nope")

	found, err := discoverModules(dir)
	if err != nil {
		t.Fatalf("discoverModules: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 IR files, got %d: %v", len(found), found)
	}
}

func TestOutputPathForReplacesSlashes(t *testing.T) {
	got := outputPathFor("build/nix", "example/greet")
	want := filepath.Join("build/nix", "example__greet.nix")
	if got != want {
		t.Fatalf("outputPathFor = %q, want %q", got, want)
	}
}

func TestCachePutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenCache(dir)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	key := hashBytes([]byte("input"))
	if err := c.Put(key, []byte("output")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got) != "output" {
		t.Fatalf("Get returned %q, want output", got)
	}
}

func TestCacheGetMissForUnknownKey(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenCache(dir)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	_, ok, err := c.Get(hashBytes([]byte("never written")))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected cache miss")
	}
}

func TestNilCacheIsANoOp(t *testing.T) {
	var c *Cache
	if err := c.Put(hashBytes([]byte("x")), []byte("y")); err != nil {
		t.Fatalf("Put on nil cache should be a no-op: %v", err)
	}
	_, ok, err := c.Get(hashBytes([]byte("x")))
	if err != nil || ok {
		t.Fatalf("Get on nil cache should be a clean miss: ok=%v err=%v", ok, err)
	}
}

func TestMaterializePreludeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	first, err := materializePrelude(dir, "gleam.nix")
	if err != nil {
		t.Fatalf("materializePrelude: %v", err)
	}
	info1, err := os.Stat(first)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	second, err := materializePrelude(dir, "gleam.nix")
	if err != nil {
		t.Fatalf("materializePrelude (second): %v", err)
	}
	if first != second {
		t.Fatalf("prelude path changed between runs: %q vs %q", first, second)
	}
	info2, err := os.Stat(second)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info1.ModTime() != info2.ModTime() {
		t.Fatalf("expected untouched file on unchanged content, mtimes differ")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
