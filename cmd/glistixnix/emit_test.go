package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const minimalIR = `{
	"name": "greet",
	"imports": [],
	"definitions": [
		{
			"kind": "constant",
			"name": "answer",
			"value": {"kind": "int", "int_text": "42"}
		}
	]
}`

func TestRunEmitWritesNixSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greet.gleamir.json")
	if err := os.WriteFile(path, []byte(minimalIR), 0o644); err != nil {
		t.Fatalf("write IR: %v", err)
	}

	var out, errBuf bytes.Buffer
	emitCmd.SetOut(&out)
	emitCmd.SetErr(&errBuf)
	emitLineWidth = 80

	if err := runEmit(emitCmd, []string{path}); err != nil {
		t.Fatalf("runEmit: %v (stderr: %s)", err, errBuf.String())
	}
	if !bytes.Contains(out.Bytes(), []byte("answer")) {
		t.Fatalf("expected emitted source to mention answer, got %s", out.String())
	}
}

func TestRunEmitFailsOnMissingFile(t *testing.T) {
	if err := runEmit(emitCmd, []string{filepath.Join(t.TempDir(), "missing.gleamir.json")}); err == nil {
		t.Fatal("expected error for missing IR file")
	}
}

func TestRunEmitFailsOnMalformedIR(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.gleamir.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write IR: %v", err)
	}
	if err := runEmit(emitCmd, []string{path}); err == nil {
		t.Fatal("expected error for malformed IR")
	}
}
