package main

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestRenderVersionPrettyDefault(t *testing.T) {
	var buf bytes.Buffer
	renderVersionPretty(&buf, versionInfo{Version: "0.1.0"}, versionOptions{})
	if !bytes.Contains(buf.Bytes(), []byte("glistixnix 0.1.0")) {
		t.Fatalf("unexpected pretty output: %s", buf.String())
	}
}

func TestRenderVersionPrettyIncludesHashAndDate(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "0.1.0", GitCommit: "abc123", BuildDate: "2026-08-06"}
	renderVersionPretty(&buf, info, versionOptions{showHash: true, showDate: true})
	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("commit: abc123")) {
		t.Errorf("missing commit line: %s", out)
	}
	if !bytes.Contains([]byte(out), []byte("built:  2026-08-06")) {
		t.Errorf("missing built line: %s", out)
	}
}

func TestRenderVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "0.1.0", GitCommit: "abc123"}
	if err := renderVersionJSON(&buf, info, versionOptions{showHash: true}); err != nil {
		t.Fatalf("renderVersionJSON: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Tool != "glistixnix" || payload.GitCommit != "abc123" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestValueOrUnknown(t *testing.T) {
	if got := valueOrUnknown(""); got != "unknown" {
		t.Errorf("valueOrUnknown(\"\") = %q, want unknown", got)
	}
	if got := valueOrUnknown("x"); got != "x" {
		t.Errorf("valueOrUnknown(%q) = %q, want x", "x", got)
	}
}
