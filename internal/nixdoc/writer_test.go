package nixdoc

import "testing"

func TestWriteStringAppliesIndent(t *testing.T) {
	w := NewWriter(Options{})
	w.IndentPush()
	w.WriteString("x = 1;")
	w.Newline()
	w.WriteString("y = 2;")
	want := "  x = 1;\n  y = 2;"
	if got := w.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSpaceSkipsWhenAlreadyWhitespace(t *testing.T) {
	w := NewWriter(Options{})
	w.WriteString("a")
	w.Space()
	w.Space()
	w.WriteString("b")
	if got := w.String(); got != "a b" {
		t.Fatalf("got %q, want %q", got, "a b")
	}
}

func TestNewlineIsIdempotent(t *testing.T) {
	w := NewWriter(Options{})
	w.WriteString("a")
	w.Newline()
	w.Newline()
	w.WriteString("b")
	if got := w.String(); got != "a\nb" {
		t.Fatalf("got %q, want %q", got, "a\nb")
	}
}

func TestBlankLineSeparatesBindings(t *testing.T) {
	w := NewWriter(Options{})
	w.WriteString("a = 1;")
	w.BlankLine()
	w.WriteString("b = 2;")
	want := "a = 1;\n\nb = 2;"
	if got := w.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIndentPushPopNesting(t *testing.T) {
	w := NewWriter(Options{IndentWidth: 2})
	w.WriteString("let")
	w.Newline()
	w.IndentPush()
	w.WriteString("a = 1;")
	w.Newline()
	w.IndentPush()
	w.WriteString("b = 2;")
	w.IndentPop()
	w.Newline()
	w.WriteString("c = 3;")
	w.IndentPop()
	want := "let\n  a = 1;\n    b = 2;\n  c = 3;"
	if got := w.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestJoinWrappedStaysOnOneLineWhenShort(t *testing.T) {
	w := NewWriter(Options{LineWidth: 80})
	w.JoinWrapped([]string{"a", "b", "c"}, " ")
	if got := w.String(); got != "a b c" {
		t.Fatalf("got %q, want %q", got, "a b c")
	}
}

func TestJoinWrappedBreaksAtLineWidth(t *testing.T) {
	w := NewWriter(Options{IndentWidth: 2, LineWidth: 10})
	w.WriteString("inherit ")
	w.JoinWrapped([]string{"alpha", "bravo", "charlie", "delta"}, " ")
	got := w.String()
	if got == "inherit alpha bravo charlie delta" {
		t.Fatalf("expected wrapping to occur, got single line: %q", got)
	}
	for _, want := range []string{"alpha", "bravo", "charlie", "delta"} {
		if !contains(got, want) {
			t.Errorf("output missing token %q: %q", want, got)
		}
	}
}

func TestLineWidthReportsConfiguredValue(t *testing.T) {
	w := NewWriter(Options{LineWidth: 40})
	if got := w.LineWidth(); got != 40 {
		t.Fatalf("LineWidth() = %d, want 40", got)
	}
	def := NewWriter(Options{})
	if got := def.LineWidth(); got != 80 {
		t.Fatalf("default LineWidth() = %d, want 80", got)
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
