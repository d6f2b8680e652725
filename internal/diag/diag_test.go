package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorfBuildsMessage(t *testing.T) {
	d := Errorf("example/greet", CodeUnknownExprKind, "unknown kind %q", "mystery")
	if d.Severity != SeverityError {
		t.Fatalf("Severity = %v, want SeverityError", d.Severity)
	}
	if !strings.Contains(d.Error(), "example/greet") {
		t.Errorf("Error() missing module: %q", d.Error())
	}
	if !strings.Contains(d.Error(), "mystery") {
		t.Errorf("Error() missing formatted message: %q", d.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	d := Wrap("mod", CodeReadFailure, cause)
	if !errors.Is(d, cause) {
		t.Fatalf("errors.Is should find wrapped cause")
	}
}

func TestWithLocationCopiesNotMutates(t *testing.T) {
	base := Errorf("mod", CodeMalformedIR, "bad")
	located := base.WithLocation("double", 12)
	if base.Function != "" || base.Line != 0 {
		t.Fatalf("WithLocation mutated the original: %+v", base)
	}
	if located.Function != "double" || located.Line != 12 {
		t.Fatalf("unexpected located diagnostic: %+v", located)
	}
}

func TestBagHasErrorsOnlyOnErrorSeverity(t *testing.T) {
	var b Bag
	if b.HasErrors() {
		t.Fatal("empty bag should not have errors")
	}
	b.Add(&Diagnostic{Severity: SeverityWarning, Code: CodeNonExhaustiveMatch, Message: "heads up"})
	if b.HasErrors() {
		t.Fatal("warning-only bag should not have errors")
	}
	b.Add(&Diagnostic{Severity: SeverityError, Code: CodeUnknownDefKind, Message: "bad def"})
	if !b.HasErrors() {
		t.Fatal("bag with an error entry should report HasErrors")
	}
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityError.String() != "error" {
		t.Errorf("SeverityError.String() = %q", SeverityError.String())
	}
	if SeverityWarning.String() != "warning" {
		t.Errorf("SeverityWarning.String() = %q", SeverityWarning.String())
	}
}
