package prelude

import (
	"strings"
	"testing"
)

func TestSourceNonEmpty(t *testing.T) {
	src := Source()
	if src == "" {
		t.Fatal("Source() returned empty string")
	}
	if !strings.HasPrefix(strings.TrimSpace(strings.SplitN(src, "\n", 2)[0]), "#") {
		t.Fatalf("expected prelude source to start with a comment line, got %q", src[:min(40, len(src))])
	}
}

func TestContractNamesAppearInSource(t *testing.T) {
	src := Source()
	for _, h := range Contract {
		needle := h.Name + " ="
		if !strings.Contains(src, needle) {
			t.Errorf("contract helper %q not defined in prelude source", h.Name)
		}
	}
}

func TestContractExportedInFinalAttrSet(t *testing.T) {
	src := Source()
	tail := src[strings.LastIndex(src, "\nin\n"):]
	for _, h := range Contract {
		if !strings.Contains(tail, h.Name) {
			t.Errorf("contract helper %q missing from final inherit block", h.Name)
		}
	}
}

func TestNamesMatchesContract(t *testing.T) {
	names := Names()
	if len(names) != len(Contract) {
		t.Fatalf("Names() has %d entries, Contract has %d", len(names), len(Contract))
	}
	for _, h := range Contract {
		if !names[h.Name] {
			t.Errorf("Names() missing contract entry %q", h.Name)
		}
	}
}

func TestNoDuplicateContractNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, h := range Contract {
		if seen[h.Name] {
			t.Errorf("duplicate contract entry %q", h.Name)
		}
		seen[h.Name] = true
	}
}
