package codegen

import "glistix-nix/internal/naming"

// newScope returns a fresh top-level naming scope for one function or
// constant body.
func newScope() *naming.Scope {
	return naming.NewScope()
}
