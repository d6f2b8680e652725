// Package naming implements the escaping and shadowing discipline that keeps
// generated Nix source valid when Gleam identifiers collide with Nix
// reserved words, or would otherwise collide with a binding already present
// in the enclosing let-block.
package naming

import (
	"strconv"

	"fortio.org/safecast"
)

// reserved is the set of identifiers that cannot be used as a bare Nix
// binding name: the language's own keywords, plus names that would shadow
// builtins the generated code and prelude both depend on.
var reserved = map[string]bool{
	"if": true, "then": true, "else": true, "assert": true, "with": true,
	"let": true, "in": true, "rec": true, "inherit": true, "or": true,
	"import": true, "builtins": true,
}

// EscapeIdentifier maps a Gleam identifier to a valid, non-reserved Nix
// binding name. It is idempotent: escaping an already-escaped name a second
// time is a no-op, since the reserved set never contains a name ending in
// a quote.
func EscapeIdentifier(name string) string {
	if reserved[name] {
		return name + "'"
	}
	return name
}

// QuoteKeyIfNeeded renders name as a Nix attribute-set key, quoting it when
// it collides with a reserved word. Unlike EscapeIdentifier, colliding keys
// are quoted rather than suffixed: `"inherit" = …` not `inherit' = …`,
// because the key is never referenced as a bare identifier.
func QuoteKeyIfNeeded(name string) string {
	if reserved[name] {
		return strconv.Quote(name)
	}
	return name
}

// FieldAccess renders `base.name`, switching to the quoted-key form
// `base."name"` when name collides with a reserved word.
func FieldAccess(base, name string) string {
	if reserved[name] {
		return base + "." + strconv.Quote(name)
	}
	return base + "." + name
}

// Scope tracks the names already bound in one lexical let-block, so that
// Fresh can find a name that does not shadow any of them. A Scope is a flat
// set: nested let-blocks get their own Scope seeded from the parent's
// current contents (see Fork).
type Scope struct {
	used map[string]bool
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{used: make(map[string]bool)}
}

// Fork returns a new Scope that starts out containing every name already
// bound in s, matching the lexical rule that a name leaves scope only at the
// end of its enclosing let-block, never before a nested block sees it.
func (s *Scope) Fork() *Scope {
	child := NewScope()
	for k := range s.used {
		child.used[k] = true
	}
	return child
}

// Bind records that name is now bound in this scope, returning name itself
// when it is not already in use, or a freshened `name'k` when a prior
// binding (a shadowed Gleam variable, most commonly) already claims it.
// Nix let-blocks cannot rebind the same attribute twice, so every call site
// must use the returned name, not the one passed in, at every later
// reference to this binding.
func (s *Scope) Bind(name string) string {
	return s.Fresh(name)
}

// Fresh returns a name usable as a new binding in s: base itself if unused,
// otherwise base + "'" + k for the smallest k >= 1 that is not already
// bound. The chosen name is recorded as bound before it is returned.
func (s *Scope) Fresh(base string) string {
	if !s.used[base] {
		s.used[base] = true
		return base
	}
	for k := 1; ; k++ {
		kStr, err := safecast.Conv[uint32](k)
		if err != nil {
			// k has overflowed uint32; scopes never approach this size in
			// practice, but fail loudly instead of looping forever.
			panic("naming: exhausted fresh-name counter")
		}
		candidate := base + "'" + strconv.FormatUint(uint64(kStr), 10)
		if !s.used[candidate] {
			s.used[candidate] = true
			return candidate
		}
	}
}

// Temporary base names used by the codegen package. Each is freshened
// per-use through Scope.Fresh, so multiple temporaries in the same
// let-block never collide.
const (
	TempScrutinee = "_pat'"
	TempAssert    = "_assert'"
	TempDiscard   = "_'"
)
