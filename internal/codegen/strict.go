package codegen

import "fmt"

// Gleam is a strict language; Nix is not. A value kept only for its side
// effect (a discarded statement in a block, a `let assert` check) would
// never be evaluated by Nix at all, so the emitter binds it and forces it
// explicitly before the block's value (see wrapWithForces). Other
// evaluation order, such as when call arguments are evaluated, is left to
// Nix's lazy evaluation.

// wrapStrictCall renders a plain Nix application `callee a b c`. Argument
// evaluation order is left to whatever the callee's body demands, same as
// any other Nix call; the emitter only injects an explicit force where a
// value's side effect could otherwise go unobserved entirely (a discarded
// block statement, a `let assert` check — see wrapWithForces), not at every
// call site.
func (e *emitter) wrapStrictCall(callee string, args []string) string {
	call := parenthesizeIfNeeded(callee)
	for _, a := range args {
		call += " " + wrapArg(a)
	}
	if len(args) == 0 {
		call += " null"
	}
	return call
}

// forceDiscardBinding renders a statement evaluated only for its side
// effect (a bare expression that is not the last statement of its block) as
// a plain let-binding. Binding it is not enough on its own to force it, since
// Nix never evaluates a binding nothing downstream references; the caller is
// responsible for threading the bound name into wrapWithForces so the block's
// final value actually depends on it.
func forceDiscardBinding(name, value string) string {
	return fmt.Sprintf("%s = %s;", name, value)
}

// wrapWithForces threads a block's discard- and assert-slot names through
// prelude.seqAll ahead of body, so every one of them is forced, in source
// order, before the block produces its value. names is empty for a block
// with no discarded statements or assertions, in which case body passes
// through untouched.
func (e *emitter) wrapWithForces(names []string, body string) string {
	if len(names) == 0 {
		return body
	}
	seqAll := e.usePrelude("seqAll")
	list := "[ "
	for _, n := range names {
		list += n + " "
	}
	list += "]"
	return fmt.Sprintf("(%s %s %s)", seqAll, list, body)
}
