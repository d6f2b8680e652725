// Package prelude embeds the fixed Nix runtime library that every emitted
// module inherits helpers from, and describes its contract so the emitter
// can validate what it references.
package prelude

import (
	_ "embed"
)

//go:embed gleam.nix
var source string

// Source returns the full text of the runtime prelude, ready to be written
// to the configured prelude path once per output root.
func Source() string {
	return source
}

// Helper describes one name the prelude exports at its top level.
type Helper struct {
	Name  string
	Arity int // number of curried arguments; 0 for a plain value binding
}

// Contract lists every name the prelude exports, in the order the prelude
// itself inherits them at its closing attribute set. The emitter uses this
// to build the module-top `inherit (prelude) ...;` line from only the
// helpers a module actually calls, and tests use it to check that no
// emitted reference names a helper outside this fixed set.
var Contract = []Helper{
	{Name: "Ok", Arity: 1},
	{Name: "Error", Arity: 1},
	{Name: "isOk", Arity: 1},
	{Name: "UtfCodepoint", Arity: 1},
	{Name: "BitArray", Arity: 1},
	{Name: "remainderInt", Arity: 2},
	{Name: "divideInt", Arity: 2},
	{Name: "divideFloat", Arity: 2},
	{Name: "toList", Arity: 1},
	{Name: "prepend", Arity: 2},
	{Name: "listIsEmpty", Arity: 1},
	{Name: "listToArray", Arity: 1},
	{Name: "listHasAtLeastLength", Arity: 2},
	{Name: "listHasLength", Arity: 2},
	{Name: "strHasPrefix", Arity: 2},
	{Name: "parseNumber", Arity: 1},
	{Name: "parseEscape", Arity: 1},
	{Name: "seqAll", Arity: 2},
	{Name: "stringBits", Arity: 1},
	{Name: "codepointBits", Arity: 1},
	{Name: "sizedInt", Arity: 2},
	{Name: "toBitArray", Arity: 1},
	{Name: "bitArrayByteSize", Arity: 1},
	{Name: "byteAt", Arity: 2},
	{Name: "binaryFromBitSlice", Arity: 3},
	{Name: "intFromBitSlice", Arity: 3},
	{Name: "makeError", Arity: 6},
}

// Names returns the fixed set of exported helper names, for membership
// checks against names an emitted module wants to inherit.
func Names() map[string]bool {
	names := make(map[string]bool, len(Contract))
	for _, h := range Contract {
		names[h.Name] = true
	}
	return names
}
