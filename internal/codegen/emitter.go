// Package codegen lowers a resolved gleamir.Module into Nix source text: the
// module emitter (this file), the expression lowerer (expr.go), the
// pattern-match compiler (pattern.go), and the strictness-injection pass
// that decides where generated code must force a lazy thunk (strict.go).
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"glistix-nix/internal/diag"
	"glistix-nix/internal/gleamir"
	"glistix-nix/internal/naming"
	"glistix-nix/internal/nixdoc"
	"glistix-nix/internal/prelude"
)

// Options configures one module's emission.
type Options struct {
	Writer nixdoc.Options
	// PreludeImport is the Nix expression the emitted module uses to reach
	// the runtime prelude, e.g. `import ./gleam.nix` relative to the
	// module's own output path.
	PreludeImport string
}

func (o Options) withDefaults() Options {
	if o.PreludeImport == "" {
		o.PreludeImport = "import ./gleam.nix"
	}
	return o
}

// emitter carries the per-module state threaded through every lowering
// function: the writer accumulating output, the set of prelude helpers
// referenced so far, and the diagnostics raised along the way.
type emitter struct {
	opt      Options
	w        *nixdoc.Writer
	module   *gleamir.Module
	preludeUsed map[string]bool
	diags    diag.Bag
	fn       string // name of the top-level definition currently being lowered
}

// EmitModule lowers m into a complete Nix source file. A non-nil error is
// only returned for diagnostics of SeverityError; warnings are available
// through the returned Bag regardless of the error result, so a caller that
// wants to report warnings on a successful build still can.
func EmitModule(m *gleamir.Module, opt Options) (string, *diag.Bag, error) {
	opt = opt.withDefaults()
	e := &emitter{
		opt:         opt,
		w:           nixdoc.NewWriter(opt.Writer),
		module:      m,
		preludeUsed: make(map[string]bool),
	}
	e.emit()
	if e.diags.HasErrors() {
		return "", &e.diags, fmt.Errorf("codegen: module %s: %d error(s)", m.Name, e.diags.Len())
	}
	return e.w.String(), &e.diags, nil
}

func (e *emitter) emit() {
	e.w.WriteString(fmt.Sprintf("# generated from %s, do not edit by hand", e.module.Name))
	e.w.Newline()
	e.w.WriteString("let")
	e.w.Newline()
	e.w.IndentPush()

	e.emitImports()

	names := make([]string, 0, len(e.module.Defs))
	for _, def := range e.module.Defs {
		defNames := e.emitDefinition(def)
		if def.Public {
			names = append(names, defNames...)
		}
	}

	// Written last, now that every definition has had a chance to call
	// usePrelude: Nix let-bindings may reference each other in any order,
	// so it makes no difference that this inherit comes after everything
	// that uses it.
	e.emitPreludeInherit()

	e.w.IndentPop()
	e.w.WriteString("in")
	e.w.Newline()
	e.emitExports(names)
}

// emitPreludeInherit binds exactly the prelude helpers this module actually
// calls, via `inherit (import <prelude>) name1 name2;`, so generated code
// reaches the prelude the same way it reaches an imported Gleam module
// rather than through a bare `prelude.name` qualifier.
func (e *emitter) emitPreludeInherit() {
	if len(e.preludeUsed) == 0 {
		return
	}
	used := make([]string, 0, len(e.preludeUsed))
	for n := range e.preludeUsed {
		used = append(used, n)
	}
	sort.Strings(used)
	e.w.WriteString(fmt.Sprintf("inherit (%s) ", e.opt.PreludeImport))
	e.w.JoinWrapped(used, " ")
	e.w.WriteString(";")
	e.w.Newline()
}

// emitImports binds each imported module to a local name and threads
// through its unqualified re-exports, mirroring how the prelude itself is
// bound: `let mod = import ./other.nix; inherit (mod) name;`.
func (e *emitter) emitImports() {
	for _, imp := range e.module.Imports {
		if imp.Discarded && len(imp.Unqualified) == 0 {
			continue
		}
		alias := imp.Alias
		if alias == "" {
			alias = lastPathSegment(imp.Path)
		}
		alias = naming.EscapeIdentifier(alias)
		e.w.WriteString(fmt.Sprintf("%s = import %s;", alias, importTargetPath(imp.Path)))
		e.w.Newline()
		if len(imp.Unqualified) > 0 {
			names := make([]string, 0, len(imp.Unqualified))
			for _, u := range imp.Unqualified {
				local := u.Rename
				if local == "" {
					local = u.Name
				}
				if local == u.Name {
					names = append(names, naming.EscapeIdentifier(u.Name))
				} else {
					e.w.WriteString(fmt.Sprintf("%s = %s.%s;", naming.EscapeIdentifier(local), alias, u.Name))
					e.w.Newline()
				}
			}
			if len(names) > 0 {
				e.w.WriteString(fmt.Sprintf("inherit (%s) ", alias))
				e.w.JoinWrapped(names, " ")
				e.w.WriteString(";")
				e.w.Newline()
			}
		}
	}
}

func importTargetPath(modPath string) string {
	return "./" + strings.ReplaceAll(modPath, "/", "__") + ".nix"
}

func lastPathSegment(p string) string {
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}

// emitDefinition lowers one top-level item and returns the name(s) it
// binds, or nil for definitions that produce no runtime binding (type
// aliases). The caller decides whether these names are exported, based on
// def.Public; every definition is bound in the let-block regardless, since
// private bindings still need to exist for other definitions in the same
// module to call.
func (e *emitter) emitDefinition(def gleamir.Definition) []string {
	switch def.Kind {
	case gleamir.DefTypeAlias:
		return nil
	case gleamir.DefTypeDefinition:
		return e.emitTypeDefinition(def.TypeDef)
	case gleamir.DefConstant:
		return nameOrNil(e.emitConstant(def.Const))
	case gleamir.DefFunction:
		return nameOrNil(e.emitFunction(def.Func))
	case gleamir.DefExternalFunction:
		return nameOrNil(e.emitExternalFunction(def.External))
	default:
		e.diags.Add(diag.Errorf(e.module.Name, diag.CodeUnknownDefKind, "unknown definition kind %d", def.Kind).WithLocation("", def.Line))
		return nil
	}
}

func nameOrNil(name string) []string {
	if name == "" {
		return nil
	}
	return []string{name}
}

// emitTypeDefinition binds one constructor function (or singleton value)
// per variant, returning every variant's bound name. The constructed
// record's __gleamTag field, not any Nix-level type, is what pattern
// matching and equality key off of.
func (e *emitter) emitTypeDefinition(td *gleamir.TypeDefinition) []string {
	if td == nil {
		return nil
	}
	names := make([]string, 0, len(td.Variants))
	for _, v := range td.Variants {
		name := naming.EscapeIdentifier(v.Tag)
		names = append(names, name)
		if len(v.Fields) == 0 {
			e.w.WriteString(fmt.Sprintf("%s = { __gleamTag = %q; };", name, v.Tag))
			e.w.BlankLine()
			continue
		}
		params := make([]string, len(v.Fields))
		keys := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			key := fieldKey(f.Label, i)
			keys[i] = key
			params[i] = naming.EscapeIdentifier(key)
		}
		e.w.WriteString(name + " = ")
		for _, p := range params {
			e.w.WriteString(p + ": ")
		}
		e.w.WriteString("{ __gleamTag = " + fmt.Sprintf("%q", v.Tag) + "; ")
		assigns := make([]string, len(keys))
		for i, key := range keys {
			assigns[i] = fmt.Sprintf("%s = %s;", naming.QuoteKeyIfNeeded(key), params[i])
		}
		e.w.JoinWrapped(assigns, " ")
		e.w.WriteString(" };")
		e.w.BlankLine()
	}
	return names
}


func (e *emitter) emitConstant(c *gleamir.Constant) string {
	if c == nil {
		return ""
	}
	name := naming.EscapeIdentifier(c.Name)
	e.fn = c.Name
	val, err := e.lowerExpression(newScope(), c.Value)
	if err != nil {
		e.diags.Add(err)
		return name
	}
	e.w.WriteString(fmt.Sprintf("%s = %s;", name, val))
	e.w.BlankLine()
	return name
}

func (e *emitter) emitFunction(fn *gleamir.Function) string {
	if fn == nil {
		return ""
	}
	name := naming.EscapeIdentifier(fn.Name)
	e.fn = fn.Name
	scope := newScope()
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = scope.Bind(naming.EscapeIdentifier(p))
	}
	body, err := e.lowerBlock(scope, fn.Body)
	if err != nil {
		e.diags.Add(err)
		return name
	}
	e.w.WriteString(name + " = ")
	for _, p := range params {
		e.w.WriteString(p + ": ")
	}
	if len(params) == 0 {
		// Zero-argument Gleam functions still become Nix functions taking
		// an ignored unit argument, so calling them stays uniform with
		// arity-bearing functions at every call site.
		e.w.WriteString("_unit: ")
	}
	e.w.WriteString(body + ";")
	e.w.BlankLine()
	return name
}

func (e *emitter) emitExternalFunction(ext *gleamir.ExternalFunction) string {
	if ext == nil {
		return ""
	}
	name := naming.EscapeIdentifier(ext.Name)
	if ext.Target != "nix" {
		e.diags.Add(diag.Errorf(e.module.Name, diag.CodeUnsupportedExternalTarget,
			"function %q is external to target %q, which this backend cannot call", ext.Name, ext.Target))
		return name
	}
	extName := ext.ExternalName
	if extName == "" {
		extName = ext.Name
	}
	e.w.WriteString(fmt.Sprintf("%s = (import %s).%s;", name, importTargetPath(ext.Path), extName))
	e.w.BlankLine()
	return name
}

// emitExports writes the module's public bindings as an `inherit` set, in
// the same order they were declared. A module with no public definitions
// still needs a well-formed attribute set, so the inherit keyword itself is
// only written when there is something to inherit.
func (e *emitter) emitExports(names []string) {
	e.w.IndentPush()
	if len(names) == 0 {
		e.w.WriteString("{ }")
		e.w.IndentPop()
		return
	}
	e.w.WriteString("{ inherit ")
	e.w.JoinWrapped(names, " ")
	e.w.WriteString("; }")
	e.w.IndentPop()
}

// usePrelude records that the emitted module calls a prelude helper,
// validating it against the fixed contract so a typo in this package
// surfaces as a diagnostic instead of broken output, and returns the bare
// name the generated code should reference (bound via emitPreludeInherit).
func (e *emitter) usePrelude(name string) string {
	if !prelude.Names()[name] {
		e.diags.Add(diag.Errorf(e.module.Name, diag.CodeMalformedIR, "internal: unknown prelude helper %q", name).WithLocation(e.fn, 0))
	}
	e.preludeUsed[name] = true
	return name
}
