package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"glistix-nix/internal/diag"
	"glistix-nix/internal/gleamir"
	"glistix-nix/internal/naming"
)

// nameBinding is one variable a pattern match extracts, together with the
// Nix expression that reads it out of the scrutinee once the pattern's
// condition has been established to hold.
type nameBinding struct {
	name  string
	value string
}

func fieldKey(label string, index int) string {
	if label == "" {
		return fmt.Sprintf("_%d", index)
	}
	return label
}

// compilePatternMatch lowers one pattern against a scrutinee expression
// (already bound to a name, never re-evaluated) into a boolean Nix
// condition and the bindings the pattern introduces when that condition
// holds. This is a direct structural translation rather than a compiled
// decision tree: sibling patterns are not merged across clauses, since the
// target is Nix source text read by humans, not a bytecode matcher, and
// modules here are small enough that the duplication this costs never
// shows up as measurably slower generated code.
func (e *emitter) compilePatternMatch(scope *naming.Scope, pat gleamir.Pattern, subject string) (string, []nameBinding, *diag.Diagnostic) {
	switch pat.Kind {
	case gleamir.PatWildcard:
		return "true", nil, nil
	case gleamir.PatVar:
		name := scope.Bind(naming.EscapeIdentifier(pat.Name))
		return "true", []nameBinding{{name: name, value: subject}}, nil
	case gleamir.PatIntLiteral:
		helper := e.usePrelude("parseNumber")
		return fmt.Sprintf("(%s == (%s %q))", subject, helper, pat.IntText), nil, nil
	case gleamir.PatFloatLiteral:
		return fmt.Sprintf("(%s == %s)", subject, formatFloatLiteral(pat.FloatText)), nil, nil
	case gleamir.PatStringLiteral:
		return fmt.Sprintf("(%s == %s)", subject, strconv.Quote(pat.StringText)), nil, nil
	case gleamir.PatStringPrefix:
		return e.compileStringPrefixPattern(scope, pat, subject)
	case gleamir.PatTuple:
		return e.compileTuplePattern(scope, pat, subject)
	case gleamir.PatList:
		return e.compileListPattern(scope, pat, subject)
	case gleamir.PatVariant:
		return e.compileVariantPattern(scope, pat, subject)
	case gleamir.PatBitArray:
		return e.compileBitArrayPattern(scope, pat, subject)
	case gleamir.PatAs:
		return e.compileAsPattern(scope, pat, subject)
	case gleamir.PatAlternative:
		return e.compileAlternativePattern(scope, pat, subject)
	default:
		return "", nil, diag.Errorf(e.module.Name, diag.CodeUnknownPatKind, "unknown pattern kind %d", pat.Kind).WithLocation(e.fn, pat.Line)
	}
}

// compileBindings is compilePatternMatch specialised for the single-pattern
// case (let/let-assert statements): returns the pattern's binding
// statements ready to splice into a let-block, plus a boolean expression
// that is true when the pattern actually matched.
func (e *emitter) compileBindings(scope *naming.Scope, pat gleamir.Pattern, subject string) ([]string, string, *diag.Diagnostic) {
	cond, bindings, derr := e.compilePatternMatch(scope, pat, subject)
	if derr != nil {
		return nil, "", derr
	}
	out := make([]string, len(bindings))
	for i, b := range bindings {
		out[i] = fmt.Sprintf("%s = %s;", b.name, b.value)
	}
	return out, cond, nil
}

func (e *emitter) compileStringPrefixPattern(scope *naming.Scope, pat gleamir.Pattern, subject string) (string, []nameBinding, *diag.Diagnostic) {
	hasPrefix := e.usePrelude("strHasPrefix")
	cond := fmt.Sprintf("(%s %s %s)", hasPrefix, strconv.Quote(pat.Prefix), subject)
	var bindings []nameBinding
	if pat.MatchedName != "" {
		bindings = append(bindings, nameBinding{name: scope.Bind(naming.EscapeIdentifier(pat.MatchedName)), value: formatStringLiteral(pat.Prefix)})
	}
	if pat.RestName != "" {
		rest := fmt.Sprintf("(builtins.substring %d (builtins.stringLength %s) %s)", len(pat.Prefix), subject, subject)
		bindings = append(bindings, nameBinding{name: scope.Bind(naming.EscapeIdentifier(pat.RestName)), value: rest})
	}
	return cond, bindings, nil
}

func (e *emitter) compileTuplePattern(scope *naming.Scope, pat gleamir.Pattern, subject string) (string, []nameBinding, *diag.Diagnostic) {
	conds := []string{"true"}
	var bindings []nameBinding
	for i, el := range pat.Elements {
		sub := fmt.Sprintf("%s._%d", subject, i)
		c, bs, derr := e.compilePatternMatch(scope, el, sub)
		if derr != nil {
			return "", nil, derr
		}
		conds = append(conds, c)
		bindings = append(bindings, bs...)
	}
	return joinAnd(conds), bindings, nil
}

func (e *emitter) compileListPattern(scope *naming.Scope, pat gleamir.Pattern, subject string) (string, []nameBinding, *diag.Diagnostic) {
	isEmpty := e.usePrelude("listIsEmpty")
	conds := []string{"true"}
	var bindings []nameBinding
	cur := subject
	for _, el := range pat.Elements {
		conds = append(conds, fmt.Sprintf("!(%s %s)", isEmpty, cur))
		c, bs, derr := e.compilePatternMatch(scope, el, cur+".head")
		if derr != nil {
			return "", nil, derr
		}
		conds = append(conds, c)
		bindings = append(bindings, bs...)
		cur = cur + ".tail"
	}
	if pat.HasTail {
		if pat.TailName != "" {
			bindings = append(bindings, nameBinding{name: scope.Bind(naming.EscapeIdentifier(pat.TailName)), value: cur})
		}
	} else {
		conds = append(conds, fmt.Sprintf("(%s %s)", isEmpty, cur))
	}
	return joinAnd(conds), bindings, nil
}

func (e *emitter) compileVariantPattern(scope *naming.Scope, pat gleamir.Pattern, subject string) (string, []nameBinding, *diag.Diagnostic) {
	conds := []string{fmt.Sprintf("(%s.__gleamTag == %q)", subject, pat.Tag)}
	var bindings []nameBinding
	for i, f := range pat.Fields {
		key := fieldKey(f.Label, i)
		sub := naming.FieldAccess(subject, key)
		c, bs, derr := e.compilePatternMatch(scope, f.Pattern, sub)
		if derr != nil {
			return "", nil, derr
		}
		conds = append(conds, c)
		bindings = append(bindings, bs...)
	}
	return joinAnd(conds), bindings, nil
}

func (e *emitter) compileBitArrayPattern(scope *naming.Scope, pat gleamir.Pattern, subject string) (string, []nameBinding, *diag.Diagnostic) {
	byteSize := e.usePrelude("bitArrayByteSize")
	intSlice := e.usePrelude("intFromBitSlice")
	byteSlice := e.usePrelude("binaryFromBitSlice")

	conds := []string{fmt.Sprintf("(%s.__gleamTag == \"BitArray\")", subject)}
	var bindings []nameBinding
	offsetBytes := 0
	hasTail := false
	for _, seg := range pat.Segments {
		if seg.IsTail {
			hasTail = true
			if seg.BindingName != "" {
				value := fmt.Sprintf("(%s %s %d ((%s %s) - %d))", byteSlice, subject, offsetBytes, byteSize, subject, offsetBytes)
				bindings = append(bindings, nameBinding{name: scope.Bind(naming.EscapeIdentifier(seg.BindingName)), value: value})
			}
			continue
		}
		if !seg.HasSize || seg.SizeBits%8 != 0 {
			return "", nil, diag.Errorf(e.module.Name, diag.CodeUnsupportedBitArraySeg,
				"bit-array pattern segments must have an explicit byte-aligned size on this backend").WithLocation(e.fn, pat.Line)
		}
		nBytes := seg.SizeBits / 8
		var value string
		switch seg.Kind {
		case "int":
			value = fmt.Sprintf("(%s %s %d %d)", intSlice, subject, offsetBytes, nBytes)
		case "bytes", "bits":
			value = fmt.Sprintf("(%s %s %d %d)", byteSlice, subject, offsetBytes, nBytes)
		default:
			return "", nil, diag.Errorf(e.module.Name, diag.CodeUnsupportedBitArraySeg, "unsupported bit-array pattern segment kind %q", seg.Kind).WithLocation(e.fn, pat.Line)
		}
		if seg.BindingName != "" {
			bindings = append(bindings, nameBinding{name: scope.Bind(naming.EscapeIdentifier(seg.BindingName)), value: value})
		}
		offsetBytes += nBytes
	}
	if hasTail {
		conds = append(conds, fmt.Sprintf("((%s %s) >= %d)", byteSize, subject, offsetBytes))
	} else {
		conds = append(conds, fmt.Sprintf("((%s %s) == %d)", byteSize, subject, offsetBytes))
	}
	return joinAnd(conds), bindings, nil
}

func (e *emitter) compileAsPattern(scope *naming.Scope, pat gleamir.Pattern, subject string) (string, []nameBinding, *diag.Diagnostic) {
	if pat.Sub == nil {
		return "", nil, diag.Errorf(e.module.Name, diag.CodeMalformedIR, "as-pattern missing sub-pattern").WithLocation(e.fn, pat.Line)
	}
	cond, bindings, derr := e.compilePatternMatch(scope, *pat.Sub, subject)
	if derr != nil {
		return "", nil, derr
	}
	if pat.Name != "" {
		bindings = append(bindings, nameBinding{name: scope.Bind(naming.EscapeIdentifier(pat.Name)), value: subject})
	}
	return cond, bindings, nil
}

// compileAlternativePattern handles `pat1 | pat2 | ...` nested inside a
// larger pattern. Gleam requires every alternative to bind the same names,
// so each bound name's value is a chain choosing whichever alternative's
// accessor applies, defaulting to the last alternative when none of the
// earlier conditions held: either the last alternative is the one that
// matched, or the overall condition failed and the binding is never used.
func (e *emitter) compileAlternativePattern(scope *naming.Scope, pat gleamir.Pattern, subject string) (string, []nameBinding, *diag.Diagnostic) {
	if len(pat.Alternatives) == 0 {
		return "", nil, diag.Errorf(e.module.Name, diag.CodeMalformedIR, "alternative pattern with no alternatives").WithLocation(e.fn, pat.Line)
	}
	type altResult struct {
		cond     string
		bindings []nameBinding
	}
	results := make([]altResult, len(pat.Alternatives))
	names := make([]string, 0)
	seen := map[string]bool{}
	for i, alt := range pat.Alternatives {
		c, bs, derr := e.compilePatternMatch(scope, alt, subject)
		if derr != nil {
			return "", nil, derr
		}
		results[i] = altResult{cond: c, bindings: bs}
		for _, b := range bs {
			if !seen[b.name] {
				seen[b.name] = true
				names = append(names, b.name)
			}
		}
	}
	conds := make([]string, len(results))
	for i, r := range results {
		conds[i] = r.cond
	}
	var bindings []nameBinding
	for _, name := range names {
		expr := lookupBinding(results[len(results)-1].bindings, name)
		for i := len(results) - 2; i >= 0; i-- {
			this := lookupBinding(results[i].bindings, name)
			expr = fmt.Sprintf("(if %s then %s else %s)", results[i].cond, this, expr)
		}
		bindings = append(bindings, nameBinding{name: name, value: expr})
	}
	return joinOr(conds), bindings, nil
}

func lookupBinding(bindings []nameBinding, name string) string {
	for _, b := range bindings {
		if b.name == name {
			return b.value
		}
	}
	return "null"
}

func joinAnd(parts []string) string {
	return "(" + strings.Join(parts, " && ") + ")"
}

func joinOr(parts []string) string {
	return "(" + strings.Join(parts, " || ") + ")"
}

// lowerCase compiles a case expression into a chain of nested
// if/then/else, evaluating each subject once into a fresh binding and then
// trying clauses (and each clause's row alternatives) in source order.
func (e *emitter) lowerCase(scope *naming.Scope, expr gleamir.Expression) (string, *diag.Diagnostic) {
	inner := scope.Fork()
	subjectNames := make([]string, len(expr.Subjects))
	var preamble strings.Builder
	preamble.WriteString("let ")
	for i, subj := range expr.Subjects {
		val, derr := e.lowerExpression(inner, subj)
		if derr != nil {
			return "", derr
		}
		name := inner.Fresh(naming.TempScrutinee)
		subjectNames[i] = name
		preamble.WriteString(fmt.Sprintf("%s = %s; ", name, val))
	}

	body, derr := e.lowerClauses(inner, expr.Clauses, subjectNames, expr.Line)
	if derr != nil {
		return "", derr
	}
	preamble.WriteString("in ")
	preamble.WriteString(body)
	return "(" + preamble.String() + ")", nil
}

func (e *emitter) lowerClauses(scope *naming.Scope, clauses []gleamir.Clause, subjects []string, line int) (string, *diag.Diagnostic) {
	if len(clauses) == 0 {
		makeErr := e.usePrelude("makeError")
		return fmt.Sprintf("(builtins.throw (%s \"case_no_match\" %q %d %q \"no case clause matched\" { }))", makeErr, e.module.Name, line, e.fn), nil
	}
	clause := clauses[0]
	rest, derr := e.lowerClauses(scope, clauses[1:], subjects, line)
	if derr != nil {
		return "", derr
	}
	return e.lowerClauseAlternatives(scope, clause, subjects, rest)
}

func (e *emitter) lowerClauseAlternatives(scope *naming.Scope, clause gleamir.Clause, subjects []string, fallback string) (string, *diag.Diagnostic) {
	if len(clause.Alternatives) == 0 {
		return fallback, nil
	}
	alt := clause.Alternatives[0]
	restAlts := gleamir.Clause{Alternatives: clause.Alternatives[1:], Guard: clause.Guard, Body: clause.Body}
	nextFallback, derr := e.lowerClauseAlternatives(scope, restAlts, subjects, fallback)
	if derr != nil {
		return "", derr
	}
	if len(alt) != len(subjects) {
		return "", diag.Errorf(e.module.Name, diag.CodeMalformedIR, "clause alternative has %d patterns for %d subjects", len(alt), len(subjects))
	}
	altScope := scope.Fork()
	conds := []string{"true"}
	var bindings []nameBinding
	for i, pat := range alt {
		c, bs, derr := e.compilePatternMatch(altScope, pat, subjects[i])
		if derr != nil {
			return "", derr
		}
		conds = append(conds, c)
		bindings = append(bindings, bs...)
	}
	var b strings.Builder
	b.WriteString("(if ")
	b.WriteString(joinAnd(conds))
	b.WriteString(" then (let ")
	for _, bd := range bindings {
		b.WriteString(fmt.Sprintf("%s = %s; ", bd.name, bd.value))
	}
	b.WriteString("in ")
	if clause.Guard != nil {
		guard, derr := e.lowerExpression(altScope, *clause.Guard)
		if derr != nil {
			return "", derr
		}
		bodyExpr, derr := e.lowerBlock(altScope, clause.Body)
		if derr != nil {
			return "", derr
		}
		b.WriteString(fmt.Sprintf("(if %s then (%s) else %s)", guard, bodyExpr, nextFallback))
	} else {
		bodyExpr, derr := e.lowerBlock(altScope, clause.Body)
		if derr != nil {
			return "", derr
		}
		b.WriteString("(" + bodyExpr + ")")
	}
	b.WriteString(") else ")
	b.WriteString(nextFallback)
	b.WriteString(")")
	return b.String(), nil
}
