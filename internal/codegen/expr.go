package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"glistix-nix/internal/diag"
	"glistix-nix/internal/gleamir"
	"glistix-nix/internal/naming"
)

var binOpText = map[gleamir.BinOp]string{
	gleamir.OpIntAdd:    "+",
	gleamir.OpIntSub:    "-",
	gleamir.OpIntMul:    "*",
	gleamir.OpFloatAdd:  "+",
	gleamir.OpFloatSub:  "-",
	gleamir.OpFloatMul:  "*",
	gleamir.OpFloatDiv:  "/",
	gleamir.OpEq:        "==",
	gleamir.OpNotEq:     "!=",
	gleamir.OpLtInt:     "<",
	gleamir.OpLtEqInt:   "<=",
	gleamir.OpGtInt:     ">",
	gleamir.OpGtEqInt:   ">=",
	gleamir.OpLtFloat:   "<",
	gleamir.OpLtEqFloat: "<=",
	gleamir.OpGtFloat:   ">",
	gleamir.OpGtEqFloat: ">=",
	gleamir.OpAnd:       "&&",
	gleamir.OpOr:        "||",
}

// lowerBlock turns a statement sequence into one Nix expression: every
// leading assignment becomes a `let` binding and the trailing expression
// statement (or the value of the last assignment, if the body ends on one)
// becomes the `in` clause. Gleam guarantees a block's last statement
// determines its value, so a block ending on a bare assignment yields that
// assignment's bound name.
func (e *emitter) lowerBlock(scope *naming.Scope, stmts []gleamir.Statement) (string, *diag.Diagnostic) {
	if len(stmts) == 0 {
		return "null", nil
	}
	var b strings.Builder
	haveLet := false
	tailName := "null"
	var forceNames []string
	for i, st := range stmts {
		last := i == len(stmts)-1
		switch st.Kind {
		case gleamir.StmtAssignment:
			bound, names, tail, derr := e.lowerAssignment(scope, st)
			if derr != nil {
				return "", derr
			}
			if !haveLet {
				b.WriteString("let ")
				haveLet = true
			}
			b.WriteString(bound)
			b.WriteString(" ")
			forceNames = append(forceNames, names...)
			if last {
				tailName = tail
			}
		case gleamir.StmtExpression:
			val, derr := e.lowerExpression(scope, st.Value)
			if derr != nil {
				return "", derr
			}
			if last {
				tailName = val
			} else {
				// A non-tail bare expression statement is evaluated only
				// for effect; Nix has none, so it is bound here and forced
				// via wrapWithForces below, so it runs in source order even
				// though nothing else references the binding.
				if !haveLet {
					b.WriteString("let ")
					haveLet = true
				}
				fresh := scope.Fresh(naming.TempDiscard)
				b.WriteString(forceDiscardBinding(fresh, val))
				b.WriteString(" ")
				forceNames = append(forceNames, fresh)
			}
		default:
			return "", diag.Errorf(e.module.Name, diag.CodeMalformedIR, "unknown statement kind %d", st.Kind).WithLocation(e.fn, st.Line)
		}
	}
	if haveLet {
		b.WriteString("in ")
	}
	b.WriteString(e.wrapWithForces(forceNames, tailName))
	return b.String(), nil
}

// lowerAssignment renders one `let`/`let assert` statement as Nix
// `binding = value;` text, the names of any force-slots it introduced (an
// assertion check, or the discard slot of `let _ =`) that the enclosing
// block must thread through
// wrapWithForces, and the value the block should yield if this statement is
// its last: the actual (possibly freshened, on shadowing) bound name for an
// irrefutable var pattern, or "null" (Gleam's Nil) for anything else, whose
// only purpose as a block's last statement is the assertion side effect it
// may carry. A refutable pattern (anything other than a bare variable or
// wildcard) is compiled through the pattern-match machinery against a
// single synthetic clause, panicking through prelude.makeError on mismatch
// for `let assert`.
func (e *emitter) lowerAssignment(scope *naming.Scope, st gleamir.Statement) (string, []string, string, *diag.Diagnostic) {
	val, derr := e.lowerExpression(scope, st.Value)
	if derr != nil {
		return "", nil, "", derr
	}
	switch st.Pattern.Kind {
	case gleamir.PatVar:
		name := scope.Bind(naming.EscapeIdentifier(st.Pattern.Name))
		return fmt.Sprintf("%s = %s;", name, val), nil, name, nil
	case gleamir.PatWildcard:
		// `let _ = e` discards e's value but Gleam still evaluates e, so the
		// slot is forced like a non-tail expression statement.
		name := scope.Fresh(naming.TempDiscard)
		return fmt.Sprintf("%s = %s;", name, val), []string{name}, "null", nil
	default:
		bound, forceNames, derr := e.lowerDestructuringAssignment(scope, st, val)
		return bound, forceNames, "null", derr
	}
}

func (e *emitter) lowerDestructuringAssignment(scope *naming.Scope, st gleamir.Statement, val string) (string, []string, *diag.Diagnostic) {
	scrutinee := scope.Fresh(naming.TempScrutinee)
	bindings, ok, derr := e.compileBindings(scope, st.Pattern, scrutinee)
	if derr != nil {
		return "", nil, derr
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s = %s; ", scrutinee, val))
	var forceNames []string
	if st.AssignKind == gleamir.AssignLetAssert && !alwaysMatches(st.Pattern) {
		msg := fmt.Sprintf("%q", "pattern did not match")
		if st.AssertMessage != nil {
			m, derr2 := e.lowerExpression(scope, *st.AssertMessage)
			if derr2 != nil {
				return "", nil, derr2
			}
			msg = m
		}
		makeErr := e.usePrelude("makeError")
		check := scope.Fresh(naming.TempAssert)
		b.WriteString(fmt.Sprintf("%s = if !(%s) then builtins.throw (%s \"let_assert\" %q %d %q %s { value = %s; }) else null; ",
			check, ok, makeErr, e.module.Name, st.Line, e.fn, msg, scrutinee))
		forceNames = append(forceNames, check)
	}
	for _, bd := range bindings {
		b.WriteString(bd)
		b.WriteString(" ")
	}
	return strings.TrimRight(b.String(), " "), forceNames, nil
}

func alwaysMatches(p gleamir.Pattern) bool {
	return p.Kind == gleamir.PatVar || p.Kind == gleamir.PatWildcard
}

// lowerExpression renders one expression node as a self-contained Nix
// expression fragment (never terminated by `;`).
func (e *emitter) lowerExpression(scope *naming.Scope, expr gleamir.Expression) (string, *diag.Diagnostic) {
	switch expr.Kind {
	case gleamir.ExprInt:
		return formatIntLiteral(e, expr.IntText), nil
	case gleamir.ExprFloat:
		return formatFloatLiteral(expr.FloatText), nil
	case gleamir.ExprString:
		return formatStringLiteral(expr.StringText), nil
	case gleamir.ExprVarLocal:
		return naming.EscapeIdentifier(expr.VarName), nil
	case gleamir.ExprVarModule:
		return naming.FieldAccess(naming.EscapeIdentifier(expr.ModuleName), expr.VarName), nil
	case gleamir.ExprVarUnqualified:
		return naming.EscapeIdentifier(expr.VarName), nil
	case gleamir.ExprCall:
		return e.lowerCall(scope, expr)
	case gleamir.ExprBinOp:
		return e.lowerBinOp(scope, expr)
	case gleamir.ExprRecordConstruct:
		return e.lowerRecordConstruct(scope, expr)
	case gleamir.ExprRecordUpdate:
		return e.lowerRecordUpdate(scope, expr)
	case gleamir.ExprFieldAccess:
		base, derr := e.lowerExpression(scope, *expr.Base)
		if derr != nil {
			return "", derr
		}
		return naming.FieldAccess(parenthesizeIfNeeded(base), expr.FieldName), nil
	case gleamir.ExprTupleConstruct:
		return e.lowerTuple(scope, expr.Elements)
	case gleamir.ExprTupleIndex:
		base, derr := e.lowerExpression(scope, *expr.Base)
		if derr != nil {
			return "", derr
		}
		return fmt.Sprintf("%s._%d", parenthesizeIfNeeded(base), expr.Index), nil
	case gleamir.ExprListConstruct:
		return e.lowerListConstruct(scope, expr)
	case gleamir.ExprFn:
		return e.lowerFn(scope, expr)
	case gleamir.ExprBlock:
		body, derr := e.lowerBlock(scope.Fork(), expr.Body)
		if derr != nil {
			return "", derr
		}
		return "(" + body + ")", nil
	case gleamir.ExprCase:
		return e.lowerCase(scope, expr)
	case gleamir.ExprPanic:
		return e.lowerPanic(scope, expr, "panic")
	case gleamir.ExprTodo:
		return e.lowerPanic(scope, expr, "todo")
	case gleamir.ExprBitArrayConstruct:
		return e.lowerBitArrayConstruct(scope, expr)
	default:
		return "", diag.Errorf(e.module.Name, diag.CodeUnknownExprKind, "unknown expression kind %d", expr.Kind).WithLocation(e.fn, expr.Line)
	}
}

// formatIntLiteral emits a decimal integer literal as-is, since Nix parses
// plain decimal integers natively; base 2/8/16 literals (Gleam's 0b/0o/0x
// prefixes, optionally negative) have no Nix syntax of their own and route
// through the prelude's runtime parser instead.
func formatIntLiteral(e *emitter, text string) string {
	digits := text
	if strings.HasPrefix(digits, "-") {
		digits = digits[1:]
	}
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") ||
		strings.HasPrefix(digits, "0o") || strings.HasPrefix(digits, "0O") ||
		strings.HasPrefix(digits, "0b") || strings.HasPrefix(digits, "0B") {
		helper := e.usePrelude("parseNumber")
		return fmt.Sprintf("(%s %q)", helper, text)
	}
	return text
}

func formatFloatLiteral(text string) string {
	if !strings.ContainsAny(text, ".eE") {
		return text + ".0"
	}
	return text
}

// formatStringLiteral quotes a Gleam string literal for Nix, first
// normalising it to NFC so that visually identical source strings always
// produce byte-identical output regardless of how the original file
// composed its Unicode.
func formatStringLiteral(text string) string {
	return strconv.Quote(norm.NFC.String(text))
}

func parenthesizeIfNeeded(s string) string {
	if s == "" {
		return s
	}
	if s[0] == '(' && s[len(s)-1] == ')' {
		return s
	}
	if strings.ContainsAny(s, " \t") {
		return "(" + s + ")"
	}
	return s
}

func (e *emitter) lowerCall(scope *naming.Scope, expr gleamir.Expression) (string, *diag.Diagnostic) {
	callee, derr := e.lowerExpression(scope, *expr.Callee)
	if derr != nil {
		return "", derr
	}
	args := make([]string, len(expr.Args))
	for i, a := range expr.Args {
		arg, derr := e.lowerExpression(scope, a)
		if derr != nil {
			return "", derr
		}
		args[i] = arg
	}
	return e.wrapStrictCall(callee, args), nil
}

func wrapArg(s string) string {
	if s == "" {
		return "(null)"
	}
	if strings.ContainsAny(s, " \t") && !(s[0] == '(' && s[len(s)-1] == ')') && s[0] != '{' && s[0] != '"' {
		return "(" + s + ")"
	}
	return s
}

func (e *emitter) lowerBinOp(scope *naming.Scope, expr gleamir.Expression) (string, *diag.Diagnostic) {
	left, derr := e.lowerExpression(scope, *expr.Left)
	if derr != nil {
		return "", derr
	}
	right, derr := e.lowerExpression(scope, *expr.Right)
	if derr != nil {
		return "", derr
	}
	switch expr.Op {
	case gleamir.OpIntDiv:
		helper := e.usePrelude("divideInt")
		return fmt.Sprintf("(%s %s %s)", helper, wrapArg(left), wrapArg(right)), nil
	case gleamir.OpIntMod:
		helper := e.usePrelude("remainderInt")
		return fmt.Sprintf("(%s %s %s)", helper, wrapArg(left), wrapArg(right)), nil
	case gleamir.OpFloatDiv:
		helper := e.usePrelude("divideFloat")
		return fmt.Sprintf("(%s %s %s)", helper, wrapArg(left), wrapArg(right)), nil
	case gleamir.OpStrConcat:
		return fmt.Sprintf("(%s + %s)", left, right), nil
	}
	op, ok := binOpText[expr.Op]
	if !ok {
		return "", diag.Errorf(e.module.Name, diag.CodeMalformedIR, "unknown binary operator %q", expr.Op).WithLocation(e.fn, expr.Line)
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right), nil
}

func (e *emitter) lowerRecordConstruct(scope *naming.Scope, expr gleamir.Expression) (string, *diag.Diagnostic) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("{ __gleamTag = %q; ", expr.Tag))
	for i, f := range expr.Fields {
		val, derr := e.lowerExpression(scope, f.Value)
		if derr != nil {
			return "", derr
		}
		b.WriteString(fmt.Sprintf("%s = %s; ", naming.QuoteKeyIfNeeded(fieldKey(f.Label, i)), val))
	}
	b.WriteString("}")
	return b.String(), nil
}

func (e *emitter) lowerRecordUpdate(scope *naming.Scope, expr gleamir.Expression) (string, *diag.Diagnostic) {
	base, derr := e.lowerExpression(scope, *expr.Base)
	if derr != nil {
		return "", derr
	}
	var b strings.Builder
	b.WriteString(parenthesizeIfNeeded(base))
	b.WriteString(" // { ")
	for _, f := range expr.Fields {
		val, derr := e.lowerExpression(scope, f.Value)
		if derr != nil {
			return "", derr
		}
		b.WriteString(fmt.Sprintf("%s = %s; ", naming.QuoteKeyIfNeeded(f.Label), val))
	}
	b.WriteString("}")
	return b.String(), nil
}

func (e *emitter) lowerTuple(scope *naming.Scope, elems []gleamir.Expression) (string, *diag.Diagnostic) {
	var b strings.Builder
	b.WriteString("{ __gleamTag = \"Tuple\"; ")
	for i, el := range elems {
		val, derr := e.lowerExpression(scope, el)
		if derr != nil {
			return "", derr
		}
		b.WriteString(fmt.Sprintf("_%d = %s; ", i, val))
	}
	b.WriteString("}")
	return b.String(), nil
}

func (e *emitter) lowerListConstruct(scope *naming.Scope, expr gleamir.Expression) (string, *diag.Diagnostic) {
	tail := e.usePrelude("toList") + " []"
	if expr.Tail != nil {
		t, derr := e.lowerExpression(scope, *expr.Tail)
		if derr != nil {
			return "", derr
		}
		tail = t
	}
	prepend := e.usePrelude("prepend")
	result := tail
	for i := len(expr.Elements) - 1; i >= 0; i-- {
		el, derr := e.lowerExpression(scope, expr.Elements[i])
		if derr != nil {
			return "", derr
		}
		result = fmt.Sprintf("(%s %s %s)", prepend, wrapArg(el), wrapArg(result))
	}
	return result, nil
}

func (e *emitter) lowerFn(scope *naming.Scope, expr gleamir.Expression) (string, *diag.Diagnostic) {
	inner := scope.Fork()
	params := make([]string, len(expr.Params))
	for i, p := range expr.Params {
		params[i] = inner.Bind(naming.EscapeIdentifier(p))
	}
	body, derr := e.lowerBlock(inner, expr.Body)
	if derr != nil {
		return "", derr
	}
	var b strings.Builder
	b.WriteString("(")
	for _, p := range params {
		b.WriteString(p + ": ")
	}
	if len(params) == 0 {
		b.WriteString("_unit: ")
	}
	b.WriteString(body)
	b.WriteString(")")
	return b.String(), nil
}

func (e *emitter) lowerPanic(scope *naming.Scope, expr gleamir.Expression, kind string) (string, *diag.Diagnostic) {
	msg := fmt.Sprintf("%q", kind+" expression evaluated")
	if expr.Message != nil {
		m, derr := e.lowerExpression(scope, *expr.Message)
		if derr != nil {
			return "", derr
		}
		msg = m
	}
	makeErr := e.usePrelude("makeError")
	return fmt.Sprintf("(builtins.throw (%s %q %q %d %q %s { }))", makeErr, kind, e.module.Name, expr.Line, e.fn, msg), nil
}

func (e *emitter) lowerBitArrayConstruct(scope *naming.Scope, expr gleamir.Expression) (string, *diag.Diagnostic) {
	toBitArray := e.usePrelude("toBitArray")
	sizedInt := e.usePrelude("sizedInt")
	var segs strings.Builder
	segs.WriteString("[ ")
	for _, seg := range expr.Segments {
		val, derr := e.lowerExpression(scope, seg.Value)
		if derr != nil {
			return "", derr
		}
		switch seg.Kind {
		case "int":
			size := "8"
			if seg.SizeBits != nil {
				s, derr := e.lowerExpression(scope, *seg.SizeBits)
				if derr != nil {
					return "", derr
				}
				size = s
			}
			segs.WriteString(fmt.Sprintf("(%s %s %s) ", sizedInt, wrapArg(val), wrapArg(size)))
		case "bytes", "bits":
			segs.WriteString(fmt.Sprintf("(%s).buffer ", parenthesizeIfNeeded(val)))
		case "utf8_codepoint":
			cp := e.usePrelude("codepointBits")
			segs.WriteString(fmt.Sprintf("(%s %s) ", cp, wrapArg(val)))
		case "float":
			return "", diag.Errorf(e.module.Name, diag.CodeUnsupportedBitArraySeg, "float bit-array segments are not supported by this backend").WithLocation(e.fn, expr.Line)
		default:
			return "", diag.Errorf(e.module.Name, diag.CodeUnsupportedBitArraySeg, "unsupported bit-array segment kind %q", seg.Kind).WithLocation(e.fn, expr.Line)
		}
	}
	segs.WriteString("]")
	return fmt.Sprintf("(%s %s)", toBitArray, segs.String()), nil
}
