package gleamir

import (
	"encoding/json"
	"fmt"
)

// DecodeModule parses one module IR document (see SPEC_FULL.md §6). The
// wire format mirrors the exported struct shapes field-for-field; every
// sum-typed node carries a "kind" string decoded here.
func DecodeModule(data []byte) (*Module, error) {
	var raw struct {
		Name    string          `json:"name"`
		Imports []Import        `json:"imports"`
		Defs    []json.RawMessage `json:"definitions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("gleamir: decode module: %w", err)
	}
	m := &Module{Name: raw.Name, Imports: raw.Imports}
	for i, rd := range raw.Defs {
		def, err := decodeDefinition(rd)
		if err != nil {
			return nil, fmt.Errorf("gleamir: decode definition %d: %w", i, err)
		}
		m.Defs = append(m.Defs, def)
	}
	return m, nil
}

func decodeDefinition(data []byte) (Definition, error) {
	var head struct {
		Kind   string `json:"kind"`
		Public bool   `json:"public"`
		Line   int    `json:"line"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Definition{}, err
	}
	def := Definition{Public: head.Public, Line: head.Line}
	switch head.Kind {
	case "type_definition":
		def.Kind = DefTypeDefinition
		var v TypeDefinition
		if err := json.Unmarshal(data, &v); err != nil {
			return Definition{}, err
		}
		def.TypeDef = &v
	case "type_alias":
		def.Kind = DefTypeAlias
		var v TypeAlias
		if err := json.Unmarshal(data, &v); err != nil {
			return Definition{}, err
		}
		def.Alias = &v
	case "constant":
		def.Kind = DefConstant
		var wire struct {
			Name  string          `json:"name"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &wire); err != nil {
			return Definition{}, err
		}
		val, err := decodeExpression(wire.Value)
		if err != nil {
			return Definition{}, err
		}
		def.Const = &Constant{Name: wire.Name, Value: val}
	case "function":
		def.Kind = DefFunction
		fn, err := decodeFunction(data)
		if err != nil {
			return Definition{}, err
		}
		def.Func = fn
	case "external_function":
		def.Kind = DefExternalFunction
		var v ExternalFunction
		if err := json.Unmarshal(data, &v); err != nil {
			return Definition{}, err
		}
		def.External = &v
	default:
		return Definition{}, fmt.Errorf("unknown definition kind %q", head.Kind)
	}
	return def, nil
}

func decodeFunction(data []byte) (*Function, error) {
	var wire struct {
		Name   string            `json:"name"`
		Params []string          `json:"params"`
		Body   []json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	body, err := decodeStatements(wire.Body)
	if err != nil {
		return nil, err
	}
	return &Function{Name: wire.Name, Params: wire.Params, Body: body}, nil
}

func decodeStatements(raws []json.RawMessage) ([]Statement, error) {
	stmts := make([]Statement, 0, len(raws))
	for i, r := range raws {
		s, err := decodeStatement(r)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func decodeStatement(data []byte) (Statement, error) {
	var head struct {
		Kind string `json:"kind"`
		Line int    `json:"line"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Statement{}, err
	}
	switch head.Kind {
	case "assignment":
		var wire struct {
			Pattern       json.RawMessage  `json:"pattern"`
			Value         json.RawMessage  `json:"value"`
			AssignKind    string           `json:"assign_kind"`
			AssertMessage *json.RawMessage `json:"assert_message,omitempty"`
		}
		if err := json.Unmarshal(data, &wire); err != nil {
			return Statement{}, err
		}
		pat, err := decodePattern(wire.Pattern)
		if err != nil {
			return Statement{}, err
		}
		val, err := decodeExpression(wire.Value)
		if err != nil {
			return Statement{}, err
		}
		st := Statement{Kind: StmtAssignment, Line: head.Line, Pattern: pat, Value: val}
		if wire.AssignKind == "let_assert" {
			st.AssignKind = AssignLetAssert
		}
		if wire.AssertMessage != nil {
			msg, err := decodeExpression(*wire.AssertMessage)
			if err != nil {
				return Statement{}, err
			}
			st.AssertMessage = &msg
		}
		return st, nil
	case "expression":
		var wire struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &wire); err != nil {
			return Statement{}, err
		}
		val, err := decodeExpression(wire.Value)
		if err != nil {
			return Statement{}, err
		}
		return Statement{Kind: StmtExpression, Line: head.Line, Value: val}, nil
	default:
		return Statement{}, fmt.Errorf("unknown statement kind %q", head.Kind)
	}
}

func decodeExpressionPtr(raw *json.RawMessage) (*Expression, error) {
	if raw == nil {
		return nil, nil
	}
	e, err := decodeExpression(*raw)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func decodeExpressions(raws []json.RawMessage) ([]Expression, error) {
	out := make([]Expression, 0, len(raws))
	for i, r := range raws {
		e, err := decodeExpression(r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// exprWire captures every field any Expression kind might carry. Decoding
// through one struct keeps this file linear instead of one switch arm per
// field name.
type exprWire struct {
	Kind       string            `json:"kind"`
	Line       int               `json:"line"`
	IntText    string            `json:"int_text"`
	FloatText  string            `json:"float_text"`
	StringText string            `json:"string_text"`
	VarName    string            `json:"var_name"`
	ModuleName string            `json:"module_name"`
	Callee     *json.RawMessage  `json:"callee"`
	Args       []json.RawMessage `json:"args"`
	Op         string            `json:"op"`
	Left       *json.RawMessage  `json:"left"`
	Right      *json.RawMessage  `json:"right"`
	Tag        string            `json:"tag"`
	TypeName   string            `json:"type_name"`
	Fields     []fieldValueWire  `json:"fields"`
	Base       *json.RawMessage  `json:"base"`
	FieldName  string            `json:"field_name"`
	Elements   []json.RawMessage `json:"elements"`
	Index      int               `json:"index"`
	Tail       *json.RawMessage  `json:"tail"`
	Params     []string          `json:"params"`
	Body       []json.RawMessage `json:"body"`
	Subjects   []json.RawMessage `json:"subjects"`
	Clauses    []clauseWire      `json:"clauses"`
	Message    *json.RawMessage  `json:"message"`
	Segments   []segmentWire     `json:"segments"`
}

type fieldValueWire struct {
	Label      string          `json:"label"`
	Positional bool            `json:"positional"`
	Value      json.RawMessage `json:"value"`
}

type clauseWire struct {
	Alternatives [][]json.RawMessage `json:"alternatives"`
	Guard        *json.RawMessage    `json:"guard"`
	Body         []json.RawMessage   `json:"body"`
}

type segmentWire struct {
	Value    json.RawMessage  `json:"value"`
	Kind     string           `json:"kind"`
	SizeBits *json.RawMessage `json:"size_bits"`
	Unit     int              `json:"unit"`
}

func decodeExpression(data []byte) (Expression, error) {
	var w exprWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Expression{}, err
	}
	e := Expression{Line: w.Line, IntText: w.IntText, FloatText: w.FloatText, StringText: w.StringText,
		VarName: w.VarName, ModuleName: w.ModuleName, Op: BinOp(w.Op), Tag: w.Tag, TypeName: w.TypeName,
		FieldName: w.FieldName, Index: w.Index, Params: w.Params}

	var err error
	switch w.Kind {
	case "int":
		e.Kind = ExprInt
	case "float":
		e.Kind = ExprFloat
	case "string":
		e.Kind = ExprString
	case "var_local":
		e.Kind = ExprVarLocal
	case "var_module":
		e.Kind = ExprVarModule
	case "var_unqualified":
		e.Kind = ExprVarUnqualified
	case "call":
		e.Kind = ExprCall
		if e.Callee, err = decodeExpressionPtr(w.Callee); err != nil {
			return e, err
		}
		if e.Args, err = decodeExpressions(w.Args); err != nil {
			return e, err
		}
	case "bin_op":
		e.Kind = ExprBinOp
		if e.Left, err = decodeExpressionPtr(w.Left); err != nil {
			return e, err
		}
		if e.Right, err = decodeExpressionPtr(w.Right); err != nil {
			return e, err
		}
	case "record_construct":
		e.Kind = ExprRecordConstruct
		if e.Fields, err = decodeFieldValues(w.Fields); err != nil {
			return e, err
		}
	case "record_update":
		e.Kind = ExprRecordUpdate
		if e.Base, err = decodeExpressionPtr(w.Base); err != nil {
			return e, err
		}
		if e.Fields, err = decodeFieldValues(w.Fields); err != nil {
			return e, err
		}
	case "field_access":
		e.Kind = ExprFieldAccess
		if e.Base, err = decodeExpressionPtr(w.Base); err != nil {
			return e, err
		}
	case "tuple_construct":
		e.Kind = ExprTupleConstruct
		if e.Elements, err = decodeExpressions(w.Elements); err != nil {
			return e, err
		}
	case "tuple_index":
		e.Kind = ExprTupleIndex
		if e.Base, err = decodeExpressionPtr(w.Base); err != nil {
			return e, err
		}
	case "list_construct":
		e.Kind = ExprListConstruct
		if e.Elements, err = decodeExpressions(w.Elements); err != nil {
			return e, err
		}
		if e.Tail, err = decodeExpressionPtr(w.Tail); err != nil {
			return e, err
		}
	case "fn":
		e.Kind = ExprFn
		if e.Body, err = decodeStatements(w.Body); err != nil {
			return e, err
		}
	case "block":
		e.Kind = ExprBlock
		if e.Body, err = decodeStatements(w.Body); err != nil {
			return e, err
		}
	case "case":
		e.Kind = ExprCase
		if e.Subjects, err = decodeExpressions(w.Subjects); err != nil {
			return e, err
		}
		for i, cw := range w.Clauses {
			c, cerr := decodeClause(cw)
			if cerr != nil {
				return e, fmt.Errorf("clause %d: %w", i, cerr)
			}
			e.Clauses = append(e.Clauses, c)
		}
	case "panic":
		e.Kind = ExprPanic
		if e.Message, err = decodeExpressionPtr(w.Message); err != nil {
			return e, err
		}
	case "todo":
		e.Kind = ExprTodo
		if e.Message, err = decodeExpressionPtr(w.Message); err != nil {
			return e, err
		}
	case "bit_array_construct":
		e.Kind = ExprBitArrayConstruct
		for i, sw := range w.Segments {
			seg, serr := decodeSegment(sw)
			if serr != nil {
				return e, fmt.Errorf("segment %d: %w", i, serr)
			}
			e.Segments = append(e.Segments, seg)
		}
	default:
		return e, fmt.Errorf("unknown expression kind %q", w.Kind)
	}
	return e, nil
}

func decodeFieldValues(wire []fieldValueWire) ([]FieldValue, error) {
	out := make([]FieldValue, 0, len(wire))
	for i, fw := range wire {
		v, err := decodeExpression(fw.Value)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out = append(out, FieldValue{Label: fw.Label, Positional: fw.Positional, Value: v})
	}
	return out, nil
}

func decodeClause(w clauseWire) (Clause, error) {
	c := Clause{}
	for _, altRaws := range w.Alternatives {
		alt := make([]Pattern, 0, len(altRaws))
		for _, pr := range altRaws {
			p, err := decodePattern(pr)
			if err != nil {
				return c, err
			}
			alt = append(alt, p)
		}
		c.Alternatives = append(c.Alternatives, alt)
	}
	if w.Guard != nil {
		g, err := decodeExpression(*w.Guard)
		if err != nil {
			return c, err
		}
		c.Guard = &g
	}
	body, err := decodeStatements(w.Body)
	if err != nil {
		return c, err
	}
	c.Body = body
	return c, nil
}

func decodeSegment(w segmentWire) (BitArraySegment, error) {
	v, err := decodeExpression(w.Value)
	if err != nil {
		return BitArraySegment{}, err
	}
	seg := BitArraySegment{Value: v, Kind: w.Kind, Unit: w.Unit}
	if w.SizeBits != nil {
		sz, err := decodeExpression(*w.SizeBits)
		if err != nil {
			return seg, err
		}
		seg.SizeBits = &sz
	}
	return seg, nil
}

type patWire struct {
	Kind          string            `json:"kind"`
	Line          int               `json:"line"`
	Name          string            `json:"name"`
	IntText       string            `json:"int_text"`
	FloatText     string            `json:"float_text"`
	StringText    string            `json:"string_text"`
	Prefix        string            `json:"prefix"`
	RestName      string            `json:"rest_name"`
	MatchedName   string            `json:"matched_name"`
	Elements      []json.RawMessage `json:"elements"`
	HasTail       bool              `json:"has_tail"`
	TailName      string            `json:"tail_name"`
	Tag           string            `json:"tag"`
	Fields        []patFieldWire    `json:"fields"`
	HasFieldsRest bool              `json:"has_fields_rest"`
	Segments      []patSegmentWire  `json:"segments"`
	Sub           *json.RawMessage  `json:"sub"`
	Alternatives  []json.RawMessage `json:"alternatives"`
}

type patFieldWire struct {
	Label      string          `json:"label"`
	Positional bool            `json:"positional"`
	Pattern    json.RawMessage `json:"pattern"`
}

type patSegmentWire struct {
	Kind        string `json:"kind"`
	HasSize     bool   `json:"has_size"`
	SizeBits    int    `json:"size_bits"`
	Unit        int    `json:"unit"`
	BindingName string `json:"binding_name"`
	IsTail      bool   `json:"is_tail"`
}

func decodePattern(data []byte) (Pattern, error) {
	var w patWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Pattern{}, err
	}
	p := Pattern{Line: w.Line, Name: w.Name, IntText: w.IntText, FloatText: w.FloatText, StringText: w.StringText,
		Prefix: w.Prefix, RestName: w.RestName, MatchedName: w.MatchedName, HasTail: w.HasTail, TailName: w.TailName,
		Tag: w.Tag, HasFieldsRest: w.HasFieldsRest}

	var err error
	switch w.Kind {
	case "wildcard":
		p.Kind = PatWildcard
	case "var":
		p.Kind = PatVar
	case "int_literal":
		p.Kind = PatIntLiteral
	case "float_literal":
		p.Kind = PatFloatLiteral
	case "string_literal":
		p.Kind = PatStringLiteral
	case "string_prefix":
		p.Kind = PatStringPrefix
	case "tuple":
		p.Kind = PatTuple
		if p.Elements, err = decodePatterns(w.Elements); err != nil {
			return p, err
		}
	case "list":
		p.Kind = PatList
		if p.Elements, err = decodePatterns(w.Elements); err != nil {
			return p, err
		}
	case "variant":
		p.Kind = PatVariant
		for i, fw := range w.Fields {
			sub, serr := decodePattern(fw.Pattern)
			if serr != nil {
				return p, fmt.Errorf("field %d: %w", i, serr)
			}
			p.Fields = append(p.Fields, PatternField{Label: fw.Label, Positional: fw.Positional, Pattern: sub})
		}
	case "bit_array":
		p.Kind = PatBitArray
		for _, sw := range w.Segments {
			p.Segments = append(p.Segments, BitArrayPatternSegment{
				Kind: sw.Kind, HasSize: sw.HasSize, SizeBits: sw.SizeBits, Unit: sw.Unit,
				BindingName: sw.BindingName, IsTail: sw.IsTail,
			})
		}
	case "as":
		p.Kind = PatAs
		if w.Sub == nil {
			return p, fmt.Errorf("as-pattern missing sub-pattern")
		}
		sub, serr := decodePattern(*w.Sub)
		if serr != nil {
			return p, serr
		}
		p.Sub = &sub
	case "alternative":
		p.Kind = PatAlternative
		if p.Alternatives, err = decodePatterns(w.Alternatives); err != nil {
			return p, err
		}
	default:
		return p, fmt.Errorf("unknown pattern kind %q", w.Kind)
	}
	return p, nil
}

func decodePatterns(raws []json.RawMessage) ([]Pattern, error) {
	out := make([]Pattern, 0, len(raws))
	for i, r := range raws {
		p, err := decodePattern(r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}
