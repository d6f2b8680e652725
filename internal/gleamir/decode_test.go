package gleamir

import "testing"

func TestDecodeModuleMinimal(t *testing.T) {
	data := []byte(`{
		"name": "example/greet",
		"imports": [],
		"definitions": []
	}`)
	m, err := DecodeModule(data)
	if err != nil {
		t.Fatalf("DecodeModule: %v", err)
	}
	if m.Name != "example/greet" {
		t.Errorf("Name = %q, want example/greet", m.Name)
	}
	if len(m.Defs) != 0 {
		t.Errorf("expected no definitions, got %d", len(m.Defs))
	}
}

func TestDecodeModuleUnknownDefinitionKind(t *testing.T) {
	data := []byte(`{"name":"m","imports":[],"definitions":[{"kind":"bogus","public":true,"line":1}]}`)
	if _, err := DecodeModule(data); err == nil {
		t.Fatal("expected error for unknown definition kind")
	}
}

func TestDecodeFunctionWithLetAssignment(t *testing.T) {
	data := []byte(`{
		"kind": "function",
		"public": true,
		"line": 3,
		"name": "double",
		"params": ["x"],
		"body": [
			{
				"kind": "assignment",
				"line": 4,
				"assign_kind": "let",
				"pattern": {"kind": "var", "line": 4, "name": "y"},
				"value": {
					"kind": "bin_op",
					"line": 4,
					"op": "int_add",
					"left": {"kind": "var_local", "line": 4, "var_name": "x"},
					"right": {"kind": "var_local", "line": 4, "var_name": "x"}
				}
			},
			{
				"kind": "expression",
				"line": 5,
				"value": {"kind": "var_local", "line": 5, "var_name": "y"}
			}
		]
	}`)
	def, err := decodeDefinition(data)
	if err != nil {
		t.Fatalf("decodeDefinition: %v", err)
	}
	if def.Kind != DefFunction {
		t.Fatalf("Kind = %v, want DefFunction", def.Kind)
	}
	fn := def.Func
	if fn == nil {
		t.Fatal("Func is nil")
	}
	if fn.Name != "double" || len(fn.Params) != 1 || fn.Params[0] != "x" {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
	if len(fn.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(fn.Body))
	}
	assign := fn.Body[0]
	if assign.Kind != StmtAssignment || assign.AssignKind != AssignLet {
		t.Fatalf("unexpected first statement: %+v", assign)
	}
	if assign.Pattern.Kind != PatVar || assign.Pattern.Name != "y" {
		t.Fatalf("unexpected pattern: %+v", assign.Pattern)
	}
	if assign.Value.Kind != ExprBinOp || assign.Value.Op != OpIntAdd {
		t.Fatalf("unexpected value expression: %+v", assign.Value)
	}
	if assign.Value.Left == nil || assign.Value.Left.VarName != "x" {
		t.Fatalf("unexpected left operand: %+v", assign.Value.Left)
	}
}

func TestDecodeLetAssertWithMessage(t *testing.T) {
	data := []byte(`{
		"kind": "assignment",
		"line": 10,
		"assign_kind": "let_assert",
		"pattern": {"kind": "int_literal", "line": 10, "int_text": "1"},
		"value": {"kind": "var_local", "line": 10, "var_name": "n"},
		"assert_message": {"kind": "string", "line": 10, "string_text": "expected one"}
	}`)
	st, err := decodeStatement(data)
	if err != nil {
		t.Fatalf("decodeStatement: %v", err)
	}
	if st.AssignKind != AssignLetAssert {
		t.Fatalf("AssignKind = %v, want AssignLetAssert", st.AssignKind)
	}
	if st.AssertMessage == nil {
		t.Fatal("AssertMessage is nil")
	}
	if st.AssertMessage.StringText != "expected one" {
		t.Fatalf("AssertMessage text = %q", st.AssertMessage.StringText)
	}
}

func TestDecodeCaseExpressionWithGuardAndAlternatives(t *testing.T) {
	data := []byte(`{
		"kind": "case",
		"line": 7,
		"subjects": [{"kind": "var_local", "line": 7, "var_name": "x"}],
		"clauses": [
			{
				"alternatives": [
					[{"kind": "int_literal", "line": 7, "int_text": "0"}],
					[{"kind": "int_literal", "line": 7, "int_text": "1"}]
				],
				"body": [
					{"kind": "expression", "line": 7, "value": {"kind": "string", "line": 7, "string_text": "small"}}
				]
			},
			{
				"alternatives": [
					[{"kind": "var", "line": 8, "name": "n"}]
				],
				"guard": {
					"kind": "bin_op",
					"line": 8,
					"op": "gt_int",
					"left": {"kind": "var_local", "line": 8, "var_name": "n"},
					"right": {"kind": "int", "line": 8, "int_text": "10"}
				},
				"body": [
					{"kind": "expression", "line": 8, "value": {"kind": "string", "line": 8, "string_text": "big"}}
				]
			}
		]
	}`)
	e, err := decodeExpression(data)
	if err != nil {
		t.Fatalf("decodeExpression: %v", err)
	}
	if e.Kind != ExprCase {
		t.Fatalf("Kind = %v, want ExprCase", e.Kind)
	}
	if len(e.Subjects) != 1 || e.Subjects[0].VarName != "x" {
		t.Fatalf("unexpected subjects: %+v", e.Subjects)
	}
	if len(e.Clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(e.Clauses))
	}
	first := e.Clauses[0]
	if len(first.Alternatives) != 2 {
		t.Fatalf("expected 2 alternatives in first clause, got %d", len(first.Alternatives))
	}
	if first.Guard != nil {
		t.Fatal("first clause should have no guard")
	}
	second := e.Clauses[1]
	if second.Guard == nil {
		t.Fatal("second clause should have a guard")
	}
	if second.Guard.Op != OpGtInt {
		t.Fatalf("guard op = %v, want OpGtInt", second.Guard.Op)
	}
}

func TestDecodeVariantPatternWithFields(t *testing.T) {
	data := []byte(`{
		"kind": "variant",
		"line": 2,
		"tag": "Some",
		"fields": [
			{"label": "", "positional": true, "pattern": {"kind": "var", "line": 2, "name": "value"}}
		]
	}`)
	p, err := decodePattern(data)
	if err != nil {
		t.Fatalf("decodePattern: %v", err)
	}
	if p.Kind != PatVariant || p.Tag != "Some" {
		t.Fatalf("unexpected pattern: %+v", p)
	}
	if len(p.Fields) != 1 || !p.Fields[0].Positional || p.Fields[0].Pattern.Name != "value" {
		t.Fatalf("unexpected fields: %+v", p.Fields)
	}
}

func TestDecodeListPatternWithTail(t *testing.T) {
	data := []byte(`{
		"kind": "list",
		"line": 1,
		"elements": [{"kind": "var", "line": 1, "name": "head"}],
		"has_tail": true,
		"tail_name": "rest"
	}`)
	p, err := decodePattern(data)
	if err != nil {
		t.Fatalf("decodePattern: %v", err)
	}
	if !p.HasTail || p.TailName != "rest" {
		t.Fatalf("unexpected tail: %+v", p)
	}
	if len(p.Elements) != 1 || p.Elements[0].Name != "head" {
		t.Fatalf("unexpected elements: %+v", p.Elements)
	}
}

func TestDecodeAsPatternRequiresSub(t *testing.T) {
	data := []byte(`{"kind": "as", "line": 1, "matched_name": "whole"}`)
	if _, err := decodePattern(data); err == nil {
		t.Fatal("expected error for as-pattern missing sub")
	}
}

func TestDecodeUnknownPatternKind(t *testing.T) {
	data := []byte(`{"kind": "mystery", "line": 1}`)
	if _, err := decodePattern(data); err == nil {
		t.Fatal("expected error for unknown pattern kind")
	}
}

func TestDecodeBitArrayConstructSegments(t *testing.T) {
	data := []byte(`{
		"kind": "bit_array_construct",
		"line": 1,
		"segments": [
			{
				"value": {"kind": "int", "line": 1, "int_text": "255"},
				"kind": "int",
				"size_bits": {"kind": "int", "line": 1, "int_text": "8"},
				"unit": 1
			}
		]
	}`)
	e, err := decodeExpression(data)
	if err != nil {
		t.Fatalf("decodeExpression: %v", err)
	}
	if len(e.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(e.Segments))
	}
	seg := e.Segments[0]
	if seg.Value.IntText != "255" || seg.SizeBits == nil || seg.SizeBits.IntText != "8" {
		t.Fatalf("unexpected segment: %+v", seg)
	}
}
