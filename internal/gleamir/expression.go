package gleamir

// ExprKind discriminates the sum type Expression. The type-checker has
// already lowered pipes into plain calls, so there is no separate pipe kind.
type ExprKind uint8

const (
	ExprInt ExprKind = iota
	ExprFloat
	ExprString
	ExprVarLocal
	ExprVarModule
	ExprVarUnqualified
	ExprCall
	ExprBinOp
	ExprRecordConstruct
	ExprRecordUpdate
	ExprFieldAccess
	ExprTupleConstruct
	ExprTupleIndex
	ExprListConstruct
	ExprFn
	ExprBlock
	ExprCase
	ExprPanic
	ExprTodo
	ExprBitArrayConstruct
)

// BinOp enumerates the binary operators the lowerer distinguishes. Integer
// and float arithmetic are kept separate because they lower to different
// target-language operators (see internal/codegen/expr.go).
type BinOp string

const (
	OpIntAdd     BinOp = "int_add"
	OpIntSub     BinOp = "int_sub"
	OpIntMul     BinOp = "int_mul"
	OpIntDiv     BinOp = "int_div"
	OpIntMod     BinOp = "int_mod"
	OpFloatAdd   BinOp = "float_add"
	OpFloatSub   BinOp = "float_sub"
	OpFloatMul   BinOp = "float_mul"
	OpFloatDiv   BinOp = "float_div"
	OpEq         BinOp = "eq"
	OpNotEq      BinOp = "not_eq"
	OpLtInt      BinOp = "lt_int"
	OpLtEqInt    BinOp = "lte_int"
	OpGtInt      BinOp = "gt_int"
	OpGtEqInt    BinOp = "gte_int"
	OpLtFloat    BinOp = "lt_float"
	OpLtEqFloat  BinOp = "lte_float"
	OpGtFloat    BinOp = "gt_float"
	OpGtEqFloat  BinOp = "gte_float"
	OpAnd        BinOp = "and"
	OpOr         BinOp = "or"
	OpStrConcat  BinOp = "concat"
)

// Expression is one node of the typed expression tree. Only the fields
// relevant to Kind are populated; see decode.go for the wire mapping.
type Expression struct {
	Kind ExprKind
	Line int

	// Literals.
	IntText    string // decimal or "0x"/"0o"/"0b"-prefixed, sign preserved
	FloatText  string
	StringText string // fully decoded Gleam string content

	// Variable references.
	VarName    string // local name, or unqualified imported name
	ModuleName string // for ExprVarModule: the import alias

	// Call.
	Callee *Expression
	Args   []Expression

	// Binary operator.
	Op    BinOp
	Left  *Expression
	Right *Expression

	// Record construct / update.
	Tag       string
	TypeName  string
	Fields    []FieldValue
	Base      *Expression // record update base, or field-access/tuple-index base
	FieldName string      // field access label

	// Tuple.
	Elements []Expression
	Index    int

	// List construct.
	Tail *Expression

	// Anonymous function.
	Params []string
	Body   []Statement

	// Case.
	Subjects []Expression
	Clauses  []Clause

	// Panic / todo.
	Message *Expression

	// Bit array construction.
	Segments []BitArraySegment
}

// FieldValue is one labelled-or-positional field supplied at a record
// construction or record update site.
type FieldValue struct {
	Label      string
	Positional bool
	Value      Expression
}

func (f FieldValue) Labelled() bool { return !f.Positional }

// Clause is one arm of a `case` expression: one or more alternative pattern
// tuples (each tuple matching all subjects), an optional guard, and a body.
type Clause struct {
	Alternatives [][]Pattern
	Guard        *Expression
	Body         []Statement
}

// BitArraySegment is one `<<value:type-size>>` construction segment.
type BitArraySegment struct {
	Value    Expression
	Kind     string // "int", "bytes", "bits", "utf8_codepoint", "float"
	SizeBits *Expression
	Unit     int
}
