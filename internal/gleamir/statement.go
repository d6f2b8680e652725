package gleamir

// StmtKind discriminates the sum type Statement.
type StmtKind uint8

const (
	StmtAssignment StmtKind = iota
	StmtExpression
)

// AssignKind distinguishes a plain `let` from a `let assert`.
type AssignKind uint8

const (
	AssignLet AssignKind = iota
	AssignLetAssert
)

// Statement is one element of a Gleam function/block body.
//
// For StmtAssignment, Pattern and Value are both set; AssertMessage is set
// only when AssignKind == AssignLetAssert and the source supplied a custom message.
// For StmtExpression, only Value is set.
type Statement struct {
	Kind          StmtKind
	Line          int
	Pattern       Pattern
	Value         Expression
	AssignKind    AssignKind
	AssertMessage *Expression
}
