package gleamir

// PatKind discriminates the sum type Pattern.
type PatKind uint8

const (
	PatWildcard PatKind = iota
	PatVar
	PatIntLiteral
	PatFloatLiteral
	PatStringLiteral
	PatStringPrefix
	PatTuple
	PatList
	PatVariant
	PatBitArray
	PatAs
	PatAlternative
)

// Pattern is one node of the typed pattern tree. As with Expression, only
// the fields relevant to Kind are populated.
type Pattern struct {
	Kind PatKind
	Line int

	// Variable bind / as-alias.
	Name string

	// Literals.
	IntText    string
	FloatText  string
	StringText string

	// String-prefix pattern: `"prefix" as matched <> rest`.
	Prefix      string
	RestName    string
	MatchedName string

	// Tuple / list.
	Elements []Pattern
	HasTail  bool
	TailName string // "" means an unnamed tail (`.._`)

	// Variant.
	Tag           string
	Fields        []PatternField
	HasFieldsRest bool

	// Bit array.
	Segments []BitArrayPatternSegment

	// As-pattern: the wrapped sub-pattern.
	Sub *Pattern

	// Alternative pattern: `p1 | p2 | ...`.
	Alternatives []Pattern
}

// PatternField is one labelled-or-positional field of a variant pattern.
type PatternField struct {
	Label      string
	Positional bool
	Pattern    Pattern
}

func (f PatternField) Labelled() bool { return !f.Positional }

// BitArrayPatternSegment is one `<<name:type-size>>` matching segment.
type BitArrayPatternSegment struct {
	Kind        string // "int", "bytes", "bits"
	HasSize     bool
	SizeBits    int
	Unit        int
	BindingName string
	IsTail      bool
}
