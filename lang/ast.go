package lang

// Resource is the parsed form of one l20n source text, with entries in source
// order.
type Resource struct {
	Entries []Entry
}

// Entry is a top-level item of a [Resource]: [*Entity], [*Macro], [*Import] or
// [*Comment].
type Entry interface {
	entry()
}

// Entity is a named value with optional default indices and attributes.
//
//	<id[indices] value attr: value>
type Entity struct {
	ID      string
	Value   Value
	Indices []Expr
	Attrs   []*Attr
}

// Attr is a secondary named value attached to an [Entity].
type Attr struct {
	ID      string
	Value   Value
	Indices []Expr
}

// Macro is a named, fixed-arity function with a single expression body.
//
//	<id($a, $b) { expr }>
type Macro struct {
	ID     string
	Params []*VarExpr
	Body   Expr
}

// Import references another resource by path. It is kept for tooling and has
// no effect on resolution.
type Import struct {
	Path string
}

// Comment is the verbatim text between "/*" and "*/".
type Comment struct {
	Text string
}

func (*Entity) entry()  {}
func (*Macro) entry()   {}
func (*Import) entry()  {}
func (*Comment) entry() {}

// EntryID returns the identifier of e and false for entries without one.
func EntryID(e Entry) (string, bool) {
	switch e := e.(type) {
	case *Entity:
		return e.ID, true
	case *Macro:
		return e.ID, true
	default:
		return "", false
	}
}

// Attr returns the first attribute named id.
func (e *Entity) Attr(id string) (*Attr, bool) {
	for _, a := range e.Attrs {
		if a.ID == id {
			return a, true
		}
	}

	return nil, false
}

// Value is the content of an entity, attribute or hash variant: [*Str],
// [*ComplexStr] or [*Hash].
type Value interface {
	value()
}

// Str is a pattern without placeables.
type Str struct {
	Text string
}

// ComplexStr is a pattern with at least one placeable. Literal text segments
// are stored as [*ValExpr] holding a [*Str].
type ComplexStr struct {
	Parts []Expr
}

// Hash is a table of variants selected by index.
type Hash struct {
	Variants     []*Variant
	Default      string // key of the variant marked with '*', or ""
	DefaultIndex Expr   // set by compilation from the owner's indices
}

// Variant is one keyed entry of a [Hash].
type Variant struct {
	Key   string
	Value Value
}

func (*Str) value()        {}
func (*ComplexStr) value() {}
func (*Hash) value()       {}

// Lookup returns the value of the variant with the given key.
func (h *Hash) Lookup(key string) (Value, bool) {
	for _, v := range h.Variants {
		if v.Key == key {
			return v.Value, true
		}
	}

	return nil, false
}

// Keys returns the variant keys in source order.
func (h *Hash) Keys() []string {
	keys := make([]string, len(h.Variants))
	for i, v := range h.Variants {
		keys[i] = v.Key
	}

	return keys
}

// Expr is a node of the expression language.
type Expr interface {
	expr()
}

// Access distinguishes `a.b` / `a::b` (Static) from `a[b]` / `a::[b]`
// (Computed).
type Access int

const (
	Static Access = iota
	Computed
)

// BinOp is a binary operator.
type BinOp string

const (
	OpOr  BinOp = "||"
	OpAnd BinOp = "&&"
	OpEq  BinOp = "=="
	OpNe  BinOp = "!="
	OpLt  BinOp = "<"
	OpLe  BinOp = "<="
	OpGt  BinOp = ">"
	OpGe  BinOp = ">="
	OpAdd BinOp = "+"
	OpSub BinOp = "-"
	OpRem BinOp = "%"
	OpMul BinOp = "*"
	OpDiv BinOp = "/"
)

// UnOp is a unary prefix operator.
type UnOp string

const (
	OpPlus  UnOp = "+"
	OpMinus UnOp = "-"
	OpNot   UnOp = "!"
)

type (
	// CondExpr is `test ? cons : alt`.
	CondExpr struct {
		Test, Cons, Alt Expr
	}
	// BinExpr is `left op right`.
	BinExpr struct {
		Left  Expr
		Op    BinOp
		Right Expr
	}
	// UnExpr is `op arg`.
	UnExpr struct {
		Op  UnOp
		Arg Expr
	}
	// VarExpr is `$name`.
	VarExpr struct {
		Name string
	}
	// ValExpr embeds a Value, e.g. a quoted pattern, in an expression.
	ValExpr struct {
		Value Value
	}
	// PropExpr is `obj.key` or `obj[key]`. A static key is an [*IdentExpr].
	PropExpr struct {
		Obj    Expr
		Key    Expr
		Access Access
	}
	// AttrExpr is `obj::key` or `obj::[key]`. A static key is an [*IdentExpr].
	AttrExpr struct {
		Obj    Expr
		Key    Expr
		Access Access
	}
	// CallExpr is `callee(args)`.
	CallExpr struct {
		Callee Expr
		Args   []Expr
	}
	// KVExpr is a keyword argument `name: value` of a call.
	KVExpr struct {
		Name  string
		Value Expr
	}
	// IdentExpr is a reference to an entry.
	IdentExpr struct {
		Name string
	}
	// NumExpr is a numeric literal kept as source text.
	NumExpr struct {
		Text string
	}
	// ParenExpr is `(expr)`.
	ParenExpr struct {
		Expr Expr
	}
	// GlobalExpr is `@name`.
	GlobalExpr struct {
		Name string
	}
	// ThisExpr is `~`, the entity being resolved.
	ThisExpr struct{}
)

func (*CondExpr) expr()   {}
func (*BinExpr) expr()    {}
func (*UnExpr) expr()     {}
func (*VarExpr) expr()    {}
func (*ValExpr) expr()    {}
func (*PropExpr) expr()   {}
func (*AttrExpr) expr()   {}
func (*CallExpr) expr()   {}
func (*KVExpr) expr()     {}
func (*IdentExpr) expr()  {}
func (*NumExpr) expr()    {}
func (*ParenExpr) expr()  {}
func (*GlobalExpr) expr() {}
func (*ThisExpr) expr()   {}

// text returns a literal pattern segment.
func text(s string) Expr { return &ValExpr{Value: &Str{Text: s}} }

// literal reports the text of a literal pattern segment.
func literal(e Expr) (string, bool) {
	v, ok := e.(*ValExpr)
	if !ok {
		return "", false
	}

	s, ok := v.Value.(*Str)
	if !ok {
		return "", false
	}

	return s.Text, true
}
