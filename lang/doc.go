// Package lang compiles l20n localization resources and resolves them against
// caller-supplied data.
//
// A resource is a sequence of entries. Entities name a string pattern or a
// hash of variants, optionally with default indices and attributes; macros
// are named fixed-arity functions over a single expression.
//
// # Grammar
//
// Informal EBNF:
//
//	Resource   → (Entry | Comment | Import)* EOF
//	Entry      → '<' Identifier (MacroTail | EntityTail)
//	MacroTail  → '(' (Var (',' Var)*)? ')' '{' Expr '}' '>'
//	EntityTail → Indices? WS Value Attr* '>'
//	Indices    → '[' Expr (',' Expr)* ']'
//	Attr       → Identifier Indices? ':' Value
//	Value      → String | Multiline | Hash
//	Hash       → '{' ('*'? Key ':' Value (',' '*'? Key ':' Value)* ','?)? '}'
//	Comment    → '/*' .* '*/'
//	Import     → 'import(' String ')'
//
// Strings are quoted with ' or " and may hold placeables, {{ expr, ... }}.
// A multi-line pattern starts on the line after the identifier with every
// line prefixed by '|'.
//
// Expression precedence, lowest first: conditional (?:), ||, &&, == and !=,
// relational, additive, %, multiplicative, unary prefix, then the postfix
// chain of .name, [expr], ::name, ::[expr] and calls.
//
// # Example
//
//	<brand 'Rust'
//	       long: 'Rust Lang'>
//	<hi 'Hello, {{ brand::long }}!'>
//	<fac($n) { $n == 0 ? 1 : $n * fac($n - 1) }>
//	<mail['many'] { zero: 'empty', one: 'one', many: 'too many' }>
//
// # Resolution
//
// [Compile] turns a [Resource] into an immutable [Env]. [Env.Resolve] reduces
// an entry to [data.Data] one step at a time under a [ResolveContext]. Hash
// variants are selected by the index of an enclosing property access, then
// the '*' default key, then the entity's default index. Operators are
// strictly typed; mixing kinds fails with WrongType. Every step is charged
// against a depth budget, so self-referential entries fail with
// DepthExceeded instead of recursing forever.
//
// # Wire shape
//
// [EncodeWire] and [DecodeWire] convert a resource to and from the JSON
// object keyed by entry id that other l20n tools exchange.
package lang
