package lang

// Binary operator precedence, lowest first. Each level is left-associative.
var binaryLevels = [...][]BinOp{
	{OpOr},
	{OpAnd},
	{OpEq, OpNe},
	{OpLe, OpGe, OpLt, OpGt}, // two-character operators first
	{OpAdd, OpSub},
	{OpRem},
	{OpMul, OpDiv},
}

// parseExpr parses: Or ('?' Expr ':' Expr)?.
func (p *parser) parseExpr() (Expr, *ParseError) {
	test, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	start := p.mark()
	p.skipWS()

	if !p.at('?') {
		p.reset(start)

		return test, nil
	}

	p.bump()
	p.skipWS()

	cons, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipWS()

	if !p.at(':') || p.atString("::") {
		return nil, p.fail(ExprError, "expected ':' in conditional")
	}

	p.bump()
	p.skipWS()

	alt, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &CondExpr{Test: test, Cons: cons, Alt: alt}, nil
}

// parseBinary parses one precedence level by climbing to the next.
func (p *parser) parseBinary(level int) (Expr, *ParseError) {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}

	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		start := p.mark()
		p.skipWS()

		op, ok := p.binaryOp(binaryLevels[level])
		if !ok {
			if err := p.strayOp(); err != nil {
				return nil, err
			}

			p.reset(start)

			return left, nil
		}

		p.bumpN(len(op))
		p.skipWS()

		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}

		left = &BinExpr{Left: left, Op: op, Right: right}
	}
}

// binaryOp returns the first operator of ops the input continues with. Both
// characters of a two-character operator are inspected before committing, so
// "<=" is never read as "<".
func (p *parser) binaryOp(ops []BinOp) (BinOp, bool) {
	for _, op := range ops {
		if !p.atString(string(op)) {
			continue
		}

		if len(op) == 1 && p.peek2() == '=' && (op == OpLt || op == OpGt) {
			continue
		}

		return op, true
	}

	return "", false
}

// strayOp reports single characters that only form operators when doubled.
func (p *parser) strayOp() *ParseError {
	switch {
	case p.at('=') && p.peek2() != '=':
		return p.fail(OpError, "unknown operator '='")
	case p.at('&') && p.peek2() != '&':
		return p.fail(OpError, "unknown operator '&'")
	case p.at('|') && p.peek2() != '|':
		return p.fail(OpError, "unknown operator '|'")
	default:
		return nil
	}
}

// parseUnary parses: ('+' | '-' | '!') Unary | Postfix.
func (p *parser) parseUnary() (Expr, *ParseError) {
	var op UnOp

	switch {
	case p.at('!') && p.peek2() != '=':
		op = OpNot
	case p.at('+'):
		op = OpPlus
	case p.at('-') && !isDigit(p.peek2()):
		op = OpMinus
	default:
		return p.parsePostfix()
	}

	p.bump()
	p.skipWS()

	arg, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &UnExpr{Op: op, Arg: arg}, nil
}

// parsePostfix parses: Primary ('.' Ident | '[' Expr ']' | '::' Ident |
// '::[' Expr ']' | '(' Args ')')*.
func (p *parser) parsePostfix() (Expr, *ParseError) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.at('.') && isIdentStart(p.peek2()):
			p.bump()

			id, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}

			e = &PropExpr{Obj: e, Key: &IdentExpr{Name: id}, Access: Static}

		case p.at('['):
			key, err := p.parseComputedKey(ExprError)
			if err != nil {
				return nil, err
			}

			e = &PropExpr{Obj: e, Key: key, Access: Computed}

		case p.atString("::"):
			switch e.(type) {
			case *IdentExpr, *ParenExpr, *ThisExpr:
			default:
				return nil, p.fail(AttrError,
					"attribute access requires an identifier, '~' or parentheses")
			}

			p.bumpN(2)

			if p.at('[') {
				key, err := p.parseComputedKey(AttrError)
				if err != nil {
					return nil, err
				}

				e = &AttrExpr{Obj: e, Key: key, Access: Computed}

				continue
			}

			if !isIdentStart(p.peek()) {
				return nil, p.fail(AttrError, "expected attribute name")
			}

			id, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}

			e = &AttrExpr{Obj: e, Key: &IdentExpr{Name: id}, Access: Static}

		case p.at('('):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}

			e = &CallExpr{Callee: e, Args: args}

		default:
			return e, nil
		}
	}
}

// parseComputedKey parses: '[' Expr ']'.
func (p *parser) parseComputedKey(kind ParseErrorKind) (Expr, *ParseError) {
	p.bump() // '['
	p.skipWS()

	key, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipWS()

	if !p.at(']') {
		return nil, p.fail(kind, "expected ']'")
	}

	p.bump()

	return key, nil
}

// parseArgs parses: '(' (Arg (',' Arg)*)? ')' where Arg is Expr or
// Ident ':' Expr.
func (p *parser) parseArgs() ([]Expr, *ParseError) {
	p.bump() // '('
	p.skipWS()

	if p.at(')') {
		p.bump()

		return nil, nil
	}

	var args []Expr

	for {
		p.skipWS()

		at := p.mark()

		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		p.skipWS()

		if p.at(':') && !p.atString("::") {
			ident, ok := arg.(*IdentExpr)
			if !ok {
				return nil, p.failAt(at, CallError,
					"keyword argument name must be an identifier")
			}

			p.bump()
			p.skipWS()

			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			arg = &KVExpr{Name: ident.Name, Value: val}

			p.skipWS()
		}

		args = append(args, arg)

		switch {
		case p.at(','):
			p.bump()
		case p.at(')'):
			p.bump()

			return args, nil
		default:
			return nil, p.fail(CallError, "expected ',' or ')'")
		}
	}
}

// parsePrimary parses: Number | String | '$' Ident | '@' Ident | '~' |
// '(' Expr ')' | Ident.
func (p *parser) parsePrimary() (Expr, *ParseError) {
	switch r := p.peek(); {
	case isDigit(r) || (r == '-' && isDigit(p.peek2())):
		return &NumExpr{Text: p.scanNumber()}, nil

	case r == '\'' || r == '"':
		v, err := p.parseString()
		if err != nil {
			return nil, err
		}

		return &ValExpr{Value: v}, nil

	case r == '$':
		return p.parseVariable()

	case r == '@':
		p.bump()

		if !isIdentStart(p.peek()) {
			return nil, p.fail(VarError, "expected global name")
		}

		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		return &GlobalExpr{Name: id}, nil

	case r == '~':
		p.bump()

		return &ThisExpr{}, nil

	case r == '(':
		p.bump()
		p.skipWS()

		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		p.skipWS()

		if !p.at(')') {
			return nil, p.fail(ParenError, "expected ')'")
		}

		p.bump()

		return &ParenExpr{Expr: e}, nil

	case isIdentStart(r):
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		return &IdentExpr{Name: id}, nil

	default:
		return nil, p.fail(ExprError, p.unexpected())
	}
}

// parseVariable parses: '$' Ident.
func (p *parser) parseVariable() (*VarExpr, *ParseError) {
	p.bump() // '$'

	if !isIdentStart(p.peek()) {
		return nil, p.fail(VarError, "expected variable name")
	}

	id, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	return &VarExpr{Name: id}, nil
}
