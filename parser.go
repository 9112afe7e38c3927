// parser.go: recursive-descent parser producing the tagged AST (spec §4.2).
// One-token lookahead comes from the parser's own `cur`; a second token of
// lookahead, needed only for named-tuple-element disambiguation, comes
// straight from the lexer's Peek. Template
// instantiation is the only construct that backtracks, via a full
// Lexer.Snapshot/Restore pair.
package ember

import "fmt"

// ParseError is a syntax diagnostic with 1-based source position.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parser holds lexer + one-token lookahead + the first-error-wins flag
// (spec §4.2: "On first error the parser records line, column, and a
// message; further parsing may continue but no new error overwrites the
// first").
type Parser struct {
	lex         *Lexer
	cur         Token
	hadError    bool
	errLine     int
	errCol      int
	errMsg      string
	errIsLex    bool // the recorded first error came from the lexer
	speculating int  // >0 while inside a backtracking attempt: errors are soft
}

// NewParser creates a parser over src and primes the first token.
func NewParser(src string) (*Parser, error) {
	p := &Parser{lex: NewLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse parses an entire program and returns the root Program node. Parse
// errors are recorded on the Parser (first one wins) rather than returned,
// matching spec §4.2 — callers should check Err() after calling Parse.
func Parse(src string) (*Node, *Parser) {
	p, lexErr := NewParser(src)
	if lexErr != nil {
		pp := &Parser{hadError: true}
		if le, ok := lexErr.(*LexError); ok {
			pp.errLine, pp.errCol, pp.errMsg = le.Line, le.Col, le.Msg
			pp.errIsLex = true
		}
		return newNode(KProgram, 1, 1), pp
	}
	return p.parseProgram(), p
}

// Err returns the first recorded parse error, or nil.
func (p *Parser) Err() error {
	if !p.hadError {
		return nil
	}
	if p.errIsLex {
		return &LexError{Line: p.errLine, Col: p.errCol, Msg: p.errMsg}
	}
	return &ParseError{Line: p.errLine, Col: p.errCol, Msg: p.errMsg}
}

func (p *Parser) error(msg string) {
	if p.speculating > 0 {
		p.hadError = true // used locally to detect speculative failure; caller restores
		return
	}
	if p.errMsg == "" {
		p.hadError = true
		p.errLine, p.errCol, p.errMsg = p.cur.Line, p.cur.Col, msg
	}
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		if le, ok := err.(*LexError); ok {
			p.hadError = true
			if p.errMsg == "" {
				p.errLine, p.errCol, p.errMsg = le.Line, le.Col, le.Msg
				p.errIsLex = p.speculating == 0
			}
		}
		p.cur = Token{Type: EOF}
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) check(tt TokenType) bool { return p.cur.Type == tt }

func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt TokenType, msg string) Token {
	tok := p.cur
	if !p.check(tt) {
		p.error(msg)
		return tok
	}
	p.advance()
	return tok
}

func (p *Parser) atStatementEnd() bool {
	switch p.cur.Type {
	case SEMI, NEWLINE, RBRACE, EOF:
		return true
	}
	return false
}

func (p *Parser) skipSeparators() {
	for p.cur.Type == SEMI || p.cur.Type == NEWLINE {
		p.advance()
	}
}

// ---- top level ----

func (p *Parser) parseProgram() *Node {
	prog := newNode(KProgram, p.cur.Line, p.cur.Col)
	p.skipSeparators()
	for p.cur.Type != EOF {
		stmt := p.parseStatement()
		prog.addChild(stmt)
		if p.cur.Type != SEMI && p.cur.Type != NEWLINE && p.cur.Type != EOF {
			// Best-effort recovery: if a statement didn't end cleanly, stop
			// relying on separators and just continue from here.
		}
		p.skipSeparators()
	}
	return prog
}

func (p *Parser) parseStatement() *Node {
	line, col := p.cur.Line, p.cur.Col
	switch p.cur.Type {
	case FN:
		p.advance()
		return p.parseFnDecl(false, line, col)
	case VAR:
		p.advance()
		return p.parseVarDecl(false, line, col)
	case PAT:
		p.advance()
		return p.parsePatDecl(false, line, col)
	case PUB:
		p.advance()
		switch p.cur.Type {
		case IMPORT:
			p.error("pub import is not allowed")
			p.advance()
			return p.parseImportDeclTail(line, col)
		case FN:
			p.advance()
			return p.parseFnDecl(true, line, col)
		case VAR:
			p.advance()
			return p.parseVarDecl(true, line, col)
		case PAT:
			p.advance()
			return p.parsePatDecl(true, line, col)
		default:
			p.error("expected 'fn', 'var', or 'pat' after 'pub'")
			return newNode(KNullLit, line, col)
		}
	case IMPORT:
		p.advance()
		return p.parseImportDeclTail(line, col)
	case FOR:
		return p.parseFor()
	case WHILE:
		return p.parseWhile()
	case BREAK:
		p.advance()
		return newNode(KBreak, line, col)
	case YIELD:
		p.advance()
		n := newNode(KYield, line, col)
		if !p.atStatementEnd() {
			n.Init = p.parseExpr()
		}
		return n
	case RETURN:
		p.advance()
		n := newNode(KReturn, line, col)
		if !p.atStatementEnd() {
			n.Init = p.parseExpr()
		}
		return n
	case LBRACE:
		return p.parseScope()
	default:
		return p.parseExpr()
	}
}

// ---- annotation form: name [: type] [:: attrs] [= init] (spec §4.2) ----

func (p *Parser) parseAttrs(n *Node) {
	for {
		switch p.cur.Type {
		case STATIC:
			n.IsStatic = true
			p.advance()
		case CONST:
			n.IsConst = true
			p.advance()
		case CONSTEXPR:
			n.IsConstexpr = true
			p.advance()
		default:
			return
		}
	}
}

// parseAnnotated parses `name [: type] [:: attrs] [= init]` into a
// KParam-shaped node (spec §4.2). Used for var decls, parameters, and
// named return-tuple slots.
func (p *Parser) parseAnnotated() *Node {
	line, col := p.cur.Line, p.cur.Col
	name := p.expect(IDENT, "expected identifier").Lexeme
	n := newNode(KParam, line, col)
	n.Name = name

	sawDColon := false
	if p.match(COLON) {
		n.TypeAnn = p.parseTypeAnn()
		if p.match(DCOLON) {
			sawDColon = true
			p.parseAttrs(n)
		}
	} else if p.match(DCOLON) {
		sawDColon = true
		p.parseAttrs(n)
	}

	if p.match(ASSIGN) {
		n.Init = p.parseAssignment()
	} else if sawDColon && n.TypeAnn == nil && (n.IsStatic || n.IsConst || n.IsConstexpr) {
		p.error("type omitted with '::' but no '=' initializer")
	}
	return n
}

func (p *Parser) parseTypeAnn() *Node {
	line, col := p.cur.Line, p.cur.Col
	if p.cur.Type == LPAREN {
		// Return-tuple type form: (name:Type, ...)
		p.advance()
		n := newNode(KTypeAnn, line, col)
		if p.cur.Type != RPAREN {
			n.addChild(p.parseAnnotated())
			for p.match(COMMA) {
				n.addChild(p.parseAnnotated())
			}
		}
		p.expect(RPAREN, "expected ')' to close return tuple type")
		return n
	}
	name := p.expect(IDENT, "expected type name").Lexeme
	n := newNode(KTypeAnn, line, col)
	n.Name = name
	return n
}

// ---- fn / var / pat / import ----

func (p *Parser) parseTemplateParams() []*Node {
	if p.cur.Type != LT {
		return nil
	}
	p.advance()
	var params []*Node
	for {
		line, col := p.cur.Line, p.cur.Col
		name := p.expect(IDENT, "expected template parameter name").Lexeme
		pn := newNode(KParam, line, col)
		pn.Name = name
		params = append(params, pn)
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(GT, "expected '>' to close template parameter list")
	return params
}

func (p *Parser) parseFnDecl(isPub bool, line, col int) *Node {
	n := newNode(KFnDecl, line, col)
	n.IsPub = isPub
	n.Tmpl = p.parseTemplateParams()

	switch p.cur.Type {
	case IDENT:
		n.Name = p.cur.Lexeme
		p.advance()
	case CUSTOM_OP:
		n.Op = p.cur.Lexeme
		p.advance()
	default:
		p.error("expected function name or custom operator literal")
	}

	p.expect(LPAREN, "expected '(' after function name")
	if p.cur.Type != RPAREN {
		n.addChild(p.parseParam())
		for p.match(COMMA) {
			n.addChild(p.parseParam())
		}
	}
	p.expect(RPAREN, "expected ')' after parameter list")

	if p.match(COLON) {
		n.TypeAnn = p.parseTypeAnn()
	}
	if p.match(DCOLON) {
		p.parseAttrs(n)
	}
	if p.cur.Type == LBRACE {
		n.Body = p.parseScope()
	}
	return n
}

func (p *Parser) parseParam() *Node {
	qualifier := ""
	if p.match(COPY) {
		qualifier = "copy"
	} else if p.match(MOVE) {
		qualifier = "move"
	}
	n := p.parseAnnotated()
	n.Op = qualifier
	return n
}

func (p *Parser) parseVarDecl(isPub bool, line, col int) *Node {
	n := p.parseAnnotated()
	n.Kind = KVarDecl
	n.Line, n.Col = line, col
	n.IsPub = isPub
	return n
}

func (p *Parser) parsePatDecl(isPub bool, line, col int) *Node {
	n := newNode(KPatDecl, line, col)
	n.IsPub = isPub
	n.Tmpl = p.parseTemplateParams()
	n.Name = p.expect(IDENT, "expected pattern name").Lexeme

	if p.match(COLON) {
		n.addChild(p.parseIdentRef())
		for p.match(PIPE) {
			n.addChild(p.parseIdentRef())
		}
	}
	if p.match(DCOLON) {
		p.parseAttrs(n)
	}
	n.Body = p.parseScope()
	return n
}

func (p *Parser) parseIdentRef() *Node {
	line, col := p.cur.Line, p.cur.Col
	name := p.expect(IDENT, "expected identifier").Lexeme
	n := newNode(KIdent, line, col)
	n.Name = name
	return n
}

func (p *Parser) parseImportDeclTail(line, col int) *Node {
	n := newNode(KImportDecl, line, col)
	path := p.expect(IDENT, "expected module path").Lexeme
	for p.match(DOT) {
		path += "." + p.expect(IDENT, "expected module path segment").Lexeme
	}
	n.Name = path

	if p.match(AS) {
		n.Op = p.expect(IDENT, "expected alias identifier").Lexeme
	}
	if p.match(OF) {
		if p.match(LBRACE) {
			n.addChild(p.parseImportItem())
			for p.match(COMMA) {
				n.addChild(p.parseImportItem())
			}
			p.expect(RBRACE, "expected '}' to close import item list")
		} else {
			n.addChild(p.parseImportItem())
		}
	}
	return n
}

func (p *Parser) parseImportItem() *Node {
	line, col := p.cur.Line, p.cur.Col
	n := newNode(KImportItem, line, col)
	n.Name = p.expect(IDENT, "expected imported item name").Lexeme
	if p.match(AS) {
		n.Op = p.expect(IDENT, "expected alias identifier").Lexeme
	}
	return n
}

// ---- for / while / switch ----

// parseFor parses `for (ident : range-expr) { body }` (SPEC_FULL concrete
// syntax choice — the keyword set in spec §3 has no `in`, so the loop
// variable and range share the same `name : expr` form tuple elements use).
func (p *Parser) parseFor() *Node {
	line, col := p.cur.Line, p.cur.Col
	p.advance() // FOR
	n := newNode(KFor, line, col)
	p.expect(LPAREN, "expected '(' after 'for'")
	n.Name = p.expect(IDENT, "expected loop variable name").Lexeme
	p.expect(COLON, "expected ':' between loop variable and range expression")
	n.Init = p.parseExpr()
	p.expect(RPAREN, "expected ')' to close for-loop header")
	n.Body = p.parseScope()
	return n
}

// parseWhile parses `while [(cond)] { body } [(cond)]` — leading condition,
// trailing condition, or both (spec §4.3).
func (p *Parser) parseWhile() *Node {
	line, col := p.cur.Line, p.cur.Col
	p.advance() // WHILE
	n := newNode(KWhile, line, col)
	if p.cur.Type == LPAREN {
		p.advance()
		n.Cond = p.parseExpr()
		p.expect(RPAREN, "expected ')' after while condition")
	}
	n.Body = p.parseScope()
	if p.cur.Type == LPAREN {
		p.advance()
		n.Alt = p.parseExpr() // trailing condition
		p.expect(RPAREN, "expected ')' after trailing while condition")
	}
	return n
}

func (p *Parser) parseSwitch() *Node {
	line, col := p.cur.Line, p.cur.Col
	p.advance() // SWITCH
	n := newNode(KSwitch, line, col)
	p.expect(LPAREN, "expected '(' after 'switch'")
	n.Init = p.parseExpr()
	p.expect(RPAREN, "expected ')' after switch tag expression")
	p.expect(LBRACE, "expected '{' to start switch body")
	p.skipSeparators()
	for p.cur.Type != RBRACE && p.cur.Type != EOF {
		cline, ccol := p.cur.Line, p.cur.Col
		c := newNode(KCase, cline, ccol)
		if p.match(CASE) {
			c.Cond = p.parseExpr()
			p.expect(COLON, "expected ':' after case expression")
		} else if p.match(DEFAULT) {
			p.expect(COLON, "expected ':' after 'default'")
		} else {
			p.error("expected 'case' or 'default' in switch body")
			break
		}
		c.Body = p.parseScope()
		p.match(BREAK)
		n.addChild(c)
		p.skipSeparators()
	}
	p.expect(RBRACE, "expected '}' to close switch body")
	return n
}

// ---- scope ----

func (p *Parser) parseScope() *Node {
	line, col := p.cur.Line, p.cur.Col
	p.expect(LBRACE, "expected '{'")
	n := newNode(KScope, line, col)
	p.skipSeparators()
	for p.cur.Type != RBRACE && p.cur.Type != EOF {
		n.addChild(p.parseStatement())
		p.skipSeparators()
	}
	p.expect(RBRACE, "expected '}'")
	return n
}

// ---- expressions ----

func (p *Parser) parseExpr() *Node { return p.parseAssignment() }

func isAssignableTarget(n *Node) bool {
	return n.Kind == KIdent || n.Kind == KMember || n.Kind == KIndex
}

func (p *Parser) parseAssignment() *Node {
	lhs := p.parseTernary()
	if p.cur.Type == ASSIGN {
		line, col := p.cur.Line, p.cur.Col
		p.advance()
		rhs := p.parseAssignment()
		if lhs.Kind == KTuple {
			allAssignable := len(lhs.Children) > 0
			for _, c := range lhs.Children {
				if !isAssignableTarget(c) {
					allAssignable = false
					break
				}
			}
			if allAssignable {
				n := newNode(KMultiAssign, line, col)
				n.Children = lhs.Children
				n.Init = rhs
				return n
			}
		}
		n := newNode(KAssign, line, col)
		n.addChild(lhs)
		n.Init = rhs
		return n
	}
	return lhs
}

func (p *Parser) parseTernary() *Node {
	cond := p.parseLogicalOr()
	if p.cur.Type == QUESTION {
		line, col := p.cur.Line, p.cur.Col
		p.advance()
		n := newNode(KOptional, line, col)
		n.Cond = cond
		n.Body = p.parseTernary()
		if p.match(COLON) {
			n.Alt = p.parseTernary()
		}
		return n
	}
	return cond
}

func (p *Parser) binaryLevel(next func() *Node, ops ...TokenType) *Node {
	left := next()
	for {
		matched := false
		for _, op := range ops {
			if p.cur.Type == op {
				line, col := p.cur.Line, p.cur.Col
				opStr := p.cur.Type.String()
				p.advance()
				right := next()
				n := newNode(KBinOp, line, col)
				n.Op = opStr
				n.addChild(left)
				n.addChild(right)
				left = n
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
	}
}

func (p *Parser) parseLogicalOr() *Node  { return p.binaryLevel(p.parseLogicalAnd, OROR) }
func (p *Parser) parseLogicalAnd() *Node { return p.binaryLevel(p.parseBitOr, ANDAND) }
func (p *Parser) parseBitOr() *Node      { return p.binaryLevel(p.parseBitXor, PIPE) }
func (p *Parser) parseBitXor() *Node     { return p.binaryLevel(p.parseBitAnd, CARET) }
func (p *Parser) parseBitAnd() *Node     { return p.binaryLevel(p.parseEquality, AMP) }
func (p *Parser) parseEquality() *Node   { return p.binaryLevel(p.parseRelational, EQ, NEQ) }
func (p *Parser) parseRelational() *Node { return p.binaryLevel(p.parseShift, LT, GT, LE, GE) }
func (p *Parser) parseShift() *Node      { return p.binaryLevel(p.parseAdditive, SHL, SHR) }
func (p *Parser) parseAdditive() *Node   { return p.binaryLevel(p.parseMultiplicative, PLUS, MINUS) }
func (p *Parser) parseMultiplicative() *Node {
	return p.binaryLevel(p.parseUnary, STAR, SLASH, PERCENT)
}

func (p *Parser) parseUnary() *Node {
	switch p.cur.Type {
	case MINUS, BANG, TILDE, COPY, MOVE:
		line, col := p.cur.Line, p.cur.Col
		opStr := p.cur.Type.String()
		kind := KUnOp
		if p.cur.Type == COPY {
			kind = KCopy
		} else if p.cur.Type == MOVE {
			kind = KMove
		}
		p.advance()
		operand := p.parseUnary()
		n := newNode(kind, line, col)
		n.Op = opStr
		n.addChild(operand)
		return n
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() *Node {
	expr := p.parsePrimary()
	for {
		switch p.cur.Type {
		case DOT:
			p.advance()
			line, col := p.cur.Line, p.cur.Col
			name := p.expect(IDENT, "expected member name after '.'").Lexeme
			n := newNode(KMember, line, col)
			n.addChild(expr)
			n.Name = name
			expr = n
		case LPAREN:
			line, col := p.cur.Line, p.cur.Col
			p.advance()
			n := newNode(KCall, line, col)
			n.addChild(expr)
			if p.cur.Type != RPAREN {
				n.addChild(p.parseAssignment())
				for p.match(COMMA) {
					n.addChild(p.parseAssignment())
				}
			}
			p.expect(RPAREN, "expected ')' to close call arguments")
			expr = n
		case LBRACKET:
			line, col := p.cur.Line, p.cur.Col
			p.advance()
			idx := p.parseExpr()
			p.expect(RBRACKET, "expected ']' to close index expression")
			n := newNode(KIndex, line, col)
			n.addChild(expr)
			n.addChild(idx)
			expr = n
		case LT:
			if n, ok := p.tryTemplateInst(expr); ok {
				expr = n
				continue
			}
			return expr
		default:
			return expr
		}
	}
}

// tryTemplateInst speculatively parses `<type, ...>` as a template
// instantiation of expr, snapshotting and restoring full lexer + parser
// state on any failure (spec §4.2 speculative template parsing).
func (p *Parser) tryTemplateInst(base *Node) (*Node, bool) {
	lexSnap := p.lex.Snapshot()
	curSnap := p.cur
	errSnap := p.hadError
	lineSnap, colSnap, msgSnap := p.errLine, p.errCol, p.errMsg

	p.speculating++
	p.advance() // consume '<'

	var types []*Node
	ok := true
	t := p.parseTypeAnnSoft()
	if t == nil {
		ok = false
	} else {
		types = append(types, t)
		for ok && p.cur.Type == COMMA {
			p.advance()
			t2 := p.parseTypeAnnSoft()
			if t2 == nil {
				ok = false
				break
			}
			types = append(types, t2)
		}
	}
	if ok && p.cur.Type == GT {
		p.advance()
	} else {
		ok = false
	}
	failed := !ok || p.hadError
	p.speculating--

	if failed {
		p.lex.Restore(lexSnap)
		p.cur = curSnap
		p.hadError = errSnap
		p.errLine, p.errCol, p.errMsg = lineSnap, colSnap, msgSnap
		return base, false
	}

	n := newNode(KTemplateInst, base.Line, base.Col)
	n.addChild(base)
	n.Tmpl = types
	return n, true
}

// parseTypeAnnSoft is parseTypeAnn but bails out (returns nil) instead of
// recording a hard error when the current token can't start a type — used
// only while speculating inside tryTemplateInst.
func (p *Parser) parseTypeAnnSoft() *Node {
	if p.cur.Type != IDENT && p.cur.Type != LPAREN {
		return nil
	}
	return p.parseTypeAnn()
}

func (p *Parser) parsePrimary() *Node {
	line, col := p.cur.Line, p.cur.Col
	switch p.cur.Type {
	case INT_LIT:
		n := newNode(KIntLit, line, col)
		n.IntVal = p.cur.IntVal
		p.advance()
		return n
	case FLOAT_LIT:
		n := newNode(KFloatLit, line, col)
		n.FltVal = p.cur.FltVal
		p.advance()
		return n
	case STRING_LIT:
		n := newNode(KStrLit, line, col)
		n.StrVal = p.cur.Lexeme
		p.advance()
		return n
	case NULL:
		p.advance()
		return newNode(KNullLit, line, col)
	case IDENT:
		n := newNode(KIdent, line, col)
		n.Name = p.cur.Lexeme
		p.advance()
		return n
	case LPAREN:
		return p.parseParenOrTuple()
	case LBRACE:
		return p.parseScope()
	case FOR:
		return p.parseFor()
	case WHILE:
		return p.parseWhile()
	case SWITCH:
		return p.parseSwitch()
	default:
		p.error(fmt.Sprintf("unexpected token %q in expression", p.cur.Type.String()))
		tok := p.cur
		if tok.Type != EOF {
			p.advance()
		}
		return newNode(KNullLit, line, col)
	}
}

// parseParenOrTuple implements spec §4.2's tuple-literal disambiguation: a
// parenthesized expression is a tuple iff it has a top-level comma or its
// first element was a named `ident : expr`; otherwise it's a plain grouped
// expression.
func (p *Parser) parseParenOrTuple() *Node {
	line, col := p.cur.Line, p.cur.Col
	p.advance() // '('

	if p.cur.Type == RPAREN {
		p.advance()
		return newNode(KTuple, line, col)
	}

	firstName, firstExpr := p.parseTupleElement()
	if p.cur.Type == COMMA || firstName != "" {
		n := newNode(KTuple, line, col)
		n.addChild(wrapTupleElement(firstName, firstExpr))
		for p.match(COMMA) {
			name, expr := p.parseTupleElement()
			n.addChild(wrapTupleElement(name, expr))
		}
		p.expect(RPAREN, "expected ')' to close tuple literal")
		return n
	}
	p.expect(RPAREN, "expected ')' to close parenthesized expression")
	return firstExpr
}

// parseTupleElement parses one `[ident :] expr` tuple element, using the
// lexer's own Peek for the second token of lookahead needed to tell a named
// element from a plain expression that happens to start with an identifier.
func (p *Parser) parseTupleElement() (name string, expr *Node) {
	if p.cur.Type == IDENT {
		if nxt, err := p.lex.Peek(); err == nil && nxt.Type == COLON {
			name = p.cur.Lexeme
			p.advance() // ident
			p.advance() // ':'
			expr = p.parseAssignment()
			return name, expr
		}
	}
	expr = p.parseAssignment()
	return "", expr
}

// wrapTupleElement stores a named tuple element's name on a Param-shaped
// child (spec §4.2: "Named elements store their name on a Param-shaped
// child"); unnamed elements are stored as the bare expression node.
func wrapTupleElement(name string, expr *Node) *Node {
	if name == "" {
		return expr
	}
	n := newNode(KParam, expr.Line, expr.Col)
	n.Name = name
	n.Init = expr
	return n
}
