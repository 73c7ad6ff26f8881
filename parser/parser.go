package parser

import (
	"fmt"
	"strconv"

	"github.com/thiremani/cvxsym/ast"
	"github.com/thiremani/cvxsym/lexer"
	"github.com/thiremani/cvxsym/token"
)

const (
	_ int = iota
	LOWEST
	COMPARE // == <= >=
	SUM     // + -
	PRODUCT // * /
	PREFIX  // -X
	POSTFIX // f(X), x[i], x.T
)

var precedences = map[token.TokenType]int{
	token.EQL:    COMPARE,
	token.LEQ:    COMPARE,
	token.GEQ:    COMPARE,
	token.ADD:    SUM,
	token.SUB:    SUM,
	token.MUL:    PRODUCT,
	token.QUO:    PRODUCT,
	token.LPAREN: POSTFIX,
	token.LBRACK: POSTFIX,
	token.PERIOD: POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []*token.CompileError

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.SUB, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACK, p.parseListLiteral)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.ADD, p.parseInfixExpression)
	p.registerInfix(token.SUB, p.parseInfixExpression)
	p.registerInfix(token.MUL, p.parseInfixExpression)
	p.registerInfix(token.QUO, p.parseInfixExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACK, p.parseIndexExpression)
	p.registerInfix(token.PERIOD, p.parseTransposeExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) Errors() []*token.CompileError {
	return p.errors
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	p.errors = append(p.errors, &token.CompileError{
		Token: tok,
		Msg:   fmt.Sprintf(format, args...),
	})
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorf(p.peekToken, "expected next token to be %s, got %s instead", t, p.peekToken)
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.errorf(tok, "unexpected %s at start of expression", tok)
}

func (p *Parser) stmtEnded() bool {
	return p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF)
}

// skipLine advances to the last token before the next statement boundary.
func (p *Parser) skipLine() {
	for !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.EOF) && !p.stmtEnded() {
		p.nextToken()
	}
}

// ParseProgram parses every statement. Statements with errors are dropped
// and parsing resumes on the next line; check Errors before using the result.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}

		prevLen := len(p.errors)
		stmt := p.parseStatement()
		if stmt != nil && len(p.errors) == prevLen && !p.stmtEnded() {
			p.errorf(p.peekToken, "expected end of statement, got %s", p.peekToken)
		}
		if len(p.errors) > prevLen {
			p.skipLine()
		} else if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.VARIABLE, token.PARAMETER:
		return p.parseDeclStatement()
	case token.MINIMIZE, token.MAXIMIZE:
		return p.parseObjectiveStatement()
	}
	return p.parseConstraintStatement()
}

func (p *Parser) parseDeclStatement() ast.Statement {
	stmt := &ast.DeclStatement{Token: p.curToken}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		decl := &ast.Decl{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			if decl.Dims = p.parseDims(); decl.Dims == nil {
				return nil
			}
		}
		stmt.Decls = append(stmt.Decls, decl)

		if !p.peekTokenIs(token.COMMA) {
			return stmt
		}
		p.nextToken()
	}
}

// parseDims reads (n) or (n, m) with curToken on the '('.
func (p *Parser) parseDims() []int {
	var dims []int
	for {
		if !p.expectPeek(token.NUMBER) {
			return nil
		}
		n, err := strconv.Atoi(p.curToken.Literal)
		if err != nil || n < 1 {
			p.errorf(p.curToken, "dimension %q is not a positive integer", p.curToken.Literal)
			return nil
		}
		dims = append(dims, n)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if len(dims) > 2 {
		p.errorf(p.curToken, "expected at most 2 dimensions, got %d", len(dims))
		return nil
	}
	return dims
}

func (p *Parser) parseObjectiveStatement() ast.Statement {
	stmt := &ast.ObjectiveStatement{Token: p.curToken}
	p.nextToken()
	if stmt.Value = p.parseExpression(LOWEST); stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseConstraintStatement() ast.Statement {
	first := p.curToken
	left := p.parseExpression(COMPARE)
	if left == nil {
		return nil
	}
	if !p.peekToken.IsComparison() {
		p.errorf(first, "expression %s is not a constraint; expected ==, <= or >=", left)
		return nil
	}
	p.nextToken()
	stmt := &ast.ConstraintStatement{Token: p.curToken, Left: left}

	p.nextToken()
	if stmt.Right = p.parseExpression(COMPARE); stmt.Right == nil {
		return nil
	}
	if p.peekToken.IsComparison() {
		p.errorf(p.peekToken, "chained comparisons are not supported")
		return nil
	}
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf(p.curToken, "could not parse %q as a number", p.curToken.Literal)
		return nil
	}
	return &ast.NumberLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	if expression.Right = p.parseExpression(PREFIX); expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	if expression.Right = p.parseExpression(precedence); expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	list.Elements = p.parseExpressionList(token.RBRACK)
	if list.Elements == nil {
		return nil
	}
	if len(list.Elements) == 0 {
		p.errorf(list.Token, "empty list")
		return nil
	}
	return list
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	ident, ok := function.(*ast.Identifier)
	if !ok {
		p.errorf(p.curToken, "cannot call %s", function)
		return nil
	}
	exp := &ast.CallExpression{Token: p.curToken, Function: ident}
	if exp.Arguments = p.parseExpressionList(token.RPAREN); exp.Arguments == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}

	for {
		p.nextToken()
		var index ast.Expression
		if p.curTokenIs(token.COLON) {
			index = &ast.Slice{Token: p.curToken}
		} else if index = p.parseExpression(LOWEST); index == nil {
			return nil
		}
		exp.Indices = append(exp.Indices, index)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RBRACK) {
		return nil
	}
	if len(exp.Indices) > 2 {
		p.errorf(exp.Token, "expected at most 2 indices, got %d", len(exp.Indices))
		return nil
	}
	return exp
}

func (p *Parser) parseTransposeExpression(left ast.Expression) ast.Expression {
	exp := &ast.TransposeExpression{Token: p.curToken, Left: left}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	if p.curToken.Literal != "T" {
		p.errorf(p.curToken, "unknown attribute %s; only .T is supported", p.curToken.Literal)
		return nil
	}
	return exp
}

// parseExpressionList reads comma-separated expressions up to end, with
// curToken on the opening delimiter. It returns nil on error and an empty
// slice for an empty list.
func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	for {
		p.nextToken()
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil
		}
		list = append(list, exp)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(end) {
		return nil
	}

	return list
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
