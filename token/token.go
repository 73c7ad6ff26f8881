package token

import (
	"fmt"
	"strconv"
)

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	NEWLINE

	literal_beg
	IDENT  // x, norm, A
	NUMBER // 3, 2.5, 1e-3
	literal_end

	operator_beg
	ADD // +
	SUB // -
	MUL // *
	QUO // /

	LPAREN // (
	LBRACK // [
	COMMA  // ,
	PERIOD // .
	COLON  // :

	RPAREN // )
	RBRACK // ]
	operator_end

	comparison_beg
	EQL // ==
	LEQ // <=
	GEQ // >=
	comparison_end

	keyword_beg
	VARIABLE
	PARAMETER
	MINIMIZE
	MAXIMIZE
	keyword_end
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	NEWLINE: "NEWLINE",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",

	ADD: "+",
	SUB: "-",
	MUL: "*",
	QUO: "/",

	LPAREN: "(",
	LBRACK: "[",
	COMMA:  ",",
	PERIOD: ".",
	COLON:  ":",

	RPAREN: ")",
	RBRACK: "]",

	EQL: "==",
	LEQ: "<=",
	GEQ: ">=",

	VARIABLE:  "variable",
	PARAMETER: "parameter",
	MINIMIZE:  "minimize",
	MAXIMIZE:  "maximize",
}

var keywords map[string]TokenType

func init() {
	keywords = make(map[string]TokenType, keyword_end-keyword_beg)
	for t := keyword_beg + 1; t < keyword_end; t++ {
		keywords[tokens[t]] = t
	}
}

// LookupIdent maps a keyword to its token type and anything else to IDENT.
func LookupIdent(ident string) TokenType {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}

type Token struct {
	FileName string
	Type     TokenType
	Literal  string
	Line     int
	Column   int
}

func (t Token) IsComparison() bool {
	return comparison_beg < t.Type && t.Type < comparison_end
}

func (t Token) IsKeyword() bool {
	return keyword_beg < t.Type && t.Type < keyword_end
}

func (t Token) String() string {
	if t.Type == IDENT || t.Type == NUMBER {
		return t.Type.String() + "(" + t.Literal + ")"
	}
	return t.Type.String()
}

func (tokenType TokenType) String() string {
	s := ""
	if 0 <= tokenType && tokenType < TokenType(len(tokens)) {
		s = tokens[tokenType]
	}

	if s == "" {
		s = "token(" + strconv.Itoa(int(tokenType)) + ")"
	}

	return s
}

// CompileError is a diagnostic tied to the token it was reported at.
type CompileError struct {
	Token Token
	Msg   string
}

func (e *CompileError) Error() string {
	if e.Token.FileName == "" {
		return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Token.FileName, e.Token.Line, e.Token.Column, e.Msg)
}
