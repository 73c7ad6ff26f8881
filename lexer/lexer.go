package lexer

import (
	"github.com/thiremani/cvxsym/token"
)

type Lexer struct {
	fileName     string
	input        []rune
	position     int  // current position in input (points to current rune)
	readPosition int  // current reading position in input (after current rune)
	curr         rune // current rune under examination
	line         int
	column       int
	// parens counts open ( and [; newlines inside them are not statement ends
	parens int
}

func New(fileName, input string) *Lexer {
	l := &Lexer{fileName: fileName, input: []rune(input), line: 1}
	l.readRune()
	return l
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	tok := token.Token{FileName: l.fileName, Line: l.line, Column: l.column}

	switch l.curr {
	case '=':
		if l.peekRune() == '=' {
			l.readRune()
			tok.Type, tok.Literal = token.EQL, "=="
		} else {
			tok.Type, tok.Literal = token.ILLEGAL, "="
		}
	case '<':
		tok = l.comparison(tok, token.LEQ)
	case '>':
		tok = l.comparison(tok, token.GEQ)
	case '+':
		tok.Type, tok.Literal = token.ADD, "+"
	case '-':
		tok.Type, tok.Literal = token.SUB, "-"
	case '*':
		tok.Type, tok.Literal = token.MUL, "*"
	case '/':
		tok.Type, tok.Literal = token.QUO, "/"
	case ',':
		tok.Type, tok.Literal = token.COMMA, ","
	case ':':
		tok.Type, tok.Literal = token.COLON, ":"
	case '(', '[':
		l.parens++
		tok.Type, tok.Literal = token.LPAREN, string(l.curr)
		if l.curr == '[' {
			tok.Type = token.LBRACK
		}
	case ')', ']':
		if l.parens > 0 {
			l.parens--
		}
		tok.Type, tok.Literal = token.RPAREN, string(l.curr)
		if l.curr == ']' {
			tok.Type = token.RBRACK
		}
	case '.':
		if isDigit(l.peekRune()) {
			tok.Type, tok.Literal = token.NUMBER, l.readNumber()
			return tok
		}
		tok.Type, tok.Literal = token.PERIOD, "."
	case '\n':
		tok.Type, tok.Literal = token.NEWLINE, "\n"
		l.readRune()
		l.line++
		l.column = 1
		return tok
	case 0:
		tok.Type = token.EOF
		return tok
	default:
		if isLetter(l.curr) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			return tok
		}
		if isDigit(l.curr) {
			tok.Type, tok.Literal = token.NUMBER, l.readNumber()
			return tok
		}
		tok.Type, tok.Literal = token.ILLEGAL, string(l.curr)
	}

	l.readRune()
	return tok
}

// comparison reads <= or >=. A bare < or > is illegal: the language has
// no strict inequalities.
func (l *Lexer) comparison(tok token.Token, typ token.TokenType) token.Token {
	ch := l.curr
	if l.peekRune() != '=' {
		tok.Type, tok.Literal = token.ILLEGAL, string(ch)
		return tok
	}
	l.readRune()
	tok.Type, tok.Literal = typ, string(ch)+"="
	return tok
}

func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.curr == ' ' || l.curr == '\t' || l.curr == '\r':
			l.readRune()
		case l.curr == '#':
			for l.curr != '\n' && l.curr != 0 {
				l.readRune()
			}
		case l.curr == '\n' && l.parens > 0:
			l.readRune()
			l.line++
			l.column = 1
		default:
			return
		}
	}
}

func (l *Lexer) readRune() {
	if l.readPosition >= len(l.input) {
		l.curr = 0
	} else {
		l.curr = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekRune() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.curr) || isDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

// readNumber reads digits with an optional fraction and exponent.
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.curr) {
		l.readRune()
	}
	if l.curr == '.' && isDigit(l.peekRune()) || l.curr == '.' && position == l.position {
		l.readRune()
		for isDigit(l.curr) {
			l.readRune()
		}
	}
	if l.curr == 'e' || l.curr == 'E' {
		next := l.peekRune()
		if isDigit(next) || next == '-' || next == '+' {
			l.readRune()
			if l.curr == '-' || l.curr == '+' {
				l.readRune()
			}
			for isDigit(l.curr) {
				l.readRune()
			}
		}
	}
	return string(l.input[position:l.position])
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
