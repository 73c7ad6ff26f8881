package lexer

import (
	"testing"

	"github.com/thiremani/cvxsym/token"
)

type Test struct {
	expectedType    token.TokenType
	expectedLiteral string
}

func checkInput(t *testing.T, input string, tests []Test) {
	t.Helper()
	l := New("test.cvx", input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken(t *testing.T) {
	input := `# Chebyshev center
variable r, x(2)
parameter A(3, 2)
minimize -r
A[0, :].T * x + r * norm(A[0, :]) <= 3.5
r >= 0 # trailing
x[1] == .25 / 2e-1
`
	tests := []Test{
		{token.NEWLINE, "\n"},
		{token.VARIABLE, "variable"},
		{token.IDENT, "r"},
		{token.COMMA, ","},
		{token.IDENT, "x"},
		{token.LPAREN, "("},
		{token.NUMBER, "2"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\n"},
		{token.PARAMETER, "parameter"},
		{token.IDENT, "A"},
		{token.LPAREN, "("},
		{token.NUMBER, "3"},
		{token.COMMA, ","},
		{token.NUMBER, "2"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\n"},
		{token.MINIMIZE, "minimize"},
		{token.SUB, "-"},
		{token.IDENT, "r"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "A"},
		{token.LBRACK, "["},
		{token.NUMBER, "0"},
		{token.COMMA, ","},
		{token.COLON, ":"},
		{token.RBRACK, "]"},
		{token.PERIOD, "."},
		{token.IDENT, "T"},
		{token.MUL, "*"},
		{token.IDENT, "x"},
		{token.ADD, "+"},
		{token.IDENT, "r"},
		{token.MUL, "*"},
		{token.IDENT, "norm"},
		{token.LPAREN, "("},
		{token.IDENT, "A"},
		{token.LBRACK, "["},
		{token.NUMBER, "0"},
		{token.COMMA, ","},
		{token.COLON, ":"},
		{token.RBRACK, "]"},
		{token.RPAREN, ")"},
		{token.LEQ, "<="},
		{token.NUMBER, "3.5"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "r"},
		{token.GEQ, ">="},
		{token.NUMBER, "0"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "x"},
		{token.LBRACK, "["},
		{token.NUMBER, "1"},
		{token.RBRACK, "]"},
		{token.EQL, "=="},
		{token.NUMBER, ".25"},
		{token.QUO, "/"},
		{token.NUMBER, "2e-1"},
		{token.NEWLINE, "\n"},
		{token.EOF, ""},
	}
	checkInput(t, input, tests)
}

func TestNewlineInsideBrackets(t *testing.T) {
	input := "max([x,\n  y])\nz"
	tests := []Test{
		{token.IDENT, "max"},
		{token.LPAREN, "("},
		{token.LBRACK, "["},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RBRACK, "]"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "z"},
		{token.EOF, ""},
	}
	checkInput(t, input, tests)
}

func TestIllegal(t *testing.T) {
	checkInput(t, "x < 1 = $", []Test{
		{token.IDENT, "x"},
		{token.ILLEGAL, "<"},
		{token.NUMBER, "1"},
		{token.ILLEGAL, "="},
		{token.ILLEGAL, "$"},
		{token.EOF, ""},
	})
}

func TestPositions(t *testing.T) {
	l := New("lp.cvx", "variable x\n  x >= 1")
	want := []struct {
		lit       string
		line, col int
	}{
		{"variable", 1, 1},
		{"x", 1, 10},
		{"\n", 1, 11},
		{"x", 2, 3},
		{">=", 2, 5},
		{"1", 2, 8},
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Literal != w.lit || tok.Line != w.line || tok.Column != w.col {
			t.Errorf("token %d: got %q at %d:%d, want %q at %d:%d",
				i, tok.Literal, tok.Line, tok.Column, w.lit, w.line, w.col)
		}
		if tok.FileName != "lp.cvx" {
			t.Errorf("token %d: file name %q", i, tok.FileName)
		}
	}
}
