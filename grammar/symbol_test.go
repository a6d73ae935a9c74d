package grammar

import "testing"

func TestToken_String(t *testing.T) {
	tests := []struct {
		tok      Token
		expected string
	}{
		{tok: TokenEOF, expected: "<eof>"},
		{tok: lit("+"), expected: `"+"`},
		{tok: lit(`"`), expected: `"\""`},
		{tok: regex("[0-9]+"), expected: `r"[0-9]+"`},
	}
	for _, tt := range tests {
		if s := tt.tok.String(); s != tt.expected {
			t.Errorf("unexpected text; want: %v, got: %v", tt.expected, s)
		}
	}
}

func TestCompareTokens(t *testing.T) {
	ordered := []Token{
		TokenEOF,
		lit("("),
		lit("+"),
		lit("a"),
		regex("[0-9]+"),
		regex("[a-z]+"),
	}
	for i, a := range ordered {
		for j, b := range ordered {
			c := compareTokens(a, b)
			switch {
			case i < j && c >= 0:
				t.Errorf("%v must precede %v", a, b)
			case i > j && c <= 0:
				t.Errorf("%v must follow %v", a, b)
			case i == j && c != 0:
				t.Errorf("%v must equal itself", a)
			}
		}
	}
}
