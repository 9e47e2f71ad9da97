package lexer

import (
	"testing"

	"github.com/kryonlabs/kryon/internal/token"
	"github.com/stretchr/testify/require"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeButtonElement(t *testing.T) {
	src := `Button { text: "Hi"; }`
	toks := Tokenize([]byte(src), Config{File: "t.kry"})

	require.Equal(t, []token.Kind{
		token.ELEMENT_TYPE, token.LEFT_BRACE, token.IDENTIFIER, token.COLON,
		token.STRING, token.SEMICOLON, token.RIGHT_BRACE, token.EOF,
	}, kinds(toks))
	require.Equal(t, "Button", toks[0].Text)
	require.Equal(t, "text", toks[2].Text)
	require.Equal(t, "Hi", toks[4].Text)
}

func TestTokenizeTemplateString(t *testing.T) {
	src := `"hello ${name}"`
	toks := Tokenize([]byte(src), Config{})
	require.Equal(t, token.TEMPLATE_START, toks[0].Kind)
	require.Contains(t, toks[0].Text, "${name}")
}

func TestTokenizeVariableAndDirectives(t *testing.T) {
	src := `@style base extends other { color: $accent; }`
	toks := Tokenize([]byte(src), Config{})
	require.Equal(t, token.AT_STYLE, toks[0].Kind)
	require.Equal(t, token.IDENTIFIER, toks[1].Kind)
	require.Equal(t, token.KW_EXTENDS, toks[2].Kind)
	require.Equal(t, token.IDENTIFIER, toks[3].Kind)
}

func TestUnterminatedStringRecovers(t *testing.T) {
	src := "Text { text: \"oops }"
	toks := Tokenize([]byte(src), Config{})
	var sawErr bool
	for _, tk := range toks {
		if tk.Kind == token.ERROR {
			sawErr = true
		}
	}
	require.True(t, sawErr)
	require.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}

func TestLineColumnTracksNewlines(t *testing.T) {
	src := "Button {\n  text: \"hi\";\n}"
	toks := Tokenize([]byte(src), Config{})
	// the IDENTIFIER "text" is on line 2
	for _, tk := range toks {
		if tk.Kind == token.IDENTIFIER && tk.Text == "text" {
			require.Equal(t, 2, tk.Location.Line)
			return
		}
	}
	t.Fatal("identifier 'text' not found")
}

func TestCRLFCountsAsOneNewline(t *testing.T) {
	src := "Button {\r\n  text: \"hi\";\r\n}"
	toks := Tokenize([]byte(src), Config{})
	for _, tk := range toks {
		if tk.Kind == token.IDENTIFIER && tk.Text == "text" {
			require.Equal(t, 2, tk.Location.Line)
			return
		}
	}
	t.Fatal("identifier 'text' not found")
}

func TestUnicodeIdentifier(t *testing.T) {
	src := `Text { café: "x"; }`
	toks := Tokenize([]byte(src), Config{})
	require.Equal(t, "café", toks[2].Text)
}
