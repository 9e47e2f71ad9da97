// Package lexer tokenizes Kryon (.kry) source text.
//
// It is a hand-rolled rune scanner (no generated table, no external
// tokenizer library) that tracks line/column as it goes, matching the
// position-tracking style of a KDL-like document scanner: peek/advance over
// a decoded rune stream, with the line/column state updated on every
// consumed rune rather than recomputed from an offset.
package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kryonlabs/kryon/internal/srcloc"
	"github.com/kryonlabs/kryon/internal/token"
)

// Config toggles lexer behavior.
type Config struct {
	File       string
	EmitTrivia bool // emit COMMENT/WHITESPACE tokens instead of dropping them
}

// Lexer turns a byte buffer into an ordered token sequence.
type Lexer struct {
	cfg Config
	src []byte

	offset int // byte offset of the next undecoded rune
	line   int
	col    int

	// scriptMode, when set by the parser via BeginScriptBody, causes the
	// next call to Next to emit one SCRIPT_CONTENT token for the
	// brace-balanced body instead of tokenizing normally.
	scriptMode bool
}

// New creates a Lexer over src. File is used only for diagnostic locations.
func New(src []byte, cfg Config) *Lexer {
	return &Lexer{cfg: cfg, src: src, line: 1, col: 1}
}

func (l *Lexer) loc(startOffset, startLine, startCol, length int) srcloc.Location {
	return srcloc.Location{
		File:   l.cfg.File,
		Line:   startLine,
		Column: startCol,
		Offset: startOffset,
		Length: length,
	}
}

// peekRune returns the next rune and its byte width without consuming it.
func (l *Lexer) peekRune() (rune, int) {
	if l.offset >= len(l.src) {
		return 0, 0
	}
	r, sz := utf8.DecodeRune(l.src[l.offset:])
	return r, sz
}

func (l *Lexer) peekRuneAt(ahead int) (rune, int) {
	pos := l.offset
	for i := 0; i < ahead; i++ {
		_, sz := utf8.DecodeRune(l.src[pos:])
		if sz == 0 {
			return 0, 0
		}
		pos += sz
	}
	if pos >= len(l.src) {
		return 0, 0
	}
	r, sz := utf8.DecodeRune(l.src[pos:])
	return r, sz
}

// advance consumes and returns the next rune, updating line/column.
// Only '\n' starts a new line ('\r' just advances the column), so '\r\n'
// counts as a single newline.
func (l *Lexer) advance() rune {
	r, sz := l.peekRune()
	if sz == 0 {
		return 0
	}
	l.offset += sz
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) atEOF() bool {
	return l.offset >= len(l.src)
}

func isIdentStart(r rune) bool {
	if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
		return true
	}
	return r > 127 && unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// BeginScriptBody switches the lexer into script-body mode: the next call to
// Next consumes a brace-balanced raw body (the text between the opening '{'
// already consumed by the parser, and its matching '}') and returns it as a
// single SCRIPT_CONTENT token. The parser calls this right after it accepts
// the '{' that opens a @function body.
func (l *Lexer) BeginScriptBody() { l.scriptMode = true }

// Next returns the next token. At end of input it returns an EOF token
// forever.
func (l *Lexer) Next() token.Token {
	if l.scriptMode {
		l.scriptMode = false
		return l.lexScriptBody()
	}

	for {
		startOffset, startLine, startCol := l.offset, l.line, l.col
		if l.atEOF() {
			return token.Token{Kind: token.EOF, Location: l.loc(startOffset, startLine, startCol, 0)}
		}
		r, _ := l.peekRune()

		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			l.skipWhitespace()
			if l.cfg.EmitTrivia {
				return token.Token{Kind: token.WHITESPACE, Location: l.loc(startOffset, startLine, startCol, l.offset-startOffset)}
			}
			continue

		case r == '#':
			l.skipLineComment()
			if l.cfg.EmitTrivia {
				return token.Token{Kind: token.COMMENT, Location: l.loc(startOffset, startLine, startCol, l.offset-startOffset)}
			}
			continue

		case r == '/' && peekIs(l, 1, '*'):
			if err := l.skipBlockComment(); err != nil {
				return l.errTok(startOffset, startLine, startCol, err.Error())
			}
			if l.cfg.EmitTrivia {
				return token.Token{Kind: token.COMMENT, Location: l.loc(startOffset, startLine, startCol, l.offset-startOffset)}
			}
			continue

		case r == '"':
			return l.lexString(startOffset, startLine, startCol)

		case r == '$':
			return l.lexVariable(startOffset, startLine, startCol)

		case r == '@':
			return l.lexDirective(startOffset, startLine, startCol)

		case isDigit(r):
			return l.lexNumber(startOffset, startLine, startCol)

		case isIdentStart(r):
			return l.lexIdentOrKeyword(startOffset, startLine, startCol)

		default:
			return l.lexPunct(startOffset, startLine, startCol)
		}
	}
}

func peekIs(l *Lexer, ahead int, want rune) bool {
	r, sz := l.peekRuneAt(ahead)
	return sz > 0 && r == want
}

func (l *Lexer) skipWhitespace() {
	for {
		r, sz := l.peekRune()
		if sz == 0 || !(r == ' ' || r == '\t' || r == '\r' || r == '\n') {
			return
		}
		l.advance()
	}
}

func (l *Lexer) skipLineComment() {
	for {
		r, sz := l.peekRune()
		if sz == 0 || r == '\n' {
			return
		}
		l.advance()
	}
}

func (l *Lexer) skipBlockComment() error {
	l.advance() // '/'
	l.advance() // '*'
	for {
		if l.atEOF() {
			return errUnterminatedComment
		}
		r, _ := l.peekRune()
		if r == '*' && peekIs(l, 1, '/') {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
}

func (l *Lexer) errTok(off, line, col int, msg string) token.Token {
	return token.Token{Kind: token.ERROR, Text: msg, Location: l.loc(off, line, col, l.offset-off)}
}

func (l *Lexer) lexPunct(off, line, col int) token.Token {
	r := l.advance()
	mk := func(k token.Kind) token.Token {
		return token.Token{Kind: k, Text: string(r), Location: l.loc(off, line, col, l.offset-off)}
	}
	switch r {
	case '{':
		return mk(token.LEFT_BRACE)
	case '}':
		return mk(token.RIGHT_BRACE)
	case '(':
		return mk(token.LEFT_PAREN)
	case ')':
		return mk(token.RIGHT_PAREN)
	case '[':
		return mk(token.LEFT_BRACKET)
	case ']':
		return mk(token.RIGHT_BRACKET)
	case ':':
		return mk(token.COLON)
	case ';':
		return mk(token.SEMICOLON)
	case ',':
		return mk(token.COMMA)
	case '.':
		if peekIs(l, 0, '.') {
			l.advance()
			return token.Token{Kind: token.RANGE, Text: "..", Location: l.loc(off, line, col, l.offset-off)}
		}
		return mk(token.DOT)
	case '?':
		return mk(token.QUESTION)
	case '+':
		return mk(token.PLUS)
	case '-':
		return mk(token.MINUS)
	case '*':
		return mk(token.STAR)
	case '/':
		return mk(token.SLASH)
	case '%':
		return mk(token.PERCENT)
	case '=':
		if peekIs(l, 0, '=') {
			l.advance()
			return token.Token{Kind: token.EQ_EQ, Text: "==", Location: l.loc(off, line, col, l.offset-off)}
		}
		return mk(token.ASSIGN)
	case '!':
		if peekIs(l, 0, '=') {
			l.advance()
			return token.Token{Kind: token.BANG_EQ, Text: "!=", Location: l.loc(off, line, col, l.offset-off)}
		}
		return mk(token.BANG)
	case '<':
		if peekIs(l, 0, '=') {
			l.advance()
			return token.Token{Kind: token.LT_EQ, Text: "<=", Location: l.loc(off, line, col, l.offset-off)}
		}
		return mk(token.LT)
	case '>':
		if peekIs(l, 0, '=') {
			l.advance()
			return token.Token{Kind: token.GT_EQ, Text: ">=", Location: l.loc(off, line, col, l.offset-off)}
		}
		return mk(token.GT)
	case '&':
		if peekIs(l, 0, '&') {
			l.advance()
			return token.Token{Kind: token.AND_AND, Text: "&&", Location: l.loc(off, line, col, l.offset-off)}
		}
		return l.errTok(off, line, col, "unexpected '&'")
	case '|':
		if peekIs(l, 0, '|') {
			l.advance()
			return token.Token{Kind: token.OR_OR, Text: "||", Location: l.loc(off, line, col, l.offset-off)}
		}
		return l.errTok(off, line, col, "unexpected '|'")
	default:
		return l.errTok(off, line, col, "unexpected byte sequence")
	}
}

func (l *Lexer) lexIdentOrKeyword(off, line, col int) token.Token {
	var b strings.Builder
	r, _ := l.peekRune()
	b.WriteRune(l.advance())
	_ = r
	for {
		r, sz := l.peekRune()
		if sz == 0 || !isIdentCont(r) {
			break
		}
		b.WriteRune(l.advance())
	}
	text := b.String()
	loc := l.loc(off, line, col, l.offset-off)

	if k, ok := token.LookupReserved(text); ok {
		return token.Token{Kind: k, Text: text, Location: loc}
	}
	first, _ := utf8.DecodeRuneInString(text)
	if unicode.IsUpper(first) {
		return token.Token{Kind: token.ELEMENT_TYPE, Text: text, Location: loc}
	}
	return token.Token{Kind: token.IDENTIFIER, Text: text, Location: loc}
}

func (l *Lexer) lexVariable(off, line, col int) token.Token {
	l.advance() // '$'
	var b strings.Builder
	for {
		r, sz := l.peekRune()
		if sz == 0 || !isIdentCont(r) {
			break
		}
		b.WriteRune(l.advance())
	}
	if b.Len() == 0 {
		return l.errTok(off, line, col, "expected identifier after '$'")
	}
	return token.Token{Kind: token.VARIABLE, Text: b.String(), Location: l.loc(off, line, col, l.offset-off)}
}

func (l *Lexer) lexDirective(off, line, col int) token.Token {
	l.advance() // '@'
	var b strings.Builder
	for {
		r, sz := l.peekRune()
		if sz == 0 || !isIdentCont(r) {
			break
		}
		b.WriteRune(l.advance())
	}
	name := b.String()
	if k, ok := token.LookupDirective(name); ok {
		return token.Token{Kind: k, Text: name, Location: l.loc(off, line, col, l.offset-off)}
	}
	return l.errTok(off, line, col, "unknown directive '@"+name+"'")
}

func (l *Lexer) lexNumber(off, line, col int) token.Token {
	var b strings.Builder
	isFloat := false
	for {
		r, sz := l.peekRune()
		if sz == 0 || !isDigit(r) {
			break
		}
		b.WriteRune(l.advance())
	}
	if r, _ := l.peekRune(); r == '.' {
		if r2, sz2 := l.peekRuneAt(1); sz2 > 0 && isDigit(r2) {
			isFloat = true
			b.WriteRune(l.advance()) // '.'
			for {
				r, sz := l.peekRune()
				if sz == 0 || !isDigit(r) {
					break
				}
				b.WriteRune(l.advance())
			}
		}
	}
	// A unit suffix (px, %, em, rem, vw, vh, pt) directly abutting the
	// digits is absorbed into the same token's text; internal/parser
	// splits numeric value from unit when building a PropValue. This keeps
	// "12px" one token, the same way a number-with-suffix is lexed in CSS
	// dialects.
	if suffix, ok := l.tryConsumeUnitSuffix(); ok {
		b.WriteString(suffix)
	}
	loc := l.loc(off, line, col, l.offset-off)
	if len(b.String()) > 18 && !isFloat {
		// Only a literal this long can overflow an int64: its digits
		// (without any unit suffix) are parsed, and an overflow is a
		// lexical error.
		digits := strings.TrimRight(b.String(), "%abcdefghijklmnopqrstuvwxyz")
		if _, err := strconv.ParseInt(digits, 10, 64); err != nil {
			return l.errTok(off, line, col, "integer literal does not fit in int64")
		}
	}
	if isFloat {
		return token.Token{Kind: token.FLOAT, Text: b.String(), Location: loc}
	}
	return token.Token{Kind: token.INTEGER, Text: b.String(), Location: loc}
}

// tryConsumeUnitSuffix peeks up to 3 ASCII letters (or a single '%') after a
// number and, only if they form one of the recognized unit names, consumes
// and returns them. It never consumes on a partial/unknown match, so
// "12pxFoo" still lexes the whole identifier as a separate token and lets
// the parser reject the malformed property value.
func (l *Lexer) tryConsumeUnitSuffix() (string, bool) {
	if r, _ := l.peekRune(); r == '%' {
		if r2, sz2 := l.peekRuneAt(1); sz2 == 0 || !isIdentCont(r2) {
			l.advance()
			return "%", true
		}
		return "", false
	}
	// Look ahead without consuming: collect up to 3 letters.
	var letters []rune
	for i := 0; i < 3; i++ {
		r, sz := l.peekRuneAt(i)
		if sz == 0 || !(r >= 'a' && r <= 'z') {
			break
		}
		letters = append(letters, r)
	}
	for n := len(letters); n > 0; n-- {
		candidate := string(letters[:n])
		if _, ok := token.LookupUnit(candidate); ok {
			// confirm nothing identifier-like follows the candidate, so
			// "emphasis" isn't clipped to the "em" unit.
			next, sz := l.peekRuneAt(n)
			if sz > 0 && isIdentCont(next) {
				continue
			}
			for i := 0; i < n; i++ {
				l.advance()
			}
			return candidate, true
		}
	}
	return "", false
}

func (l *Lexer) lexString(off, line, col int) token.Token {
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.atEOF() {
			return l.errTok(off, line, col, "unterminated string literal")
		}
		r, _ := l.peekRune()
		if r == '"' {
			l.advance()
			return token.Token{Kind: token.STRING, Text: b.String(), Location: l.loc(off, line, col, l.offset-off)}
		}
		if r == '\n' {
			return l.errTok(off, line, col, "unterminated string literal")
		}
		if r == '$' && peekIs(l, 1, '{') {
			// Template interpolation present: re-lex the whole string as a
			// template by the parser, which re-enters the lexer in
			// expression mode at each ${ }. At the lexer layer we simply
			// return the raw (unescaped) text including the ${...} markers
			// so the parser can split it into segments. Escapes before the
			// first ${ have already been processed; from there on the text,
			// escapes included, is returned verbatim.
			b.WriteString(l.rawTemplateTail(off, line, col))
			return token.Token{Kind: token.TEMPLATE_START, Text: b.String(), Location: l.loc(off, line, col, l.offset-off)}
		}
		if r == '\\' {
			l.advance()
			esc, ok := l.decodeEscape()
			if !ok {
				return l.errTok(off, line, col, "invalid escape sequence")
			}
			b.WriteRune(esc)
			continue
		}
		b.WriteRune(l.advance())
	}
}

// rawTemplateTail consumes the remainder of a template string (from the
// first ${ up to the closing unescaped quote), returning it verbatim
// (including ${ and } markers) for the parser's template splitter. Braces
// inside ${ } are balanced so a nested object/array literal in the
// expression does not terminate the scan early.
func (l *Lexer) rawTemplateTail(off, line, col int) string {
	var b strings.Builder
	for {
		if l.atEOF() {
			return b.String()
		}
		r, _ := l.peekRune()
		if r == '"' {
			l.advance()
			return b.String()
		}
		if r == '$' && peekIs(l, 1, '{') {
			b.WriteRune(l.advance()) // $
			b.WriteRune(l.advance()) // {
			depth := 1
			for depth > 0 {
				if l.atEOF() {
					return b.String()
				}
				r2, _ := l.peekRune()
				if r2 == '{' {
					depth++
				} else if r2 == '}' {
					depth--
				}
				b.WriteRune(l.advance())
			}
			continue
		}
		if r == '\\' {
			b.WriteRune(l.advance())
			if !l.atEOF() {
				b.WriteRune(l.advance())
			}
			continue
		}
		b.WriteRune(l.advance())
	}
}

func (l *Lexer) decodeEscape() (rune, bool) {
	if l.atEOF() {
		return 0, false
	}
	r := l.advance()
	switch r {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '"':
		return '"', true
	case '\\':
		return '\\', true
	case '$':
		return '$', true
	case 'u':
		var v rune
		for i := 0; i < 4; i++ {
			if l.atEOF() {
				return 0, false
			}
			c := l.advance()
			v <<= 4
			switch {
			case c >= '0' && c <= '9':
				v |= c - '0'
			case c >= 'a' && c <= 'f':
				v |= c - 'a' + 10
			case c >= 'A' && c <= 'F':
				v |= c - 'A' + 10
			default:
				return 0, false
			}
		}
		return v, true
	default:
		return 0, false
	}
}

// lexScriptBody consumes a raw brace-balanced body starting just after the
// '{' the parser has already accepted, returning it as SCRIPT_CONTENT with
// the outer braces excluded from Text.
func (l *Lexer) lexScriptBody() token.Token {
	off, line, col := l.offset, l.line, l.col
	var b strings.Builder
	depth := 1
	for depth > 0 {
		if l.atEOF() {
			return l.errTok(off, line, col, "unterminated function body")
		}
		r, _ := l.peekRune()
		switch r {
		case '{':
			depth++
			b.WriteRune(l.advance())
		case '}':
			depth--
			if depth == 0 {
				l.advance()
			} else {
				b.WriteRune(l.advance())
			}
		default:
			b.WriteRune(l.advance())
		}
	}
	return token.Token{Kind: token.SCRIPT_CONTENT, Text: b.String(), Location: l.loc(off, line, col, l.offset-off)}
}

// Tokenize lexes the entire src and returns all tokens including a final EOF.
func Tokenize(src []byte, cfg Config) []token.Token {
	l := New(src, cfg)
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks
		}
	}
}
