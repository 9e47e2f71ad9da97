// Package token defines the lexical token kinds produced by internal/lexer
// and consumed by internal/parser.
package token

import "github.com/kryonlabs/kryon/internal/srcloc"

// Kind is a tagged token category. Kryon source is small enough that a flat
// enum (rather than a class hierarchy) covers literals, punctuation,
// directives, and the handful of reserved words cleanly.
type Kind int

const (
	EOF Kind = iota
	ERROR

	// Literals
	STRING
	INTEGER
	FLOAT
	TRUE
	FALSE
	NULL

	// Names
	IDENTIFIER   // lower-case-leading identifier
	ELEMENT_TYPE // upper-case-leading identifier
	VARIABLE     // $name

	// Template interpolation
	TEMPLATE_START // opening quote of a string containing ${ }
	TEMPLATE_TEXT  // literal segment of a template string
	TEMPLATE_EXPR_START
	TEMPLATE_EXPR_END
	TEMPLATE_END

	// Script body
	SCRIPT_CONTENT

	// Punctuation / brackets
	LEFT_BRACE
	RIGHT_BRACE
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACKET
	RIGHT_BRACKET
	COLON
	SEMICOLON
	COMMA
	DOT
	RANGE // ..
	QUESTION

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	EQ_EQ
	BANG_EQ
	LT
	GT
	LT_EQ
	GT_EQ
	AND_AND
	OR_OR
	BANG
	ASSIGN

	// Units
	UNIT_PX
	UNIT_PERCENT
	UNIT_EM
	UNIT_REM
	UNIT_VW
	UNIT_VH
	UNIT_PT

	// Reserved words
	KW_STYLE
	KW_EXTENDS
	KW_IN

	// Directives
	AT_STYLE
	AT_THEME
	AT_FOR
	AT_CONST_FOR
	AT_IF
	AT_ELSE
	AT_CONST
	AT_VAR
	AT_VARIABLES
	AT_FUNCTION
	AT_COMPONENT
	AT_PROPS
	AT_SLOTS
	AT_STATE
	AT_STORE
	AT_WATCH
	AT_ONMOUNT
	AT_ONUNMOUNT
	AT_ONLOAD
	AT_IMPORT
	AT_EXPORT
	AT_INCLUDE
	AT_METADATA
	AT_EVENT

	// Trivia (only emitted when the lexer is configured to keep trivia)
	COMMENT
	WHITESPACE
)

// directiveTable maps the identifier following '@' to its token Kind.
// Unknown directive names fall through to ERROR.
var directiveTable = map[string]Kind{
	"style":      AT_STYLE,
	"theme":      AT_THEME,
	"for":        AT_FOR,
	"const_for":  AT_CONST_FOR,
	"if":         AT_IF,
	"else":       AT_ELSE,
	"const":      AT_CONST,
	"var":        AT_VAR,
	"variables":  AT_VARIABLES,
	"function":   AT_FUNCTION,
	"component":  AT_COMPONENT,
	"props":      AT_PROPS,
	"slots":      AT_SLOTS,
	"state":      AT_STATE,
	"store":      AT_STORE,
	"watch":      AT_WATCH,
	"onmount":    AT_ONMOUNT,
	"onunmount":  AT_ONUNMOUNT,
	"onload":     AT_ONLOAD,
	"import":     AT_IMPORT,
	"export":     AT_EXPORT,
	"include":    AT_INCLUDE,
	"metadata":   AT_METADATA,
	"event":      AT_EVENT,
}

// LookupDirective resolves the identifier following '@' (without the '@')
// to its Kind. ok is false for an unrecognized directive name.
func LookupDirective(name string) (Kind, bool) {
	k, ok := directiveTable[name]
	return k, ok
}

// reservedWords are identifiers that lex to their own Kind rather than
// IDENTIFIER. They match case-sensitively: "True" is not TRUE.
var reservedWords = map[string]Kind{
	"true":    TRUE,
	"false":   FALSE,
	"null":    NULL,
	"style":   KW_STYLE,
	"extends": KW_EXTENDS,
	"in":      KW_IN,
}

// LookupReserved resolves a bare identifier to a reserved-word Kind.
func LookupReserved(word string) (Kind, bool) {
	k, ok := reservedWords[word]
	return k, ok
}

// units maps a unit suffix to its Kind, used by the lexer's number scanner.
var units = map[string]Kind{
	"px":  UNIT_PX,
	"%":   UNIT_PERCENT,
	"em":  UNIT_EM,
	"rem": UNIT_REM,
	"vw":  UNIT_VW,
	"vh":  UNIT_VH,
	"pt":  UNIT_PT,
}

// LookupUnit resolves a unit suffix string to its Kind.
func LookupUnit(suffix string) (Kind, bool) {
	k, ok := units[suffix]
	return k, ok
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

var kindNames = map[Kind]string{
	EOF: "EOF", ERROR: "ERROR", STRING: "STRING", INTEGER: "INTEGER",
	FLOAT: "FLOAT", TRUE: "TRUE", FALSE: "FALSE", NULL: "NULL",
	IDENTIFIER: "IDENTIFIER", ELEMENT_TYPE: "ELEMENT_TYPE", VARIABLE: "VARIABLE",
	TEMPLATE_START: "TEMPLATE_START", TEMPLATE_TEXT: "TEMPLATE_TEXT",
	TEMPLATE_EXPR_START: "TEMPLATE_EXPR_START", TEMPLATE_EXPR_END: "TEMPLATE_EXPR_END",
	TEMPLATE_END: "TEMPLATE_END", SCRIPT_CONTENT: "SCRIPT_CONTENT",
	LEFT_BRACE: "LEFT_BRACE", RIGHT_BRACE: "RIGHT_BRACE", LEFT_PAREN: "LEFT_PAREN",
	RIGHT_PAREN: "RIGHT_PAREN", LEFT_BRACKET: "LEFT_BRACKET", RIGHT_BRACKET: "RIGHT_BRACKET",
	COLON: "COLON", SEMICOLON: "SEMICOLON", COMMA: "COMMA", DOT: "DOT", RANGE: "RANGE",
	QUESTION: "QUESTION", PLUS: "PLUS", MINUS: "MINUS", STAR: "STAR", SLASH: "SLASH",
	PERCENT: "PERCENT", EQ_EQ: "EQ_EQ", BANG_EQ: "BANG_EQ", LT: "LT", GT: "GT",
	LT_EQ: "LT_EQ", GT_EQ: "GT_EQ", AND_AND: "AND_AND", OR_OR: "OR_OR", BANG: "BANG",
	ASSIGN: "ASSIGN", KW_STYLE: "KW_STYLE", KW_EXTENDS: "KW_EXTENDS", KW_IN: "KW_IN",
	COMMENT: "COMMENT", WHITESPACE: "WHITESPACE",
}

// Token is a single lexical unit with its source span.
type Token struct {
	Kind     Kind
	Text     string // literal source text, or decoded value for STRING
	Location srcloc.Location
}

func (t Token) String() string {
	return t.Kind.String() + " " + t.Text
}
