package lexer

import "errors"

var errUnterminatedComment = errors.New("unterminated block comment")
