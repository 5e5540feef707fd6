package sql

import "errors"

var (
	ErrSyntax = errors.New("sql: syntax error")
	ErrParse  = errors.New("sql: parse error")
)
