package executor

import "errors"

var (
	ErrTableNotFound  = errors.New("executor: table not found")
	ErrColumnNotFound = errors.New("executor: column not found")
)
