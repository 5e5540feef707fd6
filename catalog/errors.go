package catalog

import "errors"

var (
	ErrTableExists   = errors.New("catalog: table already exists")
	ErrTableNotFound = errors.New("catalog: table not found")
	ErrInvalidSchema = errors.New("catalog: invalid schema")
)
