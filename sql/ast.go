package sql

import "aistore/types"

// Statement is any parsed SQL statement.
type Statement interface {
	isStatement()
}

// ColumnDef is one column in a CREATE TABLE column list.
type ColumnDef struct {
	Name     string
	DataType types.ColumnType
	Nullable bool
}

// CreateTableStmt is a parsed CREATE TABLE statement.
type CreateTableStmt struct {
	TableName string
	Columns   []ColumnDef
}

// InsertStmt is a parsed INSERT statement; Values are unparsed literal
// tokens, coerced by the executor against the target table's schema.
type InsertStmt struct {
	TableName string
	Values    []string
}

// SelectStmt is a parsed SELECT statement. WhereClause is opaque: it is
// captured verbatim and never evaluated by the storage layer.
type SelectStmt struct {
	From        string
	WhereClause *string
}

// Assignment is one `column = literal` pair from a SET clause.
type Assignment struct {
	Column string
	Value  string
}

// UpdateStmt is a parsed UPDATE statement.
type UpdateStmt struct {
	TableName   string
	Set         []Assignment
	WhereClause *string
}

// DeleteStmt is a parsed DELETE statement.
type DeleteStmt struct {
	TableName   string
	WhereClause *string
}

func (CreateTableStmt) isStatement() {}
func (InsertStmt) isStatement()      {}
func (SelectStmt) isStatement()      {}
func (UpdateStmt) isStatement()      {}
func (DeleteStmt) isStatement()      {}
