// Package sql implements a deliberately minimal SQL front end: a
// strictly prefix-based parser for CREATE TABLE, INSERT, SELECT, UPDATE
// and DELETE over a single table, with no precedence, expressions,
// joins, or predicate evaluation. WHERE clauses are captured as opaque
// trailing text and handed to the executor unevaluated.
package sql

import (
	"strconv"
	"strings"

	"aistore/types"

	"github.com/pkg/errors"
)

// Parse parses one SQL statement.
func Parse(sqlText string) (Statement, error) {
	trimmed := strings.TrimSpace(sqlText)
	upper := strings.ToUpper(trimmed)

	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
		return parseCreateTable(trimmed)
	case strings.HasPrefix(upper, "INSERT"):
		return parseInsert(trimmed)
	case strings.HasPrefix(upper, "SELECT"):
		return parseSelect(trimmed)
	case strings.HasPrefix(upper, "UPDATE"):
		return parseUpdate(trimmed)
	case strings.HasPrefix(upper, "DELETE"):
		return parseDelete(trimmed)
	default:
		return nil, errors.Wrap(ErrSyntax, "unknown SQL statement")
	}
}

func findKeyword(upper, keyword string) int {
	return strings.Index(upper, keyword)
}

func parseCreateTable(sqlText string) (Statement, error) {
	afterCreate := strings.TrimSpace(sqlText[len("CREATE TABLE"):])
	parenPos := strings.Index(afterCreate, "(")
	if parenPos < 0 {
		return nil, errors.Wrap(ErrSyntax, "expected (")
	}
	tableName := strings.TrimSpace(afterCreate[:parenPos])

	parenEnd := strings.LastIndex(afterCreate, ")")
	if parenEnd < 0 {
		return nil, errors.Wrap(ErrSyntax, "expected )")
	}
	columnsStr := afterCreate[parenPos+1 : parenEnd]

	var columns []ColumnDef
	for _, colDef := range strings.Split(columnsStr, ",") {
		colDef = strings.TrimSpace(colDef)
		if colDef == "" {
			continue
		}
		parts := strings.Fields(colDef)
		if len(parts) == 0 {
			continue
		}
		name := parts[0]
		typeToken := "INT"
		if len(parts) > 1 {
			typeToken = parts[1]
		}
		dataType, err := parseType(typeToken)
		if err != nil {
			return nil, err
		}
		nullable := !strings.Contains(strings.ToUpper(colDef), "NOT NULL")
		columns = append(columns, ColumnDef{Name: name, DataType: dataType, Nullable: nullable})
	}

	return CreateTableStmt{TableName: tableName, Columns: columns}, nil
}

// parseType maps a declared SQL type token to a column type. Unknown
// tokens fall back to Int32, matching this parser's permissive lineage.
func parseType(typeStr string) (types.ColumnType, error) {
	upper := strings.ToUpper(typeStr)

	if pos := strings.Index(upper, "("); pos >= 0 {
		base := upper[:pos]
		rest := upper[pos+1:]
		if end := strings.Index(rest, ")"); end >= 0 {
			size, err := strconv.ParseUint(rest[:end], 10, 32)
			if err != nil {
				return types.ColumnType{}, errors.Wrap(ErrParse, "invalid size")
			}
			switch base {
			case "VARCHAR":
				return types.VarcharType(uint32(size)), nil
			case "BLOB":
				return types.BlobType(uint32(size)), nil
			}
		}
	}

	switch upper {
	case "INT", "INT32", "INTEGER":
		return types.Int32Type, nil
	case "INT64", "BIGINT":
		return types.Int64Type, nil
	case "INT16", "SMALLINT":
		return types.Int16Type, nil
	case "INT8", "TINYINT":
		return types.Int8Type, nil
	case "FLOAT", "FLOAT32":
		return types.Float32Type, nil
	case "DOUBLE", "FLOAT64":
		return types.Float64Type, nil
	case "BOOL", "BOOLEAN":
		return types.BoolType, nil
	case "TEXT":
		return types.VarcharType(255), nil
	default:
		return types.Int32Type, nil
	}
}

func parseInsert(sqlText string) (Statement, error) {
	afterInsert := strings.TrimSpace(sqlText[len("INSERT"):])
	afterInto := afterInsert
	if strings.HasPrefix(strings.ToUpper(afterInsert), "INTO") {
		afterInto = strings.TrimSpace(afterInsert[len("INTO"):])
	}

	spacePos := strings.IndexFunc(afterInto, func(r rune) bool { return r == ' ' || r == '\t' })
	if spacePos < 0 {
		spacePos = len(afterInto)
	}
	tableName := strings.TrimSpace(afterInto[:spacePos])

	valuesStr := strings.TrimSpace(afterInto[spacePos:])
	valuesStr = strings.TrimPrefix(valuesStr, "VALUES")
	valuesStr = strings.TrimSpace(valuesStr)
	valuesStr = strings.TrimPrefix(valuesStr, "(")
	valuesStr = strings.TrimSuffix(valuesStr, ")")

	var values []string
	for _, v := range strings.Split(valuesStr, ",") {
		values = append(values, strings.TrimSpace(v))
	}

	return InsertStmt{TableName: tableName, Values: values}, nil
}

func parseSelect(sqlText string) (Statement, error) {
	afterSelect := strings.TrimSpace(sqlText[len("SELECT"):])
	upperAfterSelect := strings.ToUpper(afterSelect)

	fromPos := findKeyword(upperAfterSelect, "FROM")
	if fromPos < 0 {
		return nil, errors.Wrap(ErrSyntax, "expected FROM")
	}
	afterFrom := strings.TrimSpace(afterSelect[fromPos+len("FROM"):])

	from, where := splitWhere(afterFrom)
	return SelectStmt{From: from, WhereClause: where}, nil
}

func parseUpdate(sqlText string) (Statement, error) {
	afterUpdate := strings.TrimSpace(sqlText[len("UPDATE"):])
	upperAfterUpdate := strings.ToUpper(afterUpdate)

	setPos := findKeyword(upperAfterUpdate, "SET")
	if setPos < 0 {
		return nil, errors.Wrap(ErrSyntax, "expected SET")
	}
	tableName := strings.TrimSpace(afterUpdate[:setPos])
	afterSet := strings.TrimSpace(afterUpdate[setPos+len("SET"):])

	setStr, where := splitWhere(afterSet)

	var assignments []Assignment
	for _, s := range strings.Split(setStr, ",") {
		s = strings.TrimSpace(s)
		eqPos := strings.Index(s, "=")
		if eqPos < 0 {
			continue
		}
		assignments = append(assignments, Assignment{
			Column: strings.TrimSpace(s[:eqPos]),
			Value:  strings.TrimSpace(s[eqPos+1:]),
		})
	}

	return UpdateStmt{TableName: tableName, Set: assignments, WhereClause: where}, nil
}

func parseDelete(sqlText string) (Statement, error) {
	afterDelete := strings.TrimSpace(sqlText[len("DELETE"):])
	upperAfterDelete := strings.ToUpper(afterDelete)

	fromPos := findKeyword(upperAfterDelete, "FROM")
	if fromPos < 0 {
		return nil, errors.Wrap(ErrSyntax, "expected FROM")
	}
	afterFrom := strings.TrimSpace(afterDelete[fromPos+len("FROM"):])

	tableName, where := splitWhere(afterFrom)
	return DeleteStmt{TableName: tableName, WhereClause: where}, nil
}

// splitWhere splits s on a literal WHERE keyword (case-insensitive),
// returning the text before it and, if present, the opaque text after it.
func splitWhere(s string) (string, *string) {
	upper := strings.ToUpper(s)
	wherePos := findKeyword(upper, "WHERE")
	if wherePos < 0 {
		return strings.TrimSpace(s), nil
	}
	before := strings.TrimSpace(s[:wherePos])
	after := strings.TrimSpace(s[wherePos+len("WHERE"):])
	return before, &after
}
