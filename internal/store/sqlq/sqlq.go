// Package sqlq composes the SQL statements shared by the relational stores.
//
// Every value reaches the database as a bound argument. Column names come
// only from the sort whitelist in core, never from request input.
package sqlq

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/roster/internal/core"
)

// Table is the name of the records table created by the migrations.
const Table = "records"

// Dialect describes the differences between the supported SQL engines.
type Dialect int

const (
	// Postgres uses $n placeholders and strpos for substring tests.
	Postgres Dialect = iota
	// SQLite uses ? placeholders and instr for substring tests.
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// Placeholder returns the bind marker for the n-th argument (1-based).
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// contains returns a case-sensitive, literal substring predicate.
// LIKE is avoided so % and _ in the search term carry no meaning.
func (d Dialect) contains(col, ph string) string {
	if d == Postgres {
		return fmt.Sprintf("strpos(%s, %s) > 0", col, ph)
	}
	return fmt.Sprintf("instr(%s, %s) > 0", col, ph)
}

// sortColumn returns the ORDER BY expression for field, or "" for SortNone.
func (d Dialect) sortColumn(field core.SortField) string {
	switch field {
	case core.SortID:
		return "id"
	case core.SortName, core.SortEmail:
		if d == Postgres {
			// Byte order, matching SQLite's BINARY collation.
			return string(field) + ` COLLATE "C"`
		}
		return string(field)
	default:
		return ""
	}
}

// WhereBuilder accumulates AND-ed conditions with numbered arguments.
type WhereBuilder struct {
	dialect    Dialect
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder creates a builder whose first argument is number 1.
func NewWhereBuilder(d Dialect) *WhereBuilder {
	return &WhereBuilder{dialect: d, argIndex: 1}
}

// bind appends v and returns its placeholder.
func (wb *WhereBuilder) bind(v any) string {
	ph := wb.dialect.Placeholder(wb.argIndex)
	wb.args = append(wb.args, v)
	wb.argIndex++
	return ph
}

// Add appends "column = value".
func (wb *WhereBuilder) Add(column string, value any) {
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = %s", column, wb.bind(value)))
}

// AddSearch appends the record search predicate for f. An empty filter
// adds nothing.
func (wb *WhereBuilder) AddSearch(f core.Filter) {
	if f.IsEmpty() {
		return
	}
	alts := []string{
		wb.dialect.contains("name", wb.bind(f.Search)),
		wb.dialect.contains("email", wb.bind(f.Search)),
	}
	if id, ok := f.IDMatch(); ok {
		alts = append(alts, "id = "+wb.bind(id))
	}
	wb.conditions = append(wb.conditions, "("+strings.Join(alts, " OR ")+")")
}

// Build returns the WHERE clause with a leading space, or "" and nil args
// when no condition was added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex returns the number the next bound argument will get.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// Count returns the statement counting records that match f.
func Count(d Dialect, f core.Filter) (string, []any) {
	wb := NewWhereBuilder(d)
	wb.AddSearch(f)
	where, args := wb.Build()
	return "SELECT COUNT(*) FROM " + Table + where, args
}

// Find returns the statement selecting one sorted page of matching records.
func Find(d Dialect, f core.Filter, sort core.SortSpec, page core.Page) (string, []any) {
	wb := NewWhereBuilder(d)
	wb.AddSearch(f)
	where, _ := wb.Build()

	var sb strings.Builder
	sb.WriteString("SELECT id, name, email FROM ")
	sb.WriteString(Table)
	sb.WriteString(where)
	sb.WriteString(OrderBy(d, sort))

	offset, _ := page.Offset()
	sb.WriteString(" LIMIT ")
	sb.WriteString(wb.bind(int64(page.Size)))
	sb.WriteString(" OFFSET ")
	sb.WriteString(wb.bind(offset))

	return sb.String(), wb.args
}

// OrderBy returns the ORDER BY clause for sort with a leading space, or ""
// when sort leaves the default order.
func OrderBy(d Dialect, sort core.SortSpec) string {
	col := d.sortColumn(sort.Field)
	if col == "" {
		return ""
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

// Insert returns the single-row insert statement. Postgres returns the id
// through RETURNING; SQLite reports it through LastInsertId.
func Insert(d Dialect) string {
	q := fmt.Sprintf("INSERT INTO %s (name, email) VALUES (%s, %s)",
		Table, d.Placeholder(1), d.Placeholder(2))
	if d == Postgres {
		q += " RETURNING id"
	}
	return q
}

// Update returns the statement writing the fields set in fields to the
// record with id. An empty Fields yields an existence check instead, so the
// caller can still report whether the record exists.
func Update(d Dialect, id int64, fields core.Fields) (string, []any) {
	wb := NewWhereBuilder(d)

	var sets []string
	if fields.Name != nil {
		sets = append(sets, "name = "+wb.bind(*fields.Name))
	}
	if fields.Email != nil {
		sets = append(sets, "email = "+wb.bind(*fields.Email))
	}
	if len(sets) == 0 {
		return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = %s", Table, wb.bind(id)), wb.args
	}

	wb.Add("id", id)
	where, args := wb.Build()
	return fmt.Sprintf("UPDATE %s SET %s%s", Table, strings.Join(sets, ", "), where), args
}

// DeleteByID returns the single-row delete statement.
func DeleteByID(d Dialect) string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = %s", Table, d.Placeholder(1))
}

// DeleteIn returns a delete for the ids as an IN list. Callers bound the
// list length to stay under the engine's argument limit.
func DeleteIn(d Dialect, ids []int64) (string, []any) {
	wb := NewWhereBuilder(d)
	phs := make([]string, len(ids))
	for i, id := range ids {
		phs[i] = wb.bind(id)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", Table, strings.Join(phs, ", ")), wb.args
}
