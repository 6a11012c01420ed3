package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Query composes a SELECT statement piece by piece. Filter fragments use
// "?" placeholders which are renumbered to $1, $2, … in argument order.
type Query struct {
	columns []string
	from    string
	joins   []string
	where   []string
	args    []any
	groupBy []string
	orderBy []string
	offset  *int
	limit   *int
}

// Scope narrows a query. Callers pass scopes where they would otherwise
// pass a pre-filtered base query.
type Scope func(q *Query)

// Select starts a query over from returning columns.
func Select(from string, columns ...string) *Query {
	return &Query{from: from, columns: columns}
}

// Join appends a join clause. Identical clauses are added only once so
// scopes can safely request the same join.
func (q *Query) Join(clause string) *Query {
	for _, j := range q.joins {
		if j == clause {
			return q
		}
	}
	q.joins = append(q.joins, clause)
	return q
}

// HasJoin reports whether a join clause mentioning table has been added.
func (q *Query) HasJoin(table string) bool {
	for _, j := range q.joins {
		if strings.Contains(j, "JOIN "+table+" ") {
			return true
		}
	}
	return false
}

// Where ANDs cond onto the filter. Each "?" in cond consumes one arg.
func (q *Query) Where(cond string, args ...any) *Query {
	if n := strings.Count(cond, "?"); n != len(args) {
		panic(fmt.Sprintf("store: %q has %d placeholders, got %d args", cond, n, len(args)))
	}
	var b strings.Builder
	i := 0
	for _, r := range cond {
		if r == '?' {
			q.args = append(q.args, args[i])
			i++
			b.WriteString("$" + strconv.Itoa(len(q.args)))
			continue
		}
		b.WriteRune(r)
	}
	q.where = append(q.where, b.String())
	return q
}

// Apply runs each scope against q.
func (q *Query) Apply(scopes ...Scope) *Query {
	for _, s := range scopes {
		if s != nil {
			s(q)
		}
	}
	return q
}

func (q *Query) GroupBy(cols ...string) *Query {
	q.groupBy = append(q.groupBy, cols...)
	return q
}

// OrderBy appends ordering terms; earlier calls take precedence.
func (q *Query) OrderBy(terms ...string) *Query {
	q.orderBy = append(q.orderBy, terms...)
	return q
}

func (q *Query) Offset(n int) *Query {
	q.offset = &n
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = &n
	return q
}

// SQL renders the statement and its arguments.
func (q *Query) SQL() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.columns, ", "))
	q.writeBody(&b)
	if len(q.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBy, ", "))
	}
	if q.offset != nil {
		b.WriteString(" OFFSET " + strconv.Itoa(*q.offset))
	}
	if q.limit != nil {
		b.WriteString(" LIMIT " + strconv.Itoa(*q.limit))
	}
	return b.String(), q.args
}

// CountSQL renders a row count of the query, ignoring ordering and paging.
func (q *Query) CountSQL() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT count(*)")
	q.writeBody(&b)
	return b.String(), q.args
}

func (q *Query) writeBody(b *strings.Builder) {
	b.WriteString(" FROM ")
	b.WriteString(q.from)
	for _, j := range q.joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		for i, w := range q.where {
			if i > 0 {
				b.WriteString(" AND ")
			}
			b.WriteString("(" + w + ")")
		}
	}
	if len(q.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(q.groupBy, ", "))
	}
}
