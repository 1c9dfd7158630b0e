// Package querybuilder assembles PostgreSQL statements with positional
// ($n) placeholders for sqlx.
package querybuilder

import (
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
)

// argList collects bound values in placeholder order.
type argList struct {
	values []any
}

func (a *argList) bind(value any) string {
	a.values = append(a.values, value)
	return "$" + strconv.Itoa(len(a.values))
}

// expand swaps each ? in expr for the next bound value. Extra ? marks are
// kept verbatim.
func (a *argList) expand(expr string, values []any) string {
	if len(values) == 0 {
		return expr
	}

	var out strings.Builder
	out.Grow(len(expr) + 2*len(values))
	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] != '?' || next >= len(values) {
			out.WriteByte(expr[i])
			continue
		}
		out.WriteString(a.bind(values[next]))
		next++
	}
	return out.String()
}

// Condition renders one predicate of a WHERE clause.
type Condition func(buf *bytebufferpool.ByteBuffer, args *argList)

func compare(column, op string, value any) Condition {
	return func(buf *bytebufferpool.ByteBuffer, args *argList) {
		buf.WriteString(column)
		buf.WriteString(op)
		buf.WriteString(args.bind(value))
	}
}

func Eq(column string, value any) Condition {
	return compare(column, " = ", value)
}

func Gte(column string, value any) Condition {
	return compare(column, " >= ", value)
}

func Lte(column string, value any) Condition {
	return compare(column, " <= ", value)
}

// EqLiteral inlines a quoted string instead of binding it, for enum-like
// values that should stay visible in query plans.
func EqLiteral(column, value string) Condition {
	return func(buf *bytebufferpool.ByteBuffer, _ *argList) {
		buf.WriteString(column)
		buf.WriteString(" = ")
		buf.WriteString(quoteLiteral(value))
	}
}

// In matches nothing when values is empty.
func In(column string, values []any) Condition {
	return func(buf *bytebufferpool.ByteBuffer, args *argList) {
		if len(values) == 0 {
			buf.WriteString("1=0")
			return
		}
		buf.WriteString(column)
		buf.WriteString(" IN (")
		for i, value := range values {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(args.bind(value))
		}
		buf.WriteString(")")
	}
}

func InValues[T any](column string, values []T) Condition {
	boxed := make([]any, len(values))
	for i, value := range values {
		boxed[i] = value
	}
	return In(column, boxed)
}

func IsNull(column string) Condition {
	return func(buf *bytebufferpool.ByteBuffer, _ *argList) {
		buf.WriteString(column)
		buf.WriteString(" IS NULL")
	}
}

// Expr is a raw predicate; each ? binds the next value.
func Expr(expr string, values ...any) Condition {
	return func(buf *bytebufferpool.ByteBuffer, args *argList) {
		buf.WriteString(args.expand(expr, values))
	}
}

func writeWhere(buf *bytebufferpool.ByteBuffer, conditions []Condition, args *argList) {
	for i, condition := range conditions {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		condition(buf, args)
	}
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
