package querybuilder

import (
	"fmt"
	"strings"

	"github.com/valyala/bytebufferpool"
)

type assignment struct {
	column string
	expr   string
	values []any
}

type UpdateBuilder struct {
	table  string
	sets   []assignment
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, expr: "?", values: []any{value}})
	return b
}

// SetExpr assigns a raw expression such as NOW() or total + ?.
func (b *UpdateBuilder) SetExpr(column, expr string, values ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, expr: expr, values: values})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	args := &argList{}
	buf.WriteString("UPDATE ")
	buf.WriteString(b.table)
	buf.WriteString(" SET ")
	for i, set := range b.sets {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(set.column)
		buf.WriteString(" = ")
		buf.WriteString(args.expand(set.expr, set.values))
	}
	writeWhere(buf, b.where, args)
	if b.suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(b.suffix)
	}

	return buf.String(), args.values, nil
}
