package repo

import (
	"fmt"
	"strings"
)

// conds accumulates WHERE conditions with positional args. Each expr contains
// one %d verb replaced by the arg's placeholder ordinal.
type conds struct {
	exprs []string
	args  []any
}

func (c *conds) add(expr string, arg any) {
	c.args = append(c.args, arg)
	c.exprs = append(c.exprs, fmt.Sprintf(expr, len(c.args)))
}

func (c *conds) addExpr(expr string) {
	c.exprs = append(c.exprs, expr)
}

func (c *conds) clause() string {
	if len(c.exprs) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.exprs, " AND ")
}

// next returns the placeholder ordinal for an extra trailing arg (limit,
// offset) appended after the conditions.
func (c *conds) next(arg any) int {
	c.args = append(c.args, arg)
	return len(c.args)
}
