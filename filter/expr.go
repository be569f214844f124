package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述保留条件：表达式为 true 的物品被保留，
// Invert 为 true 时反过来，表达式为 true 的物品被移除。
type ExprFilter struct {
	expr   *dsl.Expr
	Invert bool
}

// NewExprFilter 编译表达式，语法错误在构建时即返回。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	e, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{expr: e, Invert: invert}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

func (f *ExprFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	ok, err := f.expr.Eval(item, rctx)
	if err != nil {
		return false, err
	}
	if f.Invert {
		return ok, nil
	}
	return !ok, nil
}
