// Package dsl 提供基于 CEL (Common Expression Language) 的结果过滤表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.MapType(cel.StringType, cel.StringType)),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Expr 是编译后的布尔表达式，可被多个 goroutine 并发求值。
//
// 可用变量：
//   - item.id / item.name / item.score / item.meta.category / item.meta.brand / item.meta.price
//   - label.recall_source（Label 的 Value）；不存在的 key 用 has(label.x) 或 "x" in label 判断
//   - rctx.user_id / rctx.item_id / rctx.scene / rctx.limit / rctx.params
//
// 示例：
//   - `item.meta.category == "Footwear"`
//   - `item.score >= 0.2 && label.recall_source == "content"`
//   - `item.meta.price < 100.0`
type Expr struct {
	source string
	prg    cel.Program
}

// Compile 解析、检查并编译表达式，要求结果类型为 bool。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if ot := ast.OutputType(); !ot.IsExactType(cel.BoolType) && !ot.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression %q must return bool, got %s", expr, ot)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Expr{source: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (e *Expr) String() string { return e.source }

// Eval 对单个物品求值。
func (e *Expr) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", e.source, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return bool, got %T", e.source, out.Value())
	}
	return result, nil
}

func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]string)
	itemMap := map[string]any{}
	if item != nil {
		for k, v := range item.Labels {
			labels[k] = v.Value
		}
		meta := item.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		itemMap = map[string]any{
			"id":    item.ID,
			"name":  item.Name,
			"score": item.Score,
			"meta":  meta,
		}
	}

	rctxMap := map[string]any{}
	if rctx != nil {
		params := rctx.Params
		if params == nil {
			params = map[string]any{}
		}
		rctxMap = map[string]any{
			"user_id": rctx.UserID,
			"item_id": rctx.ItemID,
			"scene":   rctx.Scene,
			"limit":   rctx.Limit,
			"params":  params,
		}
	}

	return map[string]any{
		"item":  itemMap,
		"label": labels,
		"rctx":  rctxMap,
	}
}
