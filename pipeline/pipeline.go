package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/core"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：来源节点生成候选，
// 过滤/重排节点在完整排序上做后处理。
type Pipeline struct {
	Name  string
	Nodes []Node

	// Logger 零值时不输出日志
	Logger zerolog.Logger
}

// Run 依次执行各节点。任一节点出错即中止，错误带节点名并保留原始错误链。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in := len(cur)
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("pipeline node %s: %w", node.Name(), err)
		}
		p.Logger.Debug().
			Str("pipeline", p.Name).
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", in).
			Int("out", len(next)).
			Msg("node processed")
		cur = next
	}
	return cur, nil
}

// Len 返回节点数。nil Pipeline 视为空。
func (p *Pipeline) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Nodes)
}
