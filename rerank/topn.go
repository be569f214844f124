package rerank

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// TopNNode 是 Top-N 截断节点，保留前 N 个物品。
//
// N <= 0 时取请求的 Limit；两者都 <= 0 时不截断。
// 推荐服务在 Pipeline 之后总会按请求的 n 截断一次，
// 因此配置中的 TopNNode 只用于进一步收紧结果数。
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &filter.FilterNode{...},
//	        &rerank.Diversity{MaxPerGroup: 2},
//	        &rerank.TopNNode{N: 5},
//	    },
//	}
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string        { return "rerank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.Limit
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
