package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// FilterNode 是过滤 Node，可以组合多个过滤器。
// 任何一个过滤器返回 true，该物品就会被移除；过滤器出错时保留物品并记录日志。
// 过滤只删除元素，不改变剩余元素的相对顺序。
type FilterNode struct {
	Filters []Filter
	Logger  zerolog.Logger
}

func (n *FilterNode) Name() string        { return "filter.node" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	filtered := 0
	for _, item := range items {
		if item == nil {
			continue
		}
		drop := false
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				n.Logger.Warn().Err(err).Str("filter", f.Name()).Str("item", item.ID).Msg("filter failed, item kept")
				continue
			}
			if ok {
				drop = true
				n.Logger.Debug().Str("filter", f.Name()).Str("item", item.ID).Msg("item filtered")
				break
			}
		}
		if drop {
			filtered++
			continue
		}
		out = append(out, item)
	}
	if filtered > 0 {
		n.Logger.Debug().Int("filtered", filtered).Int("kept", len(out)).Msg("filter node done")
	}
	return out, nil
}
