package rerank

import (
	"context"
	"strings"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Diversity 按分组（类目或品牌）限制结果中同组物品的数量，超出的物品被移除，
// 其余物品保持原有顺序。分组值取自 Item.Meta[Key]，比较不区分大小写；
// 没有分组值的物品不受限制。
type Diversity struct {
	// Key 默认 "category"，也可以是 "brand"
	Key string

	// MaxPerGroup 每组最多保留的数量，<= 0 时为 1
	MaxPerGroup int
}

func (n *Diversity) Name() string        { return "rerank.diversity" }
func (n *Diversity) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	key := n.Key
	if key == "" {
		key = "category"
	}
	limit := n.MaxPerGroup
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, len(items))
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		group, _ := it.Meta[key].(string)
		group = strings.ToLower(group)
		if group == "" {
			out = append(out, it)
			continue
		}
		if seen[group] >= limit {
			continue
		}
		seen[group]++
		out = append(out, it)
	}
	return out, nil
}
