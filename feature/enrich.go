package feature

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Item.Meta 中由 EnrichNode 填充的 key
const (
	MetaCategory = "category"
	MetaBrand    = "brand"
	MetaPrice    = "price"
)

// ProductLookup 按 ID 查询目录记录，*catalog.Index 实现了它。
type ProductLookup interface {
	Lookup(id string) (core.Product, error)
}

// EnrichNode 把目录属性（名称、类目、品牌、价格）写入候选物品，
// 供后续过滤/重排节点和结果展示使用。目录中找不到或名称为空的物品以 ID 作为名称。
type EnrichNode struct {
	Catalog ProductLookup
}

func (n *EnrichNode) Name() string        { return "feature.enrich" }
func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *EnrichNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	for _, it := range items {
		if it == nil {
			continue
		}
		if it.Meta == nil {
			it.Meta = make(map[string]any)
		}
		p, err := n.Catalog.Lookup(it.ID)
		if err != nil {
			if it.Name == "" {
				it.Name = it.ID
			}
			continue
		}
		it.Name = p.Name
		if it.Name == "" {
			it.Name = it.ID
		}
		it.Meta[MetaCategory] = p.Category
		it.Meta[MetaBrand] = p.Brand
		it.Meta[MetaPrice] = p.Price
	}
	return items, nil
}
