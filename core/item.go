package core

import "github.com/rushteam/shoprec/pkg/utils"

// Item 是推荐结果的统一承载结构：物品 ID、可读名称、分数、标签。
// Labels 用于解释（来自哪个引擎、哪个指标）；Score 用于排序决策。
type Item struct {
	ID     string
	Name   string
	Score  float64
	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Names 按顺序返回物品名称，用于展示与历史记录。
func Names(items []*Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, it.Name)
	}
	return out
}

// Product 是目录中的一条物品记录，加载后不可变。
// 文本字段缺失时为空串，不会是 nil。
type Product struct {
	ID       string  `json:"product_id"`
	Name     string  `json:"product_name"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Features string  `json:"features"`
	Price    float64 `json:"price"`
}

// Rating 是一条 (用户, 物品, 评分) 观测。
// 同一 (用户, 物品) 可出现多次，派生矩阵时以最近写入的为准。
type Rating struct {
	UserID string  `json:"user_id"`
	ItemID string  `json:"product_id"`
	Score  float64 `json:"rating"`
}
