package filter

import (
	"context"
	"strings"

	"github.com/rushteam/shoprec/core"
)

// MetaCategory 是 Item.Meta 中类目字段的 key，由 feature.EnrichNode 填充。
const MetaCategory = "category"

// CategoryFilter 按类目过滤，比较不区分大小写。
// Include 非空时只保留其中的类目；Exclude 中的类目总是被移除。
type CategoryFilter struct {
	Include []string
	Exclude []string
}

func (f *CategoryFilter) Name() string { return "filter.category" }

func (f *CategoryFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	category, _ := item.Meta[MetaCategory].(string)
	for _, c := range f.Exclude {
		if strings.EqualFold(c, category) {
			return true, nil
		}
	}
	if len(f.Include) == 0 {
		return false, nil
	}
	for _, c := range f.Include {
		if strings.EqualFold(c, category) {
			return false, nil
		}
	}
	return true, nil
}
