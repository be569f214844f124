package filter

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/shoprec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的物品。
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单物品 ID 列表
	ItemIDs []string

	// Store 用于从存储中读取黑名单（可选），值为 JSON 字符串数组
	Store core.Store

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

func NewBlacklistFilter(itemIDs []string, store core.Store, key string) *BlacklistFilter {
	return &BlacklistFilter{ItemIDs: itemIDs, Store: store, Key: key}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	for _, id := range f.ItemIDs {
		if item.ID == id {
			return true, nil
		}
	}

	if f.Store == nil || f.Key == "" {
		return false, nil
	}
	data, err := f.Store.Get(ctx, f.Key)
	if core.IsStoreNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return false, err
	}
	for _, id := range ids {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}
