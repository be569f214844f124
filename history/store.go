package history

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rushteam/shoprec/core"
)

// StoreRecorder 把记录以 JSON 形式追加到 ListStore 的一个列表（例如 Redis list）。
type StoreRecorder struct {
	store core.ListStore
	key   string
}

// NewStoreRecorder 创建 StoreRecorder，key 为空时使用 "shoprec:history"。
func NewStoreRecorder(store core.ListStore, key string) *StoreRecorder {
	if key == "" {
		key = "shoprec:history"
	}
	return &StoreRecorder{store: store, key: key}
}

func (r *StoreRecorder) Record(ctx context.Context, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = r.store.RPush(ctx, r.key, b)
	return err
}

func (r *StoreRecorder) Recent(ctx context.Context, n int) ([]Entry, error) {
	start := int64(0)
	if n > 0 {
		start = -int64(n)
	}
	raw, err := r.store.LRange(ctx, r.key, start, -1)
	if err != nil {
		return nil, fmt.Errorf("read history from %s: %w", r.store.Name(), err)
	}
	out := make([]Entry, 0, len(raw))
	for i, b := range raw {
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("decode history #%d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

var _ Recorder = (*StoreRecorder)(nil)
