package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/rating"
)

// TopRated 是高分榜来源：按平均评分降序返回物品。
// 与个体用户无关，rctx 只提供 Limit（<= 0 时使用 Size）。
type TopRated struct {
	Ratings *rating.Store

	// Size 是默认榜单长度，<= 0 时为 5
	Size int
}

func (r *TopRated) Name() string        { return "recall.top_rated" }
func (r *TopRated) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *TopRated) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *TopRated) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if r.Ratings == nil {
		return nil, core.ErrEmptyRatingStore
	}
	n := r.Size
	if rctx != nil && rctx.Limit > 0 {
		n = rctx.Limit
	}
	if n <= 0 {
		n = 5
	}
	avgs := r.Ratings.TopRated(n)
	scored := make([]Scored, len(avgs))
	for i, a := range avgs {
		scored[i] = Scored{ID: a.ItemID, Score: a.Mean}
	}
	return toItems(scored, "top_rated"), nil
}

var _ Source = (*TopRated)(nil)
