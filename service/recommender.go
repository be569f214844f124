// Package service 是推荐核心的门面：两个查询（ByItem、ByUser）与一个写入（IngestRating）。
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/feature"
	"github.com/rushteam/shoprec/history"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/rating"
	"github.com/rushteam/shoprec/recall"
)

// Recommender 组合内容相似度引擎与用户协同过滤引擎。
//
// 并发模型：
//   - 内容引擎启动时构建一次，只读，ByItem 不加锁
//   - IngestRating 写入评分后置 dirty；ByUser 在同一把锁下发现 dirty 时先重建
//     评分矩阵与用户相似度再取快照，保证查询看到调用时刻之前的全部评分
//   - 查询过程中没有外部 I/O；历史记录失败只记日志
type Recommender struct {
	catalog *catalog.Index
	ratings *rating.Store
	content *recall.ContentSimilarity
	top     *recall.TopRated

	mu    sync.Mutex
	cf    *recall.UserBasedCF
	dirty bool

	history history.Recorder
	post    *pipeline.Pipeline
	logger  zerolog.Logger
	now     func() time.Time

	neighbors int
	workers   int
}

// Option 配置 Recommender。
type Option func(*Recommender)

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Recommender) { r.logger = logger }
}

// WithHistory 设置历史记录器，默认丢弃。
func WithHistory(h history.Recorder) Option {
	return func(r *Recommender) {
		if h != nil {
			r.history = h
		}
	}
}

// WithPostProcess 设置后处理 Pipeline（过滤/重排），作用于完整排序，之后再截断到 n。
func WithPostProcess(p *pipeline.Pipeline) Option {
	return func(r *Recommender) { r.post = p }
}

// WithNeighbors 设置协同过滤近邻数 k。
func WithNeighbors(k int) Option {
	return func(r *Recommender) { r.neighbors = k }
}

// WithWorkers 设置相似度矩阵构建并发数。
func WithWorkers(n int) Option {
	return func(r *Recommender) { r.workers = n }
}

// WithClock 替换历史记录使用的时钟（测试用）。
func WithClock(now func() time.Time) Option {
	return func(r *Recommender) { r.now = now }
}

// New 并发构建两个引擎。目录为空返回 ErrEmptyCatalog，评分为空返回 ErrEmptyRatingStore。
func New(ctx context.Context, index *catalog.Index, ratings *rating.Store, opts ...Option) (*Recommender, error) {
	if index == nil || index.Len() == 0 {
		return nil, core.ErrEmptyCatalog
	}
	if ratings == nil || ratings.Len() == 0 {
		return nil, core.ErrEmptyRatingStore
	}
	cfg := &core.DefaultRecallConfig{}
	r := &Recommender{
		catalog:   index,
		ratings:   ratings,
		top:       &recall.TopRated{Ratings: ratings},
		history:   history.Nop{},
		logger:    zerolog.Nop(),
		now:       time.Now,
		neighbors: cfg.DefaultNeighbors(),
		workers:   cfg.DefaultWorkers(),
	}
	for _, opt := range opts {
		opt(r)
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		content, err := recall.NewContentSimilarity(gctx, index, r.engineOptions()...)
		if err != nil {
			return err
		}
		r.content = content
		return nil
	})
	g.Go(func() error {
		cf, err := recall.NewUserBasedCF(gctx, ratings.Matrix(), r.engineOptions()...)
		if err != nil {
			return err
		}
		r.cf = cf
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Info().
		Int("items", index.Len()).
		Int("ratings", ratings.Len()).
		Dur("took", time.Since(start)).
		Msg("recommender ready")
	return r, nil
}

func (r *Recommender) engineOptions() []recall.Option {
	return []recall.Option{
		recall.WithWorkers(r.workers),
		recall.WithNeighbors(r.neighbors),
		recall.WithLogger(r.logger),
	}
}

// ByItem 返回与 itemID 内容最相似的 n 个其他物品。
func (r *Recommender) ByItem(ctx context.Context, itemID string, n int) ([]*core.Item, error) {
	rctx := &core.RecommendContext{Scene: core.SceneItem, ItemID: itemID, Limit: n}
	items, err := r.run(ctx, r.content, rctx)
	if err != nil {
		return nil, err
	}
	r.record(ctx, history.KindContent, itemID, items)
	return items, nil
}

// ByUser 返回为 userID 预测的 n 个未评分物品。没有评分的用户返回 NotFound。
func (r *Recommender) ByUser(ctx context.Context, userID string, n int) ([]*core.Item, error) {
	cf, err := r.userEngine(ctx)
	if err != nil {
		return nil, err
	}
	rctx := &core.RecommendContext{Scene: core.SceneUser, UserID: userID, Limit: n}
	items, err := r.run(ctx, cf, rctx)
	if err != nil {
		return nil, err
	}
	r.record(ctx, history.KindUser, userID, items)
	return items, nil
}

// userEngine 在锁内按需重建并返回当前快照。快照只读，查询本身不需要持锁。
func (r *Recommender) userEngine(ctx context.Context) (*recall.UserBasedCF, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.dirty && r.cf != nil && !r.ratings.Stale() {
		return r.cf, nil
	}
	start := time.Now()
	cf, err := recall.NewUserBasedCF(ctx, r.ratings.Matrix(), r.engineOptions()...)
	if err != nil {
		return nil, err
	}
	r.cf = cf
	r.dirty = false
	r.logger.Debug().
		Int("users", cf.Matrix().NumUsers()).
		Dur("took", time.Since(start)).
		Msg("user similarity rebuilt")
	return cf, nil
}

// IngestRating 写入一条评分；越界返回 InvalidRating，未知物品返回 NotFound，均不修改状态。
// 持久化追加不在这里完成，由调用方负责（见 rating.AppendWithRetry）。
func (r *Recommender) IngestRating(_ context.Context, userID, itemID string, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ratings.Append(userID, itemID, score); err != nil {
		return err
	}
	r.dirty = true
	r.logger.Debug().Str("user", userID).Str("item", itemID).Float64("score", score).Msg("rating ingested")
	return nil
}

// TopRated 返回平均评分最高的 n 个物品，不写历史。
func (r *Recommender) TopRated(ctx context.Context, n int) ([]*core.Item, error) {
	if n <= 0 {
		return []*core.Item{}, nil
	}
	return r.run(ctx, r.top, &core.RecommendContext{Limit: n})
}

// History 返回最近 n 条推荐历史。
func (r *Recommender) History(ctx context.Context, n int) ([]history.Entry, error) {
	return r.history.Recent(ctx, n)
}

// Catalog 返回目录索引。
func (r *Recommender) Catalog() *catalog.Index { return r.catalog }

// run 执行 来源 → 补充属性 → 后处理，最后截断到 rctx.Limit。
func (r *Recommender) run(ctx context.Context, source recall.Source, rctx *core.RecommendContext) ([]*core.Item, error) {
	nodes := []pipeline.Node{source, &feature.EnrichNode{Catalog: r.catalog}}
	if r.post != nil {
		nodes = append(nodes, r.post.Nodes...)
	}
	p := &pipeline.Pipeline{Name: rctx.Scene, Nodes: nodes, Logger: r.logger}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	if rctx.Limit <= 0 {
		return []*core.Item{}, nil
	}
	if len(items) > rctx.Limit {
		items = items[:rctx.Limit]
	}
	return items, nil
}

func (r *Recommender) record(ctx context.Context, kind history.Kind, subject string, items []*core.Item) {
	e := history.Entry{Time: r.now(), Kind: kind, Subject: subject, Names: core.Names(items)}
	if err := r.history.Record(ctx, e); err != nil {
		r.logger.Warn().Err(err).Str("kind", string(kind)).Str("subject", subject).Msg("record history failed")
	}
}
