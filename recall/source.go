package recall

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// Source 表示一个推荐来源（内容相似 / 用户协同 / 高分榜）。
// Recall 返回完整排序后的候选，截断由调用方在后处理之后完成。
//
// 所有 Source 同时实现 pipeline.Node（Kind 为 recall），可以直接作为 Pipeline 的首个节点。
type Source interface {
	pipeline.Node
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// Label key
const (
	LabelRecallSource = "recall_source"
	LabelRecallRank   = "recall_rank"
)

type options struct {
	workers   int
	neighbors int
	logger    zerolog.Logger
}

func defaultOptions() options {
	cfg := &core.DefaultRecallConfig{}
	return options{
		workers:   cfg.DefaultWorkers(),
		neighbors: cfg.DefaultNeighbors(),
		logger:    zerolog.Nop(),
	}
}

// Option 配置推荐引擎。
type Option func(*options)

// WithWorkers 设置构建相似度矩阵的并发数，<= 0 表示不限制。
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithNeighbors 设置用户协同过滤的近邻数 k，<= 0 时保持默认值。
func WithNeighbors(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.neighbors = k
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// toItems 把排序结果转成 Item 并打上来源标签。
func toItems(scored []Scored, source string) []*core.Item {
	out := make([]*core.Item, 0, len(scored))
	for i, s := range scored {
		it := core.NewItem(s.ID)
		it.Score = s.Score
		it.PutLabel(LabelRecallSource, utils.Label{Value: source, Source: "recall"})
		it.PutLabel(LabelRecallRank, utils.Label{Value: strconv.Itoa(i + 1), Source: "recall"})
		out = append(out, it)
	}
	return out
}
