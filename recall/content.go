package recall

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/feature"
	"github.com/rushteam/shoprec/pipeline"
)

// ContentSimilarity 是基于内容的物品相似度引擎（item-to-item）。
//
// 每个物品的文本指纹（名称、类目、品牌、特征描述）经 TF-IDF 向量化，
// 两两计算余弦相似度得到 物品×物品 矩阵。矩阵在启动时构建一次，之后只读，
// 评分写入不会影响它，因此查询无需加锁。
type ContentSimilarity struct {
	index  *catalog.Index
	matrix *SimilarityMatrix
	logger zerolog.Logger
}

// NewContentSimilarity 在目录上构建内容相似度矩阵。目录为空时返回 ErrEmptyCatalog。
func NewContentSimilarity(ctx context.Context, index *catalog.Index, opts ...Option) (*ContentSimilarity, error) {
	if index == nil || index.Len() == 0 {
		return nil, core.ErrEmptyCatalog
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ids := index.AllIDs()
	corpus := make([]string, len(ids))
	for i, id := range ids {
		fp, err := index.Fingerprint(id)
		if err != nil {
			return nil, err
		}
		corpus[i] = fp
	}

	vectorizer := feature.NewVectorizer()
	vecs, err := vectorizer.FitTransform(corpus)
	if err != nil {
		return nil, err
	}
	// 向量已 L2 归一化，点积即余弦
	matrix, err := buildSimilarity(ctx, ids, o.workers, func(i, j int) float64 {
		return feature.Dot(vecs[i], vecs[j])
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info().
		Int("items", len(ids)).
		Int("vocabulary", len(vectorizer.Vocabulary())).
		Msg("content similarity built")

	return &ContentSimilarity{index: index, matrix: matrix, logger: o.logger}, nil
}

func (c *ContentSimilarity) Name() string        { return "recall.content" }
func (c *ContentSimilarity) Kind() pipeline.Kind { return pipeline.KindRecall }

// SimilarTo 返回与 itemID 最相似的 n 个其他物品（相似度降序、ID 升序）。
// 未知物品返回 NotFound；n 超过物品数时返回全部；n <= 0 返回空。
func (c *ContentSimilarity) SimilarTo(itemID string, n int) ([]Scored, error) {
	ranked, ok := c.matrix.Ranked(itemID)
	if !ok {
		return nil, core.NotFound(core.ModuleRecall, "item", itemID)
	}
	return topN(ranked, n), nil
}

// Similarity 返回两个物品的相似度。
func (c *ContentSimilarity) Similarity(a, b string) (float64, error) {
	if !c.matrix.Has(a) {
		return 0, core.NotFound(core.ModuleRecall, "item", a)
	}
	v, ok := c.matrix.Score(a, b)
	if !ok {
		return 0, core.NotFound(core.ModuleRecall, "item", b)
	}
	return v, nil
}

// Matrix 返回底层相似度结构（只读）。
func (c *ContentSimilarity) Matrix() *SimilarityMatrix { return c.matrix }

// Recall 以 rctx.ItemID 为种子返回除自身外的全部物品，已排好序。
func (c *ContentSimilarity) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput, "recall: nil context")
	}
	ranked, ok := c.matrix.Ranked(rctx.ItemID)
	if !ok {
		return nil, core.NotFound(core.ModuleRecall, "item", rctx.ItemID)
	}
	items := toItems(ranked, "content")
	for _, it := range items {
		it.Name = c.index.Name(it.ID)
	}
	return items, nil
}

// Process 实现 pipeline.Node，忽略输入 items。
func (c *ContentSimilarity) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return c.Recall(ctx, rctx)
}

var _ Source = (*ContentSimilarity)(nil)
