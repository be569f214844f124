package recall

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/feature"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/rating"
)

// UserBasedCF 是基于用户的协同过滤（User-CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的物品"
//
// 算法流程：
//  1. 用户 → 评分行向量（未评分按 0 计入）
//  2. 两两计算用户余弦相似度，得到 用户×用户 矩阵
//  3. 取与目标用户最相似的 k 个其他用户（相似度降序、ID 升序）
//  4. 对目标用户未评分的物品，预测分 = 近邻中评过该物品者的平均分；
//     没有近邻评过的物品不参与排序
//
// UserBasedCF 绑定一个评分矩阵快照，构建后只读。评分变化后由上层重建。
type UserBasedCF struct {
	matrix *rating.Matrix
	sim    *SimilarityMatrix
	k      int
	logger zerolog.Logger
}

// NewUserBasedCF 在评分矩阵上构建用户相似度。矩阵没有任何用户时返回 ErrEmptyRatingStore。
func NewUserBasedCF(ctx context.Context, matrix *rating.Matrix, opts ...Option) (*UserBasedCF, error) {
	if matrix == nil || matrix.NumUsers() == 0 {
		return nil, core.ErrEmptyRatingStore
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sim, err := buildSimilarity(ctx, matrix.Users(), o.workers, func(i, j int) float64 {
		a, _ := matrix.RowAt(i)
		b, _ := matrix.RowAt(j)
		return feature.CosineDense(a, b)
	})
	if err != nil {
		return nil, err
	}

	o.logger.Debug().
		Int("users", matrix.NumUsers()).
		Int("items", matrix.NumItems()).
		Int("k", o.neighbors).
		Msg("user similarity built")

	return &UserBasedCF{matrix: matrix, sim: sim, k: o.neighbors, logger: o.logger}, nil
}

func (r *UserBasedCF) Name() string        { return "recall.u2i" }
func (r *UserBasedCF) Kind() pipeline.Kind { return pipeline.KindRecall }

// K 返回近邻数。
func (r *UserBasedCF) K() int { return r.k }

// Matrix 返回构建时使用的评分矩阵快照。
func (r *UserBasedCF) Matrix() *rating.Matrix { return r.matrix }

// Similarity 返回底层 用户×用户 相似度结构。
func (r *UserBasedCF) Similarity() *SimilarityMatrix { return r.sim }

// Neighbors 返回目标用户的 k 个近邻，不含自身。零相似度的用户同样可以成为近邻。
func (r *UserBasedCF) Neighbors(userID string) ([]Scored, error) {
	ranked, ok := r.sim.Ranked(userID)
	if !ok {
		return nil, core.NotFound(core.ModuleRecall, "user", userID)
	}
	return topN(ranked, r.k), nil
}

// predict 返回目标用户所有可预测物品的完整排序。
func (r *UserBasedCF) predict(userID string) ([]Scored, error) {
	u, ok := r.matrix.UserIndex(userID)
	if !ok {
		return nil, core.NotFound(core.ModuleRecall, "user", userID)
	}
	neighbors, err := r.Neighbors(userID)
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, len(neighbors))
	rated := make([][]bool, len(neighbors))
	for i, nb := range neighbors {
		idx, _ := r.matrix.UserIndex(nb.ID)
		rows[i], rated[i] = r.matrix.RowAt(idx)
	}

	_, targetRated := r.matrix.RowAt(u)
	items := r.matrix.Items()
	out := make([]Scored, 0)
	for j, itemID := range items {
		if targetRated[j] {
			continue
		}
		var sum float64
		count := 0
		for i := range neighbors {
			if rated[i][j] {
				sum += rows[i][j]
				count++
			}
		}
		if count == 0 {
			continue
		}
		out = append(out, Scored{ID: itemID, Score: sum / float64(count)})
	}
	sortScored(out)
	return out, nil
}

// RecommendFor 为用户推荐至多 n 个未评分物品（预测分降序、ID 升序）。
// 未知用户返回 NotFound；n <= 0 返回空。
func (r *UserBasedCF) RecommendFor(userID string, n int) ([]Scored, error) {
	ranked, err := r.predict(userID)
	if err != nil {
		return nil, err
	}
	return topN(ranked, n), nil
}

// Recall 以 rctx.UserID 为目标返回全部可预测物品，已排好序。
func (r *UserBasedCF) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput, "recall: nil context")
	}
	ranked, err := r.predict(rctx.UserID)
	if err != nil {
		return nil, err
	}
	return toItems(ranked, "cf"), nil
}

// Process 实现 pipeline.Node，忽略输入 items。
func (r *UserBasedCF) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

var _ Source = (*UserBasedCF)(nil)
