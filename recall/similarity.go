package recall

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Scored 是带分数的 ID（物品或用户）。
type Scored struct {
	ID    string
	Score float64
}

// SimilarityMatrix 是按 ID 索引的方阵相似度结构。
//
// 不变量：方阵、对称、对角线为 1、取值在 [0, 1]。构建后只读。
type SimilarityMatrix struct {
	ids    []string
	index  map[string]int
	values []float64
}

// buildSimilarity 并发计算上三角并镜像到下三角，保证严格对称。
// 每行一个任务，workers <= 0 表示不限制并发。
func buildSimilarity(ctx context.Context, ids []string, workers int, sim func(i, j int) float64) (*SimilarityMatrix, error) {
	n := len(ids)
	m := &SimilarityMatrix{
		ids:    append([]string(nil), ids...),
		index:  make(map[string]int, n),
		values: make([]float64, n*n),
	}
	for i, id := range m.ids {
		m.index[id] = i
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m.values[i*n+i] = 1
			for j := i + 1; j < n; j++ {
				v := clamp01(sim(i, j))
				m.values[i*n+j] = v
				m.values[j*n+i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

func clamp01(v float64) float64 {
	switch {
	case v != v, v < 0: // NaN
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Size 返回方阵边长。
func (m *SimilarityMatrix) Size() int { return len(m.ids) }

// IDs 返回行/列 ID 的副本。
func (m *SimilarityMatrix) IDs() []string {
	return append([]string(nil), m.ids...)
}

func (m *SimilarityMatrix) Has(id string) bool {
	_, ok := m.index[id]
	return ok
}

// At 按下标读取。
func (m *SimilarityMatrix) At(i, j int) float64 {
	return m.values[i*len(m.ids)+j]
}

// Score 按 ID 读取，任一 ID 不存在时 ok 为 false。
func (m *SimilarityMatrix) Score(a, b string) (float64, bool) {
	i, ok := m.index[a]
	if !ok {
		return 0, false
	}
	j, ok := m.index[b]
	if !ok {
		return 0, false
	}
	return m.At(i, j), true
}

// Ranked 返回除自身外的所有 ID，按相似度降序、ID 升序排列。
func (m *SimilarityMatrix) Ranked(id string) ([]Scored, bool) {
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	out := make([]Scored, 0, len(m.ids)-1)
	for j, other := range m.ids {
		if j == i {
			continue
		}
		out = append(out, Scored{ID: other, Score: m.At(i, j)})
	}
	sortScored(out)
	return out, true
}

// sortScored 按分数降序排序，同分按 ID 升序，结果确定。
func sortScored(s []Scored) {
	sort.Slice(s, func(a, b int) bool {
		if s[a].Score != s[b].Score {
			return s[a].Score > s[b].Score
		}
		return s[a].ID < s[b].ID
	})
}

// topN 截取前 n 个；n <= 0 返回空切片。
func topN(s []Scored, n int) []Scored {
	if n <= 0 {
		return []Scored{}
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
