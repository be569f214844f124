package core

// RecallConfig 提供推荐引擎的默认参数。
type RecallConfig interface {
	// DefaultNeighbors 返回用户协同过滤默认的近邻数 k
	DefaultNeighbors() int

	// DefaultTopK 返回默认的推荐条数 n
	DefaultTopK() int

	// DefaultRatingRange 返回默认的有效评分区间（闭区间）
	DefaultRatingRange() (min, max float64)

	// DefaultWorkers 返回构建相似度矩阵的默认并发数
	DefaultWorkers() int
}

// DefaultRecallConfig 是默认的推荐配置实现。
type DefaultRecallConfig struct{}

func (c *DefaultRecallConfig) DefaultNeighbors() int {
	return 3
}

func (c *DefaultRecallConfig) DefaultTopK() int {
	return 3
}

func (c *DefaultRecallConfig) DefaultRatingRange() (float64, float64) {
	return 1, 5
}

func (c *DefaultRecallConfig) DefaultWorkers() int {
	return 4
}

var _ RecallConfig = (*DefaultRecallConfig)(nil)
