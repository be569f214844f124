// Package shoprec 是一个混合商品推荐引擎。
//
// 两条推荐路径：
//   - 按商品：基于商品名与特征文本的 TF-IDF 余弦相似度（recall.ContentSimilarity）
//   - 按用户：基于用户评分向量的 user-based 协同过滤（recall.UserBasedCF）
//
// service.Recommender 串联两者：来源节点生成完整排序，feature.EnrichNode 补充
// 商品属性，可选的后处理 Pipeline（filter / rerank）再调整结果，最后截断到 n 条。
// 评分通过 rating.Store 追加，协同过滤引擎在下一次按用户推荐前重建。
package shoprec

import (
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/service"
)

// 轻量 facade：便于直接 import "shoprec" 使用核心抽象。
type (
	Recommender = service.Recommender
	Pipeline    = pipeline.Pipeline
	Node        = pipeline.Node
	Kind        = pipeline.Kind
	Item        = core.Item
	Product     = core.Product
	Rating      = core.Rating
)

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
