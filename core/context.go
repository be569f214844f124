package core

import "github.com/rushteam/shoprec/pkg/utils"

// Scene 标记一次推荐请求的类型。
const (
	SceneItem = "item" // 以物品找相似物品
	SceneUser = "user" // 以用户找未评分物品
)

// RecommendContext 承载一次推荐请求的主体与参数，贯穿后处理 Pipeline 透传。
type RecommendContext struct {
	// UserID 仅在 SceneUser 时有值
	UserID string

	// ItemID 仅在 SceneItem 时有值
	ItemID string

	Scene string

	// Limit 是调用方请求的结果数量
	Limit int

	// Labels 是请求级标签，可驱动过滤规则
	Labels map[string]utils.Label

	// Params 请求级上下文参数，供表达式过滤使用
	Params map[string]any
}

// Subject 返回请求主体（物品 ID 或用户 ID）。
func (rctx *RecommendContext) Subject() string {
	if rctx.Scene == SceneUser {
		return rctx.UserID
	}
	return rctx.ItemID
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
