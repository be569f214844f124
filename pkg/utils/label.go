package utils

// Label 是推荐结果上的解释信息，例如 recall_source=content、recall_rank=2。
// 同一 key 被多个节点写入时按 MergeLabel 累积。
type Label struct {
	Value string `json:"value"`

	// Source 是写入该 Label 的阶段，目前只有 recall 节点写入（见 recall.toItems）
	Source string `json:"source"`
}

// MergeLabel 合并同名 Label：Value 以 '|' 拼接，Source 以 ',' 拼接，空值一侧被忽略。
// 例如同一物品两次写入 recall_source 得到 "content|cf"。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
