// Package builders 注册内置的后处理 Node 构建器。
package builders

import (
	"fmt"

	"github.com/rushteam/shoprec/config"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/conv"
	"github.com/rushteam/shoprec/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("filter.blacklist", single(buildBlacklist))
	config.Register("filter.category", single(buildCategory))
	config.Register("filter.expr", single(buildExpr))
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

// single 把单个 Filter 的构建函数包装成 FilterNode 构建器。
func single(build func(map[string]any) (filter.Filter, error)) config.NodeBuilder {
	return func(cfg map[string]any) (pipeline.Node, error) {
		f, err := build(cfg)
		if err != nil {
			return nil, err
		}
		return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
	}
}

// BuildFilterNode 构建组合过滤节点：
//
//	type: filter
//	config:
//	  filters:
//	    - {type: blacklist, item_ids: [P4]}
//	    - {type: expr, expr: 'item.meta.price < 100.0'}
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	raw, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(raw))
	for i, fc := range raw {
		m, ok := fc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("filters[%d]: expected mapping", i)
		}
		var (
			f   filter.Filter
			err error
		)
		switch t := conv.ConfigGet(m, "type", ""); t {
		case "blacklist":
			f, err = buildBlacklist(m)
		case "category":
			f, err = buildCategory(m)
		case "expr":
			f, err = buildExpr(m)
		default:
			err = fmt.Errorf("unknown filter type: %q", t)
		}
		if err != nil {
			return nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
		filters = append(filters, f)
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func buildBlacklist(cfg map[string]any) (filter.Filter, error) {
	ids := conv.SliceAnyToString(cfg["item_ids"])
	if len(ids) == 0 {
		return nil, fmt.Errorf("blacklist: item_ids required")
	}
	return filter.NewBlacklistFilter(ids, nil, ""), nil
}

func buildCategory(cfg map[string]any) (filter.Filter, error) {
	f := &filter.CategoryFilter{
		Include: conv.SliceAnyToString(cfg["include"]),
		Exclude: conv.SliceAnyToString(cfg["exclude"]),
	}
	if len(f.Include) == 0 && len(f.Exclude) == 0 {
		return nil, fmt.Errorf("category: include or exclude required")
	}
	return f, nil
}

func buildExpr(cfg map[string]any) (filter.Filter, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr: expression required")
	}
	return filter.NewExprFilter(expr, conv.ConfigGet(cfg, "invert", false))
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("rerank.topn: n must be >= 0")
	}
	return &rerank.TopNNode{N: n}, nil
}

func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	key := conv.ConfigGet(cfg, "key", "category")
	if key != "category" && key != "brand" {
		return nil, fmt.Errorf("rerank.diversity: key must be category or brand, got %q", key)
	}
	return &rerank.Diversity{Key: key, MaxPerGroup: conv.ConfigGetInt(cfg, "max_per_group", 1)}, nil
}
