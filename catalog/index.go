// Package catalog 保存物品目录快照，并为每个物品派生文本指纹。
//
// 目录只加载一次、只读；换一份目录需要重建 Index 以及所有依赖它的组件。
package catalog

import (
	"fmt"
	"strings"

	"github.com/rushteam/shoprec/core"
)

// Index 是物品 ID 到物品记录与文本指纹的内存映射。
type Index struct {
	ids          []string
	products     map[string]core.Product
	fingerprints map[string]string
}

// New 从物品快照构建目录。
// 零条记录返回 core.ErrEmptyCatalog；ID 为空或重复返回 INVALID_INPUT。
func New(products []core.Product) (*Index, error) {
	if len(products) == 0 {
		return nil, core.ErrEmptyCatalog
	}
	idx := &Index{
		ids:          make([]string, 0, len(products)),
		products:     make(map[string]core.Product, len(products)),
		fingerprints: make(map[string]string, len(products)),
	}
	for i, p := range products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
				fmt.Sprintf("catalog: record %d has empty id", i))
		}
		if _, dup := idx.products[id]; dup {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
				fmt.Sprintf("catalog: duplicate id %q", id))
		}
		p.ID = id
		idx.ids = append(idx.ids, id)
		idx.products[id] = p
		idx.fingerprints[id] = Fingerprint(p)
	}
	return idx, nil
}

// Fingerprint 拼接 名称、类别、品牌、特征描述，作为内容相似度的输入文本。
func Fingerprint(p core.Product) string {
	return p.Name + " " + p.Category + " " + p.Brand + " " + p.Features
}

// Lookup 按 ID 查找物品。
func (idx *Index) Lookup(id string) (core.Product, error) {
	p, ok := idx.products[id]
	if !ok {
		return core.Product{}, core.NotFound(core.ModuleCatalog, "item", id)
	}
	return p, nil
}

// Has 判断物品是否存在。
func (idx *Index) Has(id string) bool {
	_, ok := idx.products[id]
	return ok
}

// Fingerprint 返回物品的文本指纹。
func (idx *Index) Fingerprint(id string) (string, error) {
	fp, ok := idx.fingerprints[id]
	if !ok {
		return "", core.NotFound(core.ModuleCatalog, "item", id)
	}
	return fp, nil
}

// AllIDs 按快照顺序返回全部物品 ID（返回副本）。
func (idx *Index) AllIDs() []string {
	out := make([]string, len(idx.ids))
	copy(out, idx.ids)
	return out
}

// Len 返回物品数量。
func (idx *Index) Len() int { return len(idx.ids) }

// Name 返回物品名称，物品不存在时返回 ID 本身。
func (idx *Index) Name(id string) string {
	if p, ok := idx.products[id]; ok && p.Name != "" {
		return p.Name
	}
	return id
}

// Search 按名称做大小写不敏感的子串匹配，结果保持快照顺序。
// 空关键字返回全部物品。
func (idx *Index) Search(keyword string) []core.Product {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	out := make([]core.Product, 0)
	for _, id := range idx.ids {
		p := idx.products[id]
		if kw == "" || strings.Contains(strings.ToLower(p.Name), kw) {
			out = append(out, p)
		}
	}
	return out
}
