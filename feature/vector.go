package feature

import (
	"math"
	"sort"
)

// Term 是稀疏向量中的一个 (词表下标, 权重)。
type Term struct {
	Index  int
	Weight float64
}

// Vector 是按 Index 升序排列的稀疏向量，便于归并计算点积。
type Vector []Term

// NewVector 由 下标->权重 构建有序稀疏向量，零权重被丢弃。
func NewVector(weights map[int]float64) Vector {
	if len(weights) == 0 {
		return nil
	}
	v := make(Vector, 0, len(weights))
	for idx, w := range weights {
		if w == 0 {
			continue
		}
		v = append(v, Term{Index: idx, Weight: w})
	}
	sort.Slice(v, func(i, j int) bool { return v[i].Index < v[j].Index })
	return v
}

// Norm 返回 L2 范数。
func (v Vector) Norm() float64 {
	var s float64
	for _, t := range v {
		s += t.Weight * t.Weight
	}
	return math.Sqrt(s)
}

// Normalize 原地做 L2 归一化；零向量保持不变。
func (v Vector) Normalize() Vector {
	n := v.Norm()
	if n == 0 {
		return v
	}
	for i := range v {
		v[i].Weight /= n
	}
	return v
}

// Dot 归并计算两个有序稀疏向量的点积。
func Dot(a, b Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index == b[j].Index:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Index < b[j].Index:
			i++
		default:
			j++
		}
	}
	return dot
}

// Cosine 计算余弦相似度；任一向量为零向量时返回 0。
func Cosine(a, b Vector) float64 {
	denom := a.Norm() * b.Norm()
	if denom == 0 {
		return 0
	}
	return Dot(a, b) / denom
}

// CosineDense 计算稠密向量的余弦相似度，长度不一致或零向量时返回 0。
func CosineDense(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
