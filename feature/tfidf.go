package feature

import (
	"errors"
	"math"
	"sort"
)

// ErrNotFitted 表示 Vectorizer 尚未在语料上 Fit。
var ErrNotFitted = errors.New("feature: tfidf vectorizer not fitted")

// Vectorizer 是 TF-IDF 向量化器。
//
// 词表在 Fit 时从语料中构建（不依赖外部词典），词表顺序按字典序稳定。
// 权重 = 原始词频 × 平滑 IDF，其中 idf = ln((1+N)/(1+df)) + 1；
// 输出向量做 L2 归一化，因此两个向量的点积即余弦相似度。
type Vectorizer struct {
	stopWords  map[string]struct{}
	vocabulary map[string]int
	terms      []string
	idf        []float64
	fitted     bool
}

// VectorizerOption 配置 Vectorizer。
type VectorizerOption func(*Vectorizer)

// WithStopWords 替换默认的英文停用词表；传 nil 表示不过滤。
func WithStopWords(words []string) VectorizerOption {
	return func(v *Vectorizer) {
		if words == nil {
			v.stopWords = nil
			return
		}
		v.stopWords = make(map[string]struct{}, len(words))
		for _, w := range words {
			v.stopWords[w] = struct{}{}
		}
	}
}

// NewVectorizer 创建未 Fit 的向量化器，默认使用英文停用词。
func NewVectorizer(opts ...VectorizerOption) *Vectorizer {
	v := &Vectorizer{stopWords: EnglishStopWords()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Fit 在语料上构建词表与 IDF。语料可以全部是停用词，此时词表为空，
// 所有向量都是零向量。
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("feature: empty corpus for tfidf fit")
	}
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc, v.stopWords) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	v.fitted = true
	return nil
}

// Transform 将文本转换为 L2 归一化的 TF-IDF 稀疏向量，不在词表中的词被忽略。
func (v *Vectorizer) Transform(text string) (Vector, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	counts := make(map[int]float64)
	for _, tok := range Tokenize(text, v.stopWords) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	for idx, c := range counts {
		counts[idx] = c * v.idf[idx]
	}
	return NewVector(counts).Normalize(), nil
}

// FitTransform 先 Fit 再逐个 Transform。
func (v *Vectorizer) FitTransform(corpus []string) ([]Vector, error) {
	if err := v.Fit(corpus); err != nil {
		return nil, err
	}
	out := make([]Vector, len(corpus))
	for i, doc := range corpus {
		vec, err := v.Transform(doc)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Vocabulary 返回按字典序排列的词表（副本）。
func (v *Vectorizer) Vocabulary() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// IDF 返回词的 IDF，未知词返回 0。
func (v *Vectorizer) IDF(term string) float64 {
	idx, ok := v.vocabulary[term]
	if !ok {
		return 0
	}
	return v.idf[idx]
}
