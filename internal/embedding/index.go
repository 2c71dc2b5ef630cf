package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrNoEmbedder = errors.New("embedding: no embedder configured")

// Embedder 批量生成文本向量
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Match 检索结果
type Match struct {
	Chunk string  `json:"chunk"`
	Score float64 `json:"score"`
}

// Index 文档片段及其向量
type Index struct {
	Chunks  []string    `json:"chunks"`
	Vectors [][]float32 `json:"embeddings"`
}

// Build 为片段生成向量
func Build(ctx context.Context, e Embedder, chunks []string) (*Index, error) {
	if e == nil {
		return nil, ErrNoEmbedder
	}
	if len(chunks) == 0 {
		return &Index{}, nil
	}

	vectors, err := e.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	return &Index{Chunks: chunks, Vectors: vectors}, nil
}

// Len 片段数量
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.Chunks)
}

// Search 返回与 query 最相似的 topK 个片段，按得分降序
func (ix *Index) Search(ctx context.Context, e Embedder, query string, topK int) ([]Match, error) {
	if ix.Len() == 0 || len(ix.Vectors) == 0 {
		return nil, nil
	}
	if e == nil {
		return nil, ErrNoEmbedder
	}

	qv, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(qv))
	}
	return ix.Rank(qv[0], topK), nil
}

// Rank 按给定查询向量排序
func (ix *Index) Rank(query []float32, topK int) []Match {
	n := len(ix.Chunks)
	if len(ix.Vectors) < n {
		n = len(ix.Vectors)
	}

	matches := make([]Match, 0, n)
	for i := 0; i < n; i++ {
		matches = append(matches, Match{Chunk: ix.Chunks[i], Score: Cosine(query, ix.Vectors[i])})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// Cosine 余弦相似度；长度不一致或存在零向量时返回 0
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
