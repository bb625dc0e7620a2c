package index

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

// Memory is a brute-force cosine similarity index. Records keep insertion
// order, and equal scores resolve to the earlier insertion, so identical
// queries always return identical rankings.
type Memory struct {
	mu        sync.RWMutex
	dimension int
	records   []*model.VectorRecord
}

func NewMemory(dimension int) *Memory {
	return &Memory{dimension: dimension}
}

func (m *Memory) Insert(ctx context.Context, records ...*model.VectorRecord) error {
	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "insert cancelled")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		if len(r.Embedding) != m.dimension {
			return goerr.Wrap(model.ErrInvalidArgument, "embedding dimension mismatch",
				goerr.V("got", len(r.Embedding)), goerr.V("want", m.dimension))
		}
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *Memory) Query(ctx context.Context, embedding []float32, topK int, filter Filter) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "query cancelled")
	}
	if topK <= 0 {
		return nil, goerr.Wrap(model.ErrInvalidArgument, "topK must be positive", goerr.V("topK", topK))
	}
	if len(embedding) != m.dimension {
		return nil, goerr.Wrap(model.ErrInvalidArgument, "embedding dimension mismatch",
			goerr.V("got", len(embedding)), goerr.V("want", m.dimension))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := make([]Hit, 0, len(m.records))
	for _, r := range m.records {
		if !filter.match(r) {
			continue
		}
		hits = append(hits, Hit{Record: r, Score: cosine(embedding, r.Embedding)})
	}

	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

func (m *Memory) Delete(pred func(*model.VectorRecord) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	removed := 0
	for _, r := range m.records {
		if pred(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(m.records); i++ {
		m.records[i] = nil
	}
	m.records = kept
	return removed
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
