// Package index provides the segmented vector indices backing retrieval.
// Each collection holds records for one source type and shares a single
// embedding space.
package index

import (
	"context"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

// Filter narrows a query to records matching the given metadata. Zero values
// mean no constraint.
type Filter struct {
	Section model.Topic
	CaseID  model.CaseID
}

func (f Filter) match(r *model.VectorRecord) bool {
	if f.Section != model.TopicAuto && r.Meta.Section != f.Section {
		return false
	}
	if f.CaseID != "" && r.Meta.CaseID != f.CaseID {
		return false
	}
	return true
}

// Hit is one query result with its similarity score.
type Hit struct {
	Record *model.VectorRecord
	Score  float64
}

// Index is one named vector collection.
type Index interface {
	Insert(ctx context.Context, records ...*model.VectorRecord) error
	Query(ctx context.Context, embedding []float32, topK int, filter Filter) ([]Hit, error)
	Delete(pred func(*model.VectorRecord) bool) int
	Len() int
}
