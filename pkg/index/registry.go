package index

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

// Registry holds the four retrieval collections: precedent full text,
// precedent summaries, statutes, and uploaded cases. The first three are
// durable (rebuilt from the repository at startup), the uploaded collection
// is ephemeral and reconstructed per case on demand.
type Registry struct {
	collections map[model.SourceType]Index
}

func NewRegistry(dimension int) *Registry {
	r := &Registry{collections: make(map[model.SourceType]Index, 4)}
	for _, st := range model.SourceTypes() {
		r.collections[st] = NewMemory(dimension)
	}
	return r
}

// Replace swaps one collection's backing index. Intended for tests that need
// a misbehaving collection.
func (r *Registry) Replace(st model.SourceType, idx Index) {
	r.collections[st] = idx
}

// Collection returns the index for a source type.
func (r *Registry) Collection(st model.SourceType) (Index, error) {
	idx, ok := r.collections[st]
	if !ok {
		return nil, goerr.Wrap(model.ErrInvalidArgument, "unknown collection", goerr.V("source_type", st))
	}
	return idx, nil
}

// DropCase removes every uploaded record for a case. Used before rebuilding
// the ephemeral index so reconstruction stays idempotent.
func (r *Registry) DropCase(caseID model.CaseID) int {
	idx := r.collections[model.SourceUploadedCase]
	return idx.Delete(func(rec *model.VectorRecord) bool {
		return rec.Meta.CaseID == caseID
	})
}
