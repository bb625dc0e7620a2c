package index

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

// EmbedFunc turns text into a vector of the given dimension.
type EmbedFunc func(ctx context.Context, text string, dim int32) ([]float32, error)

// Builder embeds text and feeds the registry's collections. Upload and
// question answering share it so the ephemeral uploaded-case index is rebuilt
// the same way everywhere.
type Builder struct {
	registry *Registry
	embed    EmbedFunc
	dim      int32
}

func NewBuilder(registry *Registry, embed EmbedFunc, dim int32) *Builder {
	return &Builder{registry: registry, embed: embed, dim: dim}
}

func (b *Builder) Registry() *Registry {
	return b.registry
}

// Dim is the embedding dimension shared by every collection.
func (b *Builder) Dim() int32 {
	return b.dim
}

// RebuildCase replaces the uploaded-case records of one case with freshly
// embedded summary sections. Dropping first keeps the rebuild idempotent.
func (b *Builder) RebuildCase(ctx context.Context, caseID model.CaseID, source string, sections []model.Section) error {
	records := make([]*model.VectorRecord, 0, len(sections))
	for _, sec := range sections {
		vec, err := b.embed(ctx, sec.Text, b.dim)
		if err != nil {
			return goerr.Wrap(err, "failed to embed section",
				goerr.V("case_id", caseID), goerr.V("section", sec.Name))
		}
		records = append(records, &model.VectorRecord{
			ID:        model.NewRecordID(),
			Text:      sec.Text,
			Embedding: vec,
			Meta: model.RecordMeta{
				SourceType: model.SourceUploadedCase,
				CaseID:     caseID,
				Section:    sec.Name,
				Source:     source,
			},
			CreatedAt: time.Now(),
		})
	}

	b.registry.DropCase(caseID)
	idx, err := b.registry.Collection(model.SourceUploadedCase)
	if err != nil {
		return err
	}
	return idx.Insert(ctx, records...)
}

// EmbedRecords embeds texts into new records for a durable collection and
// inserts them. The returned records are also handed back so callers can
// persist them for reconstruction.
func (b *Builder) EmbedRecords(ctx context.Context, st model.SourceType, items []RecordInput) ([]*model.VectorRecord, error) {
	idx, err := b.registry.Collection(st)
	if err != nil {
		return nil, err
	}

	records := make([]*model.VectorRecord, 0, len(items))
	for _, item := range items {
		vec, err := b.embed(ctx, item.Text, b.dim)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed record", goerr.V("source", item.Source))
		}
		records = append(records, &model.VectorRecord{
			ID:        model.NewRecordID(),
			Text:      item.Text,
			Embedding: vec,
			Meta: model.RecordMeta{
				SourceType: st,
				CaseID:     item.CaseID,
				CaseName:   item.CaseName,
				Section:    item.Section,
				Source:     item.Source,
			},
			CreatedAt: time.Now(),
		})
	}

	if err := idx.Insert(ctx, records...); err != nil {
		return nil, err
	}
	return records, nil
}

// Restore loads already-embedded records into a collection, skipping the
// embedding step. Used at startup to rebuild durable collections from the
// repository.
func (b *Builder) Restore(ctx context.Context, st model.SourceType, records []*model.VectorRecord) error {
	idx, err := b.registry.Collection(st)
	if err != nil {
		return err
	}
	return idx.Insert(ctx, records...)
}

// RecordInput is one text unit waiting to be embedded.
type RecordInput struct {
	Text     string
	CaseID   model.CaseID
	CaseName string
	Section  model.Topic
	Source   string
}
