package index_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/SophieeeeeChen/lawai/pkg/index"
	"github.com/SophieeeeeChen/lawai/pkg/model"
)

// stubEmbed maps text length onto a deterministic unit-ish vector.
func stubEmbed(ctx context.Context, text string, dim int32) ([]float32, error) {
	if text == "" {
		return nil, goerr.New("empty text")
	}
	vec := make([]float32, dim)
	vec[len(text)%int(dim)] = 1
	return vec, nil
}

func TestBuilderRebuildCaseIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := index.NewRegistry(4)
	builder := index.NewBuilder(reg, stubEmbed, 4)

	sections := []model.Section{
		{Name: model.SectionOverview, Text: "- Case: Smith & Smith"},
		{Name: model.TopicPropertyDivision, Text: "- Asset Pool: family home"},
	}

	gt.NoError(t, builder.RebuildCase(ctx, "c1", "smith.txt", sections))
	uploaded, err := reg.Collection(model.SourceUploadedCase)
	gt.NoError(t, err)
	gt.Equal(t, uploaded.Len(), 2)

	// rebuilding replaces, never duplicates
	gt.NoError(t, builder.RebuildCase(ctx, "c1", "smith.txt", sections))
	gt.Equal(t, uploaded.Len(), 2)

	// another case is untouched by the rebuild
	gt.NoError(t, builder.RebuildCase(ctx, "c2", "brown.txt", sections[:1]))
	gt.NoError(t, builder.RebuildCase(ctx, "c1", "smith.txt", sections))
	gt.Equal(t, uploaded.Len(), 3)
}

func TestBuilderEmbedRecords(t *testing.T) {
	ctx := context.Background()
	reg := index.NewRegistry(4)
	builder := index.NewBuilder(reg, stubEmbed, 4)

	records, err := builder.EmbedRecords(ctx, model.SourceStatute, []index.RecordInput{
		{Text: "s 79 alteration of property interests", Source: "family_law_act_s79"},
		{Text: "s 60CC best interests of the child", Source: "family_law_act_s60cc"},
	})
	gt.NoError(t, err)
	gt.A(t, records).Length(2)
	gt.Equal(t, records[0].Meta.SourceType, model.SourceStatute)
	gt.A(t, records[0].Embedding).Length(4)

	statutes, err := reg.Collection(model.SourceStatute)
	gt.NoError(t, err)
	gt.Equal(t, statutes.Len(), 2)

	// embedding failure aborts before any insert
	_, err = builder.EmbedRecords(ctx, model.SourceStatute, []index.RecordInput{{Text: ""}})
	gt.Error(t, err)
	gt.Equal(t, statutes.Len(), 2)
}

func TestBuilderRestore(t *testing.T) {
	ctx := context.Background()
	reg := index.NewRegistry(2)
	builder := index.NewBuilder(reg, stubEmbed, 2)

	records := []*model.VectorRecord{
		{
			ID:        model.NewRecordID(),
			Text:      "stored chunk",
			Embedding: []float32{1, 0},
			Meta:      model.RecordMeta{SourceType: model.SourcePrecedentFull, Source: "smith"},
		},
	}
	gt.NoError(t, builder.Restore(ctx, model.SourcePrecedentFull, records))

	full, err := reg.Collection(model.SourcePrecedentFull)
	gt.NoError(t, err)
	gt.Equal(t, full.Len(), 1)
}
