package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/SophieeeeeChen/lawai/pkg/model"
	"github.com/SophieeeeeChen/lawai/pkg/repository"
)

func TestMemoryCaseDedupe(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	doc := &model.CaseDocument{
		ID:          model.NewCaseID(),
		Owner:       "sophie",
		Filename:    "brown_v_brown.txt",
		Fingerprint: "fp-abc",
		CreatedAt:   time.Now(),
	}
	gt.NoError(t, repo.PutCase(ctx, doc))

	found, err := repo.FindCaseByFingerprint(ctx, "sophie", "fp-abc")
	gt.NoError(t, err)
	gt.V(t, found).NotNil()
	gt.Equal(t, found.ID, doc.ID)

	// other owner does not see the case
	found, err = repo.FindCaseByFingerprint(ctx, "someone-else", "fp-abc")
	gt.NoError(t, err)
	gt.V(t, found).Nil()

	// unknown fingerprint is nil, not an error
	found, err = repo.FindCaseByFingerprint(ctx, "sophie", "fp-unknown")
	gt.NoError(t, err)
	gt.V(t, found).Nil()
}

func TestMemorySummaryRoundtrip(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	caseID := model.NewCaseID()

	_, err := repo.GetSummary(ctx, caseID)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrSummaryNotFound))

	summary := &model.CaseSummary{
		CaseName: "Brown & Brown",
		Facts:    []string{"married for 12 years", "two children"},
		Parenting: &model.ParentingSection{
			ChildAges: []string{"8 and 11"},
		},
	}
	gt.NoError(t, repo.SaveSummary(ctx, caseID, summary))

	retrieved, err := repo.GetSummary(ctx, caseID)
	gt.NoError(t, err)
	gt.Equal(t, retrieved.CaseName, "Brown & Brown")
	gt.V(t, retrieved.Parenting).NotNil()
	gt.Equal(t, retrieved.Parenting.ChildAges, []string{"8 and 11"})
	gt.V(t, retrieved.Property).Nil()

	// stored blob is a snapshot, later mutation must not leak in
	summary.CaseName = "mutated"
	retrieved, err = repo.GetSummary(ctx, caseID)
	gt.NoError(t, err)
	gt.Equal(t, retrieved.CaseName, "Brown & Brown")
}

func TestMemoryQALogOrderAndLimit(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	caseID := model.NewCaseID()
	owner := model.OwnerID("sophie")

	base := time.Now()
	for i := 0; i < 5; i++ {
		gt.NoError(t, repo.AppendQA(ctx, &model.QARecord{
			ID:        model.NewQAID(),
			CaseID:    caseID,
			Owner:     owner,
			Question:  string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := repo.ListQA(ctx, owner, caseID, 0)
	gt.NoError(t, err)
	gt.A(t, all).Length(5)
	gt.Equal(t, all[0].Question, "a")
	gt.Equal(t, all[4].Question, "e")

	limited, err := repo.ListQA(ctx, owner, caseID, 3)
	gt.NoError(t, err)
	gt.A(t, limited).Length(3)
	gt.Equal(t, limited[0].Question, "c")
	gt.Equal(t, limited[2].Question, "e")
}

func TestMemoryVectorRecords(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	records := []*model.VectorRecord{
		{
			ID:        model.NewRecordID(),
			Text:      "s 79 property settlement",
			Embedding: []float32{0.1, 0.2},
			Meta:      model.RecordMeta{SourceType: model.SourceStatute, Source: "family_law_act"},
		},
		{
			ID:        model.NewRecordID(),
			Text:      "- Outcome: 60/40 split",
			Embedding: []float32{0.3, 0.4},
			Meta:      model.RecordMeta{SourceType: model.SourcePrecedentSummary, Section: model.SectionOutcomeOrders},
		},
	}
	gt.NoError(t, repo.PutVectorRecords(ctx, records))

	statutes, err := repo.ListVectorRecords(ctx, model.SourceStatute)
	gt.NoError(t, err)
	gt.A(t, statutes).Length(1)
	gt.Equal(t, statutes[0].Meta.Source, "family_law_act")

	summaries, err := repo.ListVectorRecords(ctx, model.SourcePrecedentSummary)
	gt.NoError(t, err)
	gt.A(t, summaries).Length(1)

	// record with an unknown source type is rejected
	bad := []*model.VectorRecord{{ID: model.NewRecordID(), Meta: model.RecordMeta{SourceType: "bogus"}}}
	gt.Error(t, repo.PutVectorRecords(ctx, bad))
}
