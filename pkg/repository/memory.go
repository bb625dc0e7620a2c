package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

// Memory implements Repository in process memory. Used for tests and local
// runs without a Firestore project.
type Memory struct {
	mu        sync.RWMutex
	cases     map[model.CaseID]*model.CaseDocument
	summaries map[model.CaseID][]byte
	qa        []*model.QARecord
	vectors   map[model.SourceType][]*model.VectorRecord
}

func NewMemory() *Memory {
	return &Memory{
		cases:     make(map[model.CaseID]*model.CaseDocument),
		summaries: make(map[model.CaseID][]byte),
		vectors:   make(map[model.SourceType][]*model.VectorRecord),
	}
}

func (r *Memory) PutCase(ctx context.Context, doc *model.CaseDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.cases[doc.ID] = &copied
	return nil
}

func (r *Memory) GetCase(ctx context.Context, id model.CaseID) (*model.CaseDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.cases[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrCaseNotFound, "case not found", goerr.V("case_id", id))
	}
	copied := *doc
	return &copied, nil
}

func (r *Memory) FindCaseByFingerprint(ctx context.Context, owner model.OwnerID, fingerprint string) (*model.CaseDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.cases {
		if doc.Owner == owner && doc.Fingerprint == fingerprint {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *Memory) ListCases(ctx context.Context, owner model.OwnerID) ([]*model.CaseDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var docs []*model.CaseDocument
	for _, doc := range r.cases {
		if doc.Owner == owner {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

func (r *Memory) SaveSummary(ctx context.Context, id model.CaseID, summary *model.CaseSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal summary", goerr.V("case_id", id))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries[id] = raw
	return nil
}

func (r *Memory) GetSummary(ctx context.Context, id model.CaseID) (*model.CaseSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	raw, ok := r.summaries[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrSummaryNotFound, "summary not found", goerr.V("case_id", id))
	}
	var summary model.CaseSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal summary blob", goerr.V("case_id", id))
	}
	return &summary, nil
}

func (r *Memory) AppendQA(ctx context.Context, qa *model.QARecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *qa
	r.qa = append(r.qa, &copied)
	return nil
}

func (r *Memory) ListQA(ctx context.Context, owner model.OwnerID, caseID model.CaseID, limit int) ([]*model.QARecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var records []*model.QARecord
	for _, qa := range r.qa {
		if qa.Owner == owner && qa.CaseID == caseID {
			copied := *qa
			records = append(records, &copied)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

func (r *Memory) PutVectorRecords(ctx context.Context, records []*model.VectorRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		if err := rec.Meta.SourceType.Validate(); err != nil {
			return goerr.Wrap(err, "invalid vector record", goerr.V("record_id", rec.ID))
		}
		copied := *rec
		r.vectors[rec.Meta.SourceType] = append(r.vectors[rec.Meta.SourceType], &copied)
	}
	return nil
}

func (r *Memory) ListVectorRecords(ctx context.Context, st model.SourceType) ([]*model.VectorRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]*model.VectorRecord, 0, len(r.vectors[st]))
	for _, rec := range r.vectors[st] {
		copied := *rec
		records = append(records, &copied)
	}
	return records, nil
}
