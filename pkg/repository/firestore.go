package repository

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

const (
	collectionCases     = "cases"
	collectionSummaries = "summaries"
	collectionQA        = "qa_records"
	collectionVectors   = "vectors"
)

// Firestore implements Repository backed by Cloud Firestore. Summaries are
// stored as one JSON blob per case so the closed schema can evolve without
// document migrations.
type Firestore struct {
	client *firestore.Client
}

func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}
	return &Firestore{client: client}, nil
}

func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) PutCase(ctx context.Context, doc *model.CaseDocument) error {
	_, err := r.client.Collection(collectionCases).Doc(string(doc.ID)).Set(ctx, doc)
	if err != nil {
		return goerr.Wrap(err, "failed to put case", goerr.V("case_id", doc.ID))
	}
	return nil
}

func (r *Firestore) GetCase(ctx context.Context, id model.CaseID) (*model.CaseDocument, error) {
	snap, err := r.client.Collection(collectionCases).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrCaseNotFound, "case not found", goerr.V("case_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V("case_id", id))
	}

	var doc model.CaseDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode case", goerr.V("case_id", id))
	}
	return &doc, nil
}

func (r *Firestore) FindCaseByFingerprint(ctx context.Context, owner model.OwnerID, fingerprint string) (*model.CaseDocument, error) {
	iter := r.client.Collection(collectionCases).
		Where("owner", "==", string(owner)).
		Where("fingerprint", "==", fingerprint).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query case by fingerprint", goerr.V("owner", owner))
	}

	var doc model.CaseDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode case")
	}
	return &doc, nil
}

func (r *Firestore) ListCases(ctx context.Context, owner model.OwnerID) ([]*model.CaseDocument, error) {
	iter := r.client.Collection(collectionCases).
		Where("owner", "==", string(owner)).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var docs []*model.CaseDocument
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list cases", goerr.V("owner", owner))
		}
		var doc model.CaseDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case")
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

type summaryDoc struct {
	CaseID    string    `firestore:"case_id"`
	JSON      string    `firestore:"json"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (r *Firestore) SaveSummary(ctx context.Context, id model.CaseID, summary *model.CaseSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal summary", goerr.V("case_id", id))
	}

	_, err = r.client.Collection(collectionSummaries).Doc(string(id)).Set(ctx, &summaryDoc{
		CaseID:    string(id),
		JSON:      string(raw),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to save summary", goerr.V("case_id", id))
	}
	return nil
}

func (r *Firestore) GetSummary(ctx context.Context, id model.CaseID) (*model.CaseSummary, error) {
	snap, err := r.client.Collection(collectionSummaries).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrSummaryNotFound, "summary not found", goerr.V("case_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get summary", goerr.V("case_id", id))
	}

	var doc summaryDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode summary doc", goerr.V("case_id", id))
	}

	var summary model.CaseSummary
	if err := json.Unmarshal([]byte(doc.JSON), &summary); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal summary blob", goerr.V("case_id", id))
	}
	return &summary, nil
}

func (r *Firestore) AppendQA(ctx context.Context, qa *model.QARecord) error {
	_, err := r.client.Collection(collectionQA).Doc(string(qa.ID)).Set(ctx, qa)
	if err != nil {
		return goerr.Wrap(err, "failed to append QA record", goerr.V("case_id", qa.CaseID))
	}
	return nil
}

func (r *Firestore) ListQA(ctx context.Context, owner model.OwnerID, caseID model.CaseID, limit int) ([]*model.QARecord, error) {
	q := r.client.Collection(collectionQA).
		Where("owner", "==", string(owner)).
		Where("case_id", "==", string(caseID)).
		OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var records []*model.QARecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list QA records", goerr.V("case_id", caseID))
		}
		var qa model.QARecord
		if err := snap.DataTo(&qa); err != nil {
			return nil, goerr.Wrap(err, "failed to decode QA record")
		}
		records = append(records, &qa)
	}

	// Query is newest-first for the limit; callers want chronological order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (r *Firestore) PutVectorRecords(ctx context.Context, records []*model.VectorRecord) error {
	// BulkWriter keeps corpus ingestion from issuing one RPC per record.
	bw := r.client.BulkWriter(ctx)
	for _, rec := range records {
		if _, err := bw.Set(r.client.Collection(collectionVectors).Doc(string(rec.ID)), rec); err != nil {
			return goerr.Wrap(err, "failed to enqueue vector record", goerr.V("record_id", rec.ID))
		}
	}
	bw.End()
	return nil
}

func (r *Firestore) ListVectorRecords(ctx context.Context, st model.SourceType) ([]*model.VectorRecord, error) {
	iter := r.client.Collection(collectionVectors).
		Where("meta.source_type", "==", string(st)).
		Documents(ctx)
	defer iter.Stop()

	var records []*model.VectorRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list vector records", goerr.V("source_type", st))
		}
		var rec model.VectorRecord
		if err := snap.DataTo(&rec); err != nil {
			return nil, goerr.Wrap(err, "failed to decode vector record")
		}
		records = append(records, &rec)
	}
	return records, nil
}
