package repository

import (
	"context"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

// Repository defines the interface for durable case data persistence. The
// vector record methods exist so every index collection can be rebuilt from
// the store after a restart.
type Repository interface {
	// PutCase saves an uploaded case document
	PutCase(ctx context.Context, doc *model.CaseDocument) error

	// GetCase retrieves a case document by ID
	GetCase(ctx context.Context, id model.CaseID) (*model.CaseDocument, error)

	// FindCaseByFingerprint looks up an owner's case by content fingerprint,
	// returning nil without error when no case matches
	FindCaseByFingerprint(ctx context.Context, owner model.OwnerID, fingerprint string) (*model.CaseDocument, error)

	// ListCases retrieves all case documents of one owner
	ListCases(ctx context.Context, owner model.OwnerID) ([]*model.CaseDocument, error)

	// SaveSummary stores the summary blob of a case, replacing any previous one
	SaveSummary(ctx context.Context, id model.CaseID, summary *model.CaseSummary) error

	// GetSummary retrieves the summary blob of a case
	GetSummary(ctx context.Context, id model.CaseID) (*model.CaseSummary, error)

	// AppendQA appends one question/answer record to a case's QA log
	AppendQA(ctx context.Context, qa *model.QARecord) error

	// ListQA retrieves QA records of a case in chronological order, truncated
	// to the newest limit entries when limit is positive
	ListQA(ctx context.Context, owner model.OwnerID, caseID model.CaseID, limit int) ([]*model.QARecord, error)

	// PutVectorRecords persists embedded records for index reconstruction
	PutVectorRecords(ctx context.Context, records []*model.VectorRecord) error

	// ListVectorRecords retrieves all persisted records of one collection
	ListVectorRecords(ctx context.Context, st model.SourceType) ([]*model.VectorRecord, error)
}
