package model

import (
	"time"

	"github.com/google/uuid"
)

// SourceType identifies which retrieval collection a record belongs to.
type SourceType string

const (
	SourcePrecedentFull    SourceType = "precedent_full"
	SourcePrecedentSummary SourceType = "precedent_summary"
	SourceStatute          SourceType = "statute"
	SourceUploadedCase     SourceType = "uploaded_case"
)

func SourceTypes() []SourceType {
	return []SourceType{
		SourcePrecedentFull,
		SourcePrecedentSummary,
		SourceStatute,
		SourceUploadedCase,
	}
}

func (s SourceType) Validate() error {
	switch s {
	case SourcePrecedentFull, SourcePrecedentSummary, SourceStatute, SourceUploadedCase:
		return nil
	default:
		return ErrInvalidArgument
	}
}

type RecordID string

func NewRecordID() RecordID {
	return RecordID(uuid.New().String())
}

// RecordMeta is the metadata attached to every vector record. Section is
// empty for full-text chunks and statutes.
type RecordMeta struct {
	SourceType SourceType `json:"source_type" firestore:"source_type"`
	CaseID     CaseID     `json:"case_id,omitempty" firestore:"case_id,omitempty"`
	CaseName   string     `json:"case_name,omitempty" firestore:"case_name,omitempty"`
	Section    Topic      `json:"section_name,omitempty" firestore:"section_name,omitempty"`
	Source     string     `json:"source" firestore:"source"`
}

// VectorRecord is one embedded text unit stored in a segmented index.
type VectorRecord struct {
	ID        RecordID   `json:"id" firestore:"id"`
	Text      string     `json:"text" firestore:"text"`
	Embedding []float32  `json:"embedding" firestore:"embedding"`
	Meta      RecordMeta `json:"meta" firestore:"meta"`
	CreatedAt time.Time  `json:"created_at" firestore:"created_at"`
}

// Citation is one retrieved excerpt handed to answer synthesis and echoed
// back to the caller as provenance.
type Citation struct {
	Source     string     `json:"source"`
	SourceType SourceType `json:"source_type"`
	CaseID     CaseID     `json:"case_id,omitempty"`
	CaseName   string     `json:"case_name,omitempty"`
	Section    Topic      `json:"section_name,omitempty"`
	Score      float64    `json:"score"`
	Excerpt    string     `json:"excerpt"`
}
