package model

import (
	"time"

	"github.com/google/uuid"
)

type CaseID string

func NewCaseID() CaseID {
	return CaseID(uuid.New().String())
}

// OwnerID identifies the user a case belongs to. Sessions and uploaded-case
// retrieval are always scoped to one owner.
type OwnerID string

// CaseDocument is the durable metadata of one uploaded case. Fingerprint is a
// hash over (owner, filename, text) used to deduplicate repeat uploads. The
// raw text itself lives in blob storage under BlobKey.
type CaseDocument struct {
	ID          CaseID    `json:"id" firestore:"id"`
	Owner       OwnerID   `json:"owner" firestore:"owner"`
	Filename    string    `json:"filename" firestore:"filename"`
	Fingerprint string    `json:"fingerprint" firestore:"fingerprint"`
	BlobKey     string    `json:"blob_key" firestore:"blob_key"`
	Decided     bool      `json:"decided" firestore:"decided"`
	CreatedAt   time.Time `json:"created_at" firestore:"created_at"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a session's conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type QAID string

func NewQAID() QAID {
	return QAID(uuid.New().String())
}

// QARecord is one answered question persisted to the QA log of a case.
// ContextSnapshot keeps the retrieved context the answer was grounded on.
type QARecord struct {
	ID              QAID      `json:"id" firestore:"id"`
	CaseID          CaseID    `json:"case_id" firestore:"case_id"`
	Owner           OwnerID   `json:"owner" firestore:"owner"`
	Question        string    `json:"question" firestore:"question"`
	Answer          string    `json:"answer" firestore:"answer"`
	Topic           Topic     `json:"topic" firestore:"topic"`
	Sources         []string  `json:"sources" firestore:"sources"`
	ContextSnapshot string    `json:"context_snapshot" firestore:"context_snapshot"`
	CreatedAt       time.Time `json:"created_at" firestore:"created_at"`
}
