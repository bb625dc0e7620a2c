package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/SophieeeeeChen/lawai/pkg/model"
	"github.com/SophieeeeeChen/lawai/pkg/session"
	"github.com/SophieeeeeChen/lawai/pkg/utils/logging"
)

// UploadResult reports what Upload did. Reused is true when the same owner
// already uploaded identical content under the same filename.
type UploadResult struct {
	Case    *model.CaseDocument
	Summary *model.CaseSummary
	Reused  bool
}

func fingerprint(owner model.OwnerID, filename, text string) string {
	h := sha256.New()
	h.Write([]byte(owner))
	h.Write([]byte{0})
	h.Write([]byte(filename))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Upload ingests one case document for an owner. The raw text goes to blob
// storage, the summary to the repository, and the summary sections into the
// ephemeral uploaded-case index. Summarization is all-or-nothing: on failure
// nothing is persisted.
func (uc *UseCase) Upload(ctx context.Context, owner model.OwnerID, filename string, r io.Reader) (*UploadResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read case text", goerr.V("filename", filename))
	}
	text := string(raw)
	if len(text) == 0 {
		return nil, goerr.Wrap(model.ErrInvalidArgument, "case text is empty", goerr.V("filename", filename))
	}

	fp := fingerprint(owner, filename, text)
	if existing, err := uc.repo.FindCaseByFingerprint(ctx, owner, fp); err != nil {
		return nil, err
	} else if existing != nil {
		summary, err := uc.repo.GetSummary(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if err := uc.primeSession(ctx, owner, existing.ID, existing.Filename, summary); err != nil {
			return nil, err
		}
		logging.From(ctx).Info("reusing previously uploaded case",
			"case_id", existing.ID, "filename", filename)
		return &UploadResult{Case: existing, Summary: summary, Reused: true}, nil
	}

	summary, err := uc.Segment(ctx, text)
	if err != nil {
		return nil, err
	}

	caseID := model.NewCaseID()
	doc := &model.CaseDocument{
		ID:          caseID,
		Owner:       owner,
		Filename:    filename,
		Fingerprint: fp,
		BlobKey:     fmt.Sprintf("cases/%s/%s.txt", owner, caseID),
		Decided:     summary.IsDecided(),
		CreatedAt:   time.Now(),
	}

	w, err := uc.storage.Put(ctx, doc.BlobKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open blob writer", goerr.V("key", doc.BlobKey))
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return nil, goerr.Wrap(err, "failed to write case text", goerr.V("key", doc.BlobKey))
	}
	if err := w.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close blob writer", goerr.V("key", doc.BlobKey))
	}

	if err := uc.repo.PutCase(ctx, doc); err != nil {
		return nil, err
	}
	if err := uc.repo.SaveSummary(ctx, doc.ID, summary); err != nil {
		return nil, err
	}

	if err := uc.primeSession(ctx, owner, doc.ID, doc.Filename, summary); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("case uploaded",
		"case_id", doc.ID, "filename", filename, "decided", doc.Decided,
		"sections", len(summary.Sections()))
	return &UploadResult{Case: doc, Summary: summary}, nil
}

// primeSession caches the summary and builds the uploaded-case index for the
// owner's session.
func (uc *UseCase) primeSession(ctx context.Context, owner model.OwnerID, caseID model.CaseID, source string, summary *model.CaseSummary) error {
	key := session.Key{Owner: owner, CaseID: caseID}
	uc.sessions.SetSummary(key, summary)
	if err := uc.builder.RebuildCase(ctx, caseID, source, summary.Sections()); err != nil {
		return err
	}
	uc.sessions.SetIndexed(key, true)
	return nil
}
