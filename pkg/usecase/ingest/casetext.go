package ingest

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

// CaseText loads the raw judgment text an owner uploaded for a case. Another
// owner's case reads as not found.
func (uc *UseCase) CaseText(ctx context.Context, owner model.OwnerID, caseID model.CaseID) (string, error) {
	doc, err := uc.repo.GetCase(ctx, caseID)
	if err != nil {
		return "", err
	}
	if doc.Owner != owner {
		return "", goerr.Wrap(model.ErrCaseNotFound, "case not found", goerr.V("case_id", caseID))
	}

	r, err := uc.storage.Get(ctx, doc.BlobKey)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open case blob", goerr.V("key", doc.BlobKey))
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read case blob", goerr.V("key", doc.BlobKey))
	}
	return string(raw), nil
}
