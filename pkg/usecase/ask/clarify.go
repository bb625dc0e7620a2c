package ask

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/SophieeeeeChen/lawai/pkg/adapter"
	"github.com/SophieeeeeChen/lawai/pkg/model"
	"github.com/SophieeeeeChen/lawai/pkg/session"
	"github.com/SophieeeeeChen/lawai/pkg/utils/logging"
)

// condenseWordLimit is the point past which a clarification answer is
// condensed before being merged into the summary.
const condenseWordLimit = 50

// condenseTruncateWords is the fallback length when condensing fails.
const condenseTruncateWords = 60

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// condenseAnswer shortens a long clarification answer to a compact fact
// suitable for a summary section. When the model is unavailable the answer is
// truncated instead so resolution still proceeds.
func (uc *UseCase) condenseAnswer(ctx context.Context, field, answer string) string {
	if wordCount(answer) <= condenseWordLimit {
		return answer
	}

	prompt := "Condense the following answer about \"" + field + "\" into one factual sentence. " +
		"Keep every number, date, and name. Output only the sentence.\n\n" + answer
	resp, err := uc.gemini.GenerateContent(ctx,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		nil,
	)
	if err == nil {
		if condensed := strings.TrimSpace(adapter.ResponseText(resp)); condensed != "" {
			return condensed
		}
	}

	logging.From(ctx).Warn("failed to condense clarification answer, truncating", "field", field, "error", err)
	words := strings.Fields(answer)
	if len(words) > condenseTruncateWords {
		words = words[:condenseTruncateWords]
	}
	return strings.Join(words, " ")
}

// SubmitClarification resolves the session's pending clarification with the
// user's answers, merges them into the cached summary, and retries the
// original question once. The pending round is destroyed regardless of
// outcome: a failed resolution requires a fresh Ask, not a resubmission.
func (uc *UseCase) SubmitClarification(ctx context.Context, owner model.OwnerID, caseID model.CaseID, answers map[string]string) (*Output, error) {
	key := session.Key{Owner: owner, CaseID: caseID}

	pending := uc.sessions.TakePending(key)
	if pending == nil {
		return nil, goerr.Wrap(model.ErrNoActiveClarification, "nothing to clarify", goerr.V("case_id", caseID))
	}

	summary, err := uc.loadSummary(ctx, key)
	if err != nil {
		return nil, err
	}

	merged := 0
	for _, field := range pending.MissingFields {
		answer, ok := answers[field]
		if !ok {
			continue
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			continue
		}
		answer = uc.condenseAnswer(ctx, field, answer)
		if err := summary.AppendField(pending.Topic, field, answer); err != nil {
			return nil, err
		}
		merged++
	}

	if merged > 0 {
		uc.sessions.SetSummary(key, summary)
		if err := uc.repo.SaveSummary(ctx, caseID, summary); err != nil {
			return nil, err
		}
		// Section content changed, so the uploaded-case index is stale.
		uc.sessions.SetIndexed(key, false)
	}

	logging.From(ctx).Info("clarification resolved",
		"case_id", caseID, "topic", pending.Topic,
		"asked", len(pending.MissingFields), "merged", merged)

	// Single retry of the original question. Still-missing facts surface as
	// a fresh clarification round.
	return uc.Ask(ctx, Input{
		Owner:    owner,
		CaseID:   caseID,
		Question: pending.Question,
		Topic:    pending.Topic,
	})
}
