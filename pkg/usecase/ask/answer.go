package ask

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/SophieeeeeChen/lawai/pkg/adapter"
	"github.com/SophieeeeeChen/lawai/pkg/model"
	"github.com/SophieeeeeChen/lawai/pkg/session"
	"github.com/SophieeeeeChen/lawai/pkg/utils/logging"
)

//go:embed prompt/answer.md
var answerPromptRaw string

var answerPromptTmpl = template.Must(template.New("answer").Parse(answerPromptRaw))

// cacheSummaryDelimiter separates the full answer from the short summary the
// model appends for conversation memory.
const cacheSummaryDelimiter = "---CACHE_SUMMARY---"

// historyWindow is how many recent turns go into the prompt.
const historyWindow = 8

func renderCitations(citations []model.Citation) string {
	var b strings.Builder
	for _, c := range citations {
		label := string(c.SourceType)
		if c.CaseName != "" {
			label += " / " + c.CaseName
		}
		if c.Section != "" {
			label += " / " + string(c.Section)
		}
		fmt.Fprintf(&b, "[%s] (%s)\n%s\n\n", label, c.Source, c.Excerpt)
	}
	return strings.TrimSpace(b.String())
}

// splitCacheSummary separates the answer body from the trailing cache
// summary. A missing delimiter yields an empty summary.
func splitCacheSummary(text string) (answer, cacheSummary string) {
	before, after, found := strings.Cut(text, cacheSummaryDelimiter)
	if !found {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// synthesize produces the grounded answer for a question from the case
// summary and retrieved citations.
func (uc *UseCase) synthesize(ctx context.Context, key session.Key, question string, summary *model.CaseSummary, citations []model.Citation) (string, string, error) {
	history := uc.sessions.History(key)
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	var caseContext strings.Builder
	for _, sec := range summary.Sections() {
		fmt.Fprintf(&caseContext, "### %s\n%s\n\n", sec.Name.Label(), sec.Text)
	}

	var buf bytes.Buffer
	if err := answerPromptTmpl.Execute(&buf, map[string]any{
		"Question":         question,
		"CaseContext":      strings.TrimSpace(caseContext.String()),
		"RetrievedContext": renderCitations(citations),
		"History":          history,
	}); err != nil {
		return "", "", goerr.Wrap(err, "failed to execute answer prompt template")
	}

	resp, err := uc.gemini.GenerateContent(ctx,
		[]*genai.Content{genai.NewContentFromText(buf.String(), genai.RoleUser)},
		nil,
	)
	if err != nil {
		return "", "", goerr.Wrap(err, "failed to synthesize answer")
	}

	raw := adapter.ResponseText(resp)
	if raw == "" {
		return "", "", goerr.New("empty synthesis response")
	}

	answer, cacheSummary := splitCacheSummary(raw)
	return answer, cacheSummary, nil
}

// recordTurn appends the exchange to the session history and the durable QA
// log. The compact cache summary stands in for the full answer in history so
// the rolling window stays small.
func (uc *UseCase) recordTurn(ctx context.Context, key session.Key, topic model.Topic, question, answer, cacheSummary string, citations []model.Citation) {
	remembered := cacheSummary
	if remembered == "" {
		remembered = answer
	}
	uc.sessions.AppendHistory(key,
		model.Turn{Role: model.RoleUser, Content: question},
		model.Turn{Role: model.RoleAssistant, Content: remembered},
	)

	sources := make([]string, 0, len(citations))
	for _, c := range citations {
		sources = append(sources, c.Source)
	}

	qa := &model.QARecord{
		ID:              model.NewQAID(),
		CaseID:          key.CaseID,
		Owner:           key.Owner,
		Question:        question,
		Answer:          answer,
		Topic:           topic,
		Sources:         sources,
		ContextSnapshot: renderCitations(citations),
		CreatedAt:       time.Now(),
	}
	if err := uc.repo.AppendQA(ctx, qa); err != nil {
		// The answer is already produced; losing one log record must not
		// fail the question.
		logging.From(ctx).Warn("failed to append QA record", "case_id", key.CaseID, "error", err)
	}
}
