package ingest

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"regexp"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/SophieeeeeChen/lawai/pkg/adapter"
	"github.com/SophieeeeeChen/lawai/pkg/model"
)

//go:embed prompt/summarize.md
var summarizePromptRaw string

var summarizePromptTmpl = template.Must(template.New("summarize").Parse(summarizePromptRaw))

// neutralCitation matches decided-judgment citations like "[2023] FedCFamC1F 123".
var neutralCitation = regexp.MustCompile(`\[\d{4}\]\s+\w+.*\d`)

var decidedIndicators = []string{
	"final orders",
	"the court orders",
	"it is ordered",
	"reasons for judgment",
}

// looksDecided reports whether the raw text carries indicators of a decided
// judgment. Undecided uploads must never be stored with outcome orders.
func looksDecided(text string) bool {
	lower := strings.ToLower(text)
	for _, ind := range decidedIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return neutralCitation.MatchString(text)
}

// stripFences removes a markdown code fence the model sometimes wraps around
// its JSON output.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if i := strings.Index(text, "\n"); i >= 0 {
			text = text[i+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

// Segment converts raw case text into the closed-schema summary. Either the
// full section set is produced or nothing is: any generation or parse failure
// surfaces as ErrSummarizationUnavailable and no partial summary escapes.
func (uc *UseCase) Segment(ctx context.Context, caseText string) (*model.CaseSummary, error) {
	var buf bytes.Buffer
	if err := summarizePromptTmpl.Execute(&buf, map[string]any{
		"CaseText":    caseText,
		"TargetWords": uc.targetWords,
		"MaxWords":    uc.maxWords,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to execute summarize prompt template")
	}

	resp, err := uc.gemini.GenerateContent(ctx,
		[]*genai.Content{genai.NewContentFromText(buf.String(), genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, goerr.Wrap(model.ErrSummarizationUnavailable, "summarizer call failed", goerr.V("cause", err))
	}

	raw := stripFences(adapter.ResponseText(resp))
	if raw == "" {
		return nil, goerr.Wrap(model.ErrSummarizationUnavailable, "empty summarizer response")
	}

	var summary model.CaseSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, goerr.Wrap(model.ErrSummarizationUnavailable, "summarizer returned invalid JSON", goerr.V("cause", err))
	}

	summary.ApplyListLimits()

	// The model is instructed to null outcome_orders for undecided matters,
	// but the text check is authoritative.
	if !looksDecided(caseText) {
		summary.OutcomeOrders = nil
	}

	return &summary, nil
}
