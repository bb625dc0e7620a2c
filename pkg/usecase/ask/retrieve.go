package ask

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"

	"github.com/SophieeeeeChen/lawai/pkg/index"
	"github.com/SophieeeeeChen/lawai/pkg/model"
	"github.com/SophieeeeeChen/lawai/pkg/session"
	"github.com/SophieeeeeChen/lawai/pkg/utils/logging"
)

const (
	// queryKeywordLimit caps the catalog keywords echoed into the query text.
	queryKeywordLimit = 8
	queryCaseExcerpt  = 300
	queryHistExcerpt  = 200
)

// sourcePlan describes one collection's share of the fan-out.
type sourcePlan struct {
	sourceType model.SourceType
	topK       int
	filter     index.Filter
}

// buildPlan assembles the four-way retrieval plan. Statutes and full text are
// never topic-filtered; summaries and the uploaded case are filtered when a
// topic is known. Only the uploaded collection is scoped to the session case.
func buildPlan(caseID model.CaseID, topic model.Topic) []sourcePlan {
	sectionFilter := index.Filter{}
	if topic.IsTopic() {
		sectionFilter.Section = topic
	}
	return []sourcePlan{
		{sourceType: model.SourcePrecedentSummary, topK: topKSummaries, filter: sectionFilter},
		{sourceType: model.SourcePrecedentFull, topK: topKFullText},
		{sourceType: model.SourceStatute, topK: topKStatutes},
		{sourceType: model.SourceUploadedCase, topK: topKUploaded, filter: index.Filter{Section: sectionFilter.Section, CaseID: caseID}},
	}
}

// truncate shortens text to at most limit bytes without splitting a rune.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// buildQuery composes the text that gets embedded for retrieval: topic label,
// the catalog keywords the question touched, the question itself, and short
// excerpts of the case section and conversation history.
func (uc *UseCase) buildQuery(key session.Key, question string, topic model.Topic, summary *model.CaseSummary) string {
	label := "General Family Law"
	if topic.IsTopic() {
		label = topic.Label()
	}
	parts := []string{"[" + label + "]"}

	if matched := uc.catalog.MatchedKeywords(question, topic, queryKeywordLimit); len(matched) > 0 {
		parts = append(parts, "Legal terms: "+strings.Join(matched, ", "))
	}

	parts = append(parts, "Question: "+question)

	sectionName := model.SectionOverview
	if topic.IsTopic() {
		sectionName = topic
	}
	if text := summary.SectionText(sectionName); text != "" {
		parts = append(parts, "Case context: "+truncate(text, queryCaseExcerpt))
	}

	if history := uc.sessions.History(key); len(history) > 0 {
		last := history[len(history)-1]
		parts = append(parts, "History: "+truncate(last.Content, queryHistExcerpt))
	}

	return strings.Join(parts, "\n")
}

// retrieve embeds the structured query once, queries all four collections
// concurrently with per-source timeouts, and merges the hits by score. A
// failing source degrades the result set; only all four failing is an error.
func (uc *UseCase) retrieve(ctx context.Context, key session.Key, question string, topic model.Topic, summary *model.CaseSummary) ([]model.Citation, error) {
	caseID := key.CaseID
	query := uc.buildQuery(key, question, topic, summary)
	embedding, err := uc.gemini.Embedding(ctx, query, uc.builder.Dim())
	if err != nil {
		return nil, goerr.Wrap(model.ErrRetrievalUnavailable, "failed to embed question", goerr.V("cause", err))
	}

	plans := buildPlan(caseID, topic)
	results := make([][]index.Hit, len(plans))
	errs := make([]error, len(plans))

	var wg sync.WaitGroup
	for i, plan := range plans {
		wg.Add(1)
		go func(i int, plan sourcePlan) {
			defer wg.Done()

			srcCtx, cancel := context.WithTimeout(ctx, uc.sourceTimeout)
			defer cancel()

			idx, err := uc.builder.Registry().Collection(plan.sourceType)
			if err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = idx.Query(srcCtx, embedding, plan.topK, plan.filter)
		}(i, plan)
	}
	wg.Wait()

	var citations []model.Citation
	failed := 0
	for i, plan := range plans {
		if errs[i] != nil {
			failed++
			logging.From(ctx).Warn("retrieval source failed",
				"source_type", plan.sourceType, "error", errs[i])
			continue
		}
		for _, hit := range results[i] {
			citations = append(citations, model.Citation{
				Source:     hit.Record.Meta.Source,
				SourceType: hit.Record.Meta.SourceType,
				CaseID:     hit.Record.Meta.CaseID,
				CaseName:   hit.Record.Meta.CaseName,
				Section:    hit.Record.Meta.Section,
				Score:      hit.Score,
				Excerpt:    hit.Record.Text,
			})
		}
	}

	if failed == len(plans) {
		return nil, goerr.Wrap(model.ErrRetrievalUnavailable, "all retrieval sources failed")
	}

	// Merge by raw score; per-source caps were applied by topK, the total
	// budget applies here. Stable sort keeps the plan order among ties.
	sort.SliceStable(citations, func(i, j int) bool {
		return citations[i].Score > citations[j].Score
	})
	if len(citations) > citationBudget {
		citations = citations[:citationBudget]
	}
	return citations, nil
}
