package ask_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"google.golang.org/genai"

	"github.com/SophieeeeeChen/lawai/pkg/clarify"
	"github.com/SophieeeeeChen/lawai/pkg/index"
	"github.com/SophieeeeeChen/lawai/pkg/model"
	"github.com/SophieeeeeChen/lawai/pkg/repository"
	"github.com/SophieeeeeChen/lawai/pkg/session"
	"github.com/SophieeeeeChen/lawai/pkg/usecase/ask"
)

const testDim = 8

type stubGemini struct {
	response string
	genErr   error
	embedErr error
	embedDim int

	lastPrompt string
}

func (s *stubGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if s.genErr != nil {
		return nil, s.genErr
	}
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		s.lastPrompt = contents[0].Parts[0].Text
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: s.response}}}},
		},
	}, nil
}

func (s *stubGemini) Embedding(ctx context.Context, text string, dim int32) ([]float32, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	n := int(dim)
	if s.embedDim != 0 {
		n = s.embedDim
	}
	vec := make([]float32, n)
	vec[len(text)%n] = 1
	return vec, nil
}

type fixture struct {
	uc       *ask.UseCase
	repo     *repository.Memory
	sessions *session.Store
	builder  *index.Builder
	gemini   *stubGemini
	caseID   model.CaseID
}

// fullSummary has every property_division mandatory field populated.
func fullSummary() *model.CaseSummary {
	return &model.CaseSummary{
		CaseName: "Smith & Smith",
		Facts:    []string{"married for 14 years"},
		Property: &model.PropertySection{
			AssetPool:          []string{"family home valued at $800k"},
			Contributions:      []string{"wife was primary homemaker"},
			FutureNeeds:        []string{"wife has reduced earning capacity"},
			JustEquitable:      []string{"60/40 proposed"},
			ExistingAgreements: []string{"no binding financial agreement"},
		},
	}
}

func newFixture(t *testing.T, gemini *stubGemini, summary *model.CaseSummary) *fixture {
	t.Helper()

	catalog, err := clarify.Load()
	gt.NoError(t, err)

	repo := repository.NewMemory()
	sessions := session.New()
	registry := index.NewRegistry(testDim)
	builder := index.NewBuilder(registry, gemini.Embedding, testDim)

	ctx := context.Background()
	caseID := model.NewCaseID()
	gt.NoError(t, repo.PutCase(ctx, &model.CaseDocument{
		ID:       caseID,
		Owner:    "sophie",
		Filename: "smith.txt",
	}))
	if summary != nil {
		gt.NoError(t, repo.SaveSummary(ctx, caseID, summary))
	}

	uc := ask.New(repo, gemini, builder, sessions, catalog)
	return &fixture{uc: uc, repo: repo, sessions: sessions, builder: builder, gemini: gemini, caseID: caseID}
}

func TestAskAnswers(t *testing.T) {
	gemini := &stubGemini{response: "The pool is likely divided 60/40.\n---CACHE_SUMMARY---\nDiscussed the likely split."}
	f := newFixture(t, gemini, fullSummary())
	ctx := context.Background()

	out, err := f.uc.Ask(ctx, ask.Input{
		Owner:    "sophie",
		CaseID:   f.caseID,
		Question: "How will the asset pool be split?",
	})
	gt.NoError(t, err)
	gt.False(t, out.ClarificationNeeded)
	gt.Equal(t, out.Topic, model.TopicPropertyDivision)
	gt.S(t, out.Answer).Contains("60/40")
	gt.S(t, out.Answer).NotContains("CACHE_SUMMARY")
	gt.A(t, out.Citations).Longer(0)

	// uploaded-case index was built lazily from the stored summary
	key := session.Key{Owner: "sophie", CaseID: f.caseID}
	gt.True(t, f.sessions.Indexed(key))

	// history remembers the compact summary, not the full answer
	history := f.sessions.History(key)
	gt.A(t, history).Length(2)
	gt.Equal(t, history[0].Role, model.RoleUser)
	gt.Equal(t, history[1].Content, "Discussed the likely split.")

	// QA log persisted
	records, err := f.repo.ListQA(ctx, "sophie", f.caseID, 0)
	gt.NoError(t, err)
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].Topic, model.TopicPropertyDivision)
}

func TestAskClarificationRound(t *testing.T) {
	gemini := &stubGemini{response: "unused"}
	summary := &model.CaseSummary{CaseName: "Smith & Smith"} // no property section at all
	f := newFixture(t, gemini, summary)

	out, err := f.uc.Ask(context.Background(), ask.Input{
		Owner:    "sophie",
		CaseID:   f.caseID,
		Question: "How will the asset pool be split?",
		Topic:    model.TopicPropertyDivision,
	})
	gt.NoError(t, err)
	gt.True(t, out.ClarificationNeeded)
	gt.Equal(t, out.Answer, "")
	gt.Equal(t, out.MissingFields[0], "asset_pool")
	gt.Equal(t, len(out.Questions), len(out.MissingFields))

	// no retrieval and no history on the short-circuit path
	key := session.Key{Owner: "sophie", CaseID: f.caseID}
	gt.A(t, f.sessions.History(key)).Length(0)
	gt.V(t, f.sessions.Pending(key)).NotNil()
}

func TestSubmitClarificationMergesAndRetries(t *testing.T) {
	gemini := &stubGemini{response: "Based on the now complete facts you may expect roughly 60/40.\n---CACHE_SUMMARY---\nEstimated split."}
	f := newFixture(t, gemini, &model.CaseSummary{CaseName: "Smith & Smith"})
	ctx := context.Background()

	out, err := f.uc.Ask(ctx, ask.Input{
		Owner:    "sophie",
		CaseID:   f.caseID,
		Question: "How will the asset pool be split?",
		Topic:    model.TopicPropertyDivision,
	})
	gt.NoError(t, err)
	gt.True(t, out.ClarificationNeeded)

	answers := map[string]string{
		"asset_pool":          "$800k house and $200k super",
		"contributions":       "wife was the homemaker",
		"future_needs":        "wife earns much less",
		"just_equitable":      "a 60/40 split seems fair",
		"existing_agreements": "none",
	}
	resolved, err := f.uc.SubmitClarification(ctx, "sophie", f.caseID, answers)
	gt.NoError(t, err)
	gt.False(t, resolved.ClarificationNeeded)
	gt.S(t, resolved.Answer).Contains("60/40")

	// merge is additive and persisted
	stored, err := f.repo.GetSummary(ctx, f.caseID)
	gt.NoError(t, err)
	gt.Equal(t, stored.FieldValues(model.TopicPropertyDivision, "asset_pool"), []string{"$800k house and $200k super"})
	gt.Equal(t, stored.CaseName, "Smith & Smith")

	// the pending round was consumed
	_, err = f.uc.SubmitClarification(ctx, "sophie", f.caseID, answers)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrNoActiveClarification))
}

func TestSubmitClarificationPartialAnswers(t *testing.T) {
	gemini := &stubGemini{response: "unused"}
	f := newFixture(t, gemini, &model.CaseSummary{CaseName: "Smith & Smith"})
	ctx := context.Background()

	_, err := f.uc.Ask(ctx, ask.Input{
		Owner:    "sophie",
		CaseID:   f.caseID,
		Question: "How will the asset pool be split?",
		Topic:    model.TopicPropertyDivision,
	})
	gt.NoError(t, err)

	// answer only one of the five questions
	out, err := f.uc.SubmitClarification(ctx, "sophie", f.caseID, map[string]string{
		"asset_pool": "$800k house",
	})
	gt.NoError(t, err)

	// the retry re-clarifies, but no longer for the answered field
	gt.True(t, out.ClarificationNeeded)
	for _, field := range out.MissingFields {
		gt.S(t, field).NotEqual("asset_pool")
	}
}

func TestSubmitClarificationCondensesLongAnswer(t *testing.T) {
	gemini := &stubGemini{response: "The home is worth $800k and the super $200k."}
	f := newFixture(t, gemini, &model.CaseSummary{CaseName: "Smith & Smith"})
	ctx := context.Background()

	_, err := f.uc.Ask(ctx, ask.Input{
		Owner:    "sophie",
		CaseID:   f.caseID,
		Question: "How will the asset pool be split?",
		Topic:    model.TopicPropertyDivision,
	})
	gt.NoError(t, err)

	longAnswer := strings.Repeat("the family home and the superannuation accounts together with the cars ", 12)
	_, err = f.uc.SubmitClarification(ctx, "sophie", f.caseID, map[string]string{
		"asset_pool": longAnswer,
	})
	gt.NoError(t, err)

	stored, err := f.repo.GetSummary(ctx, f.caseID)
	gt.NoError(t, err)
	values := stored.FieldValues(model.TopicPropertyDivision, "asset_pool")
	gt.A(t, values).Length(1)
	// condensed through the model, not stored verbatim
	gt.Equal(t, values[0], "The home is worth $800k and the super $200k.")
}

func TestSubmitClarificationTruncatesWhenCondenseFails(t *testing.T) {
	gemini := &stubGemini{genErr: errors.New("model unavailable")}
	f := newFixture(t, gemini, &model.CaseSummary{CaseName: "Smith & Smith"})
	ctx := context.Background()

	_, err := f.uc.Ask(ctx, ask.Input{
		Owner:    "sophie",
		CaseID:   f.caseID,
		Question: "How will the asset pool be split?",
		Topic:    model.TopicPropertyDivision,
	})
	gt.NoError(t, err)

	// 55 words: over the condense threshold but under the truncation cap
	answer := strings.TrimSpace(strings.Repeat("the pool includes the family home the super the two cars ", 5))
	out, err := f.uc.SubmitClarification(ctx, "sophie", f.caseID, map[string]string{
		"asset_pool": answer,
	})
	gt.NoError(t, err)
	gt.True(t, out.ClarificationNeeded)

	stored, err := f.repo.GetSummary(ctx, f.caseID)
	gt.NoError(t, err)
	values := stored.FieldValues(model.TopicPropertyDivision, "asset_pool")
	gt.A(t, values).Length(1)
	gt.Equal(t, values[0], answer)

	// 70 words: the fallback keeps only the leading words
	long := strings.TrimSpace(strings.Repeat("a seventy word answer about contributions here ", 10))
	out, err = f.uc.SubmitClarification(ctx, "sophie", f.caseID, map[string]string{
		"contributions": long,
	})
	gt.NoError(t, err)
	gt.True(t, out.ClarificationNeeded)

	stored, err = f.repo.GetSummary(ctx, f.caseID)
	gt.NoError(t, err)
	values = stored.FieldValues(model.TopicPropertyDivision, "contributions")
	gt.A(t, values).Length(1)
	gt.Equal(t, values[0], strings.Join(strings.Fields(long)[:60], " "))
}

func TestSubmitClarificationWithoutPending(t *testing.T) {
	f := newFixture(t, &stubGemini{response: "unused"}, fullSummary())

	_, err := f.uc.SubmitClarification(context.Background(), "sophie", f.caseID, map[string]string{"asset_pool": "x"})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrNoActiveClarification))
}

type failingIndex struct{}

func (f *failingIndex) Insert(ctx context.Context, records ...*model.VectorRecord) error {
	return errors.New("collection down")
}

func (f *failingIndex) Query(ctx context.Context, embedding []float32, topK int, filter index.Filter) ([]index.Hit, error) {
	return nil, errors.New("collection down")
}

func (f *failingIndex) Delete(pred func(*model.VectorRecord) bool) int { return 0 }
func (f *failingIndex) Len() int                                       { return 0 }

func TestAskDegradesOnSingleSourceFailure(t *testing.T) {
	gemini := &stubGemini{response: "Grounded anyway.\n---CACHE_SUMMARY---\nShort."}
	f := newFixture(t, gemini, fullSummary())
	f.builder.Registry().Replace(model.SourceStatute, &failingIndex{})

	out, err := f.uc.Ask(context.Background(), ask.Input{
		Owner:    "sophie",
		CaseID:   f.caseID,
		Question: "How will the asset pool be split?",
	})
	gt.NoError(t, err)
	gt.False(t, out.ClarificationNeeded)
	gt.A(t, out.Citations).Longer(0)
	for _, c := range out.Citations {
		gt.S(t, string(c.SourceType)).NotEqual(string(model.SourceStatute))
	}
}

func TestAskRetrievalUnavailable(t *testing.T) {
	// embeddings come back with the wrong dimension, so every collection
	// rejects the query
	gemini := &stubGemini{response: "unused", embedDim: testDim + 1}
	f := newFixture(t, gemini, fullSummary())

	// mark the case indexed so the failure comes from the queries, not the
	// index rebuild
	key := session.Key{Owner: "sophie", CaseID: f.caseID}
	f.sessions.SetIndexed(key, true)

	_, err := f.uc.Ask(context.Background(), ask.Input{
		Owner:    "sophie",
		CaseID:   f.caseID,
		Question: "How will the asset pool be split?",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrRetrievalUnavailable))
}

func TestAskUnknownCase(t *testing.T) {
	f := newFixture(t, &stubGemini{response: "unused"}, fullSummary())

	_, err := f.uc.Ask(context.Background(), ask.Input{
		Owner:    "sophie",
		CaseID:   model.NewCaseID(),
		Question: "How will the asset pool be split?",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrCaseNotFound))
}

func TestAskValidation(t *testing.T) {
	f := newFixture(t, &stubGemini{response: "unused"}, fullSummary())
	ctx := context.Background()

	_, err := f.uc.Ask(ctx, ask.Input{Owner: "sophie", CaseID: f.caseID})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidArgument))

	_, err = f.uc.Ask(ctx, ask.Input{Owner: "sophie", CaseID: f.caseID, Question: "q", Topic: "not_a_topic"})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidTopic))
}

func TestResetDropsSessionOnly(t *testing.T) {
	gemini := &stubGemini{response: "Answer.\n---CACHE_SUMMARY---\nShort."}
	f := newFixture(t, gemini, fullSummary())
	ctx := context.Background()

	_, err := f.uc.Ask(ctx, ask.Input{Owner: "sophie", CaseID: f.caseID, Question: "How will the asset pool be split?"})
	gt.NoError(t, err)

	key := session.Key{Owner: "sophie", CaseID: f.caseID}
	gt.A(t, f.sessions.History(key)).Length(2)

	f.uc.Reset("sophie", f.caseID)
	gt.A(t, f.sessions.History(key)).Length(0)

	// durable QA log survives, and asking again still works
	records, err := f.uc.History(ctx, "sophie", f.caseID, 0)
	gt.NoError(t, err)
	gt.A(t, records).Length(1)

	out, err := f.uc.Ask(ctx, ask.Input{Owner: "sophie", CaseID: f.caseID, Question: "How will the asset pool be split?"})
	gt.NoError(t, err)
	gt.False(t, out.ClarificationNeeded)
}
