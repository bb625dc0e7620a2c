// Package ask answers questions about an uploaded case. It classifies the
// question into a topic, checks the topic's mandatory facts, fans retrieval
// out across the vector collections, and synthesizes a grounded answer. When
// mandatory facts are missing it opens a clarification round instead.
package ask

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/SophieeeeeChen/lawai/pkg/adapter"
	"github.com/SophieeeeeChen/lawai/pkg/clarify"
	"github.com/SophieeeeeChen/lawai/pkg/index"
	"github.com/SophieeeeeChen/lawai/pkg/model"
	"github.com/SophieeeeeChen/lawai/pkg/repository"
	"github.com/SophieeeeeChen/lawai/pkg/session"
	"github.com/SophieeeeeChen/lawai/pkg/utils/logging"
)

const (
	topKSummaries = 4
	topKFullText  = 4
	topKStatutes  = 3
	topKUploaded  = 4

	// citationBudget caps the merged context handed to synthesis.
	citationBudget = 10

	defaultSourceTimeout = 10 * time.Second
)

// UseCase provides question answering and clarification operations
type UseCase struct {
	repo     repository.Repository
	gemini   adapter.Gemini
	builder  *index.Builder
	sessions *session.Store
	catalog  *clarify.Catalog

	sourceTimeout time.Duration
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithSourceTimeout overrides the per-source retrieval timeout
func WithSourceTimeout(d time.Duration) Option {
	return func(uc *UseCase) {
		uc.sourceTimeout = d
	}
}

// New creates a new ask UseCase instance
func New(
	repo repository.Repository,
	gemini adapter.Gemini,
	builder *index.Builder,
	sessions *session.Store,
	catalog *clarify.Catalog,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		repo:          repo,
		gemini:        gemini,
		builder:       builder,
		sessions:      sessions,
		catalog:       catalog,
		sourceTimeout: defaultSourceTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Input is one question about a case. Topic is optional; when absent the
// question is classified against the topic keyword catalog.
type Input struct {
	Owner    model.OwnerID
	CaseID   model.CaseID
	Question string
	Topic    model.Topic
}

// Output is either an answer with citations or a clarification round.
type Output struct {
	Answer    string
	Topic     model.Topic
	Citations []model.Citation

	ClarificationNeeded bool
	MissingFields       []string
	Questions           []string
}

// Ask answers a question about an uploaded case, or opens a clarification
// round when the effective topic's mandatory facts are missing from the
// cached summary.
func (uc *UseCase) Ask(ctx context.Context, input Input) (*Output, error) {
	if input.Question == "" {
		return nil, goerr.Wrap(model.ErrInvalidArgument, "question is empty")
	}
	if input.Topic != model.TopicAuto {
		if err := input.Topic.Validate(); err != nil {
			return nil, err
		}
	}

	key := session.Key{Owner: input.Owner, CaseID: input.CaseID}
	summary, err := uc.loadSummary(ctx, key)
	if err != nil {
		return nil, err
	}

	topic := input.Topic
	if topic == model.TopicAuto {
		topic = uc.catalog.DetectTopic(input.Question)
	}
	logging.From(ctx).Debug("question classified", "topic", topic, "case_id", input.CaseID)

	if topic.IsTopic() {
		if missing := uc.catalog.MissingFields(summary, topic); len(missing) > 0 {
			return uc.openClarification(key, input.Question, topic, missing)
		}
	}

	if err := uc.ensureCaseIndex(ctx, key, summary); err != nil {
		return nil, err
	}

	citations, err := uc.retrieve(ctx, key, input.Question, topic, summary)
	if err != nil {
		return nil, err
	}

	answer, cacheSummary, err := uc.synthesize(ctx, key, input.Question, summary, citations)
	if err != nil {
		return nil, err
	}

	uc.recordTurn(ctx, key, topic, input.Question, answer, cacheSummary, citations)

	return &Output{Answer: answer, Topic: topic, Citations: citations}, nil
}

// loadSummary returns the session's cached summary, lazily reconstructing it
// from the repository after a restart.
func (uc *UseCase) loadSummary(ctx context.Context, key session.Key) (*model.CaseSummary, error) {
	if summary := uc.sessions.Summary(key); summary != nil {
		return summary, nil
	}

	if _, err := uc.repo.GetCase(ctx, key.CaseID); err != nil {
		return nil, err
	}
	summary, err := uc.repo.GetSummary(ctx, key.CaseID)
	if err != nil {
		return nil, err
	}
	uc.sessions.SetSummary(key, summary)
	logging.From(ctx).Debug("summary reconstructed from repository", "case_id", key.CaseID)
	return summary, nil
}

// ensureCaseIndex rebuilds the ephemeral uploaded-case index on first access
// after a restart. Idempotent per session.
func (uc *UseCase) ensureCaseIndex(ctx context.Context, key session.Key, summary *model.CaseSummary) error {
	if uc.sessions.Indexed(key) {
		return nil
	}
	doc, err := uc.repo.GetCase(ctx, key.CaseID)
	if err != nil {
		return err
	}
	if err := uc.builder.RebuildCase(ctx, key.CaseID, doc.Filename, summary.Sections()); err != nil {
		return err
	}
	uc.sessions.SetIndexed(key, true)
	return nil
}

func (uc *UseCase) openClarification(key session.Key, question string, topic model.Topic, missing []clarify.Field) (*Output, error) {
	pending, err := uc.catalog.NewPending(question, topic, missing)
	if err != nil {
		return nil, err
	}
	uc.sessions.PutPending(key, pending)

	return &Output{
		Topic:               topic,
		ClarificationNeeded: true,
		MissingFields:       pending.MissingFields,
		Questions:           pending.Questions,
	}, nil
}

// Reset drops the session state for a case. Durable records are untouched.
func (uc *UseCase) Reset(owner model.OwnerID, caseID model.CaseID) {
	uc.sessions.Reset(session.Key{Owner: owner, CaseID: caseID})
}

// History lists the persisted QA log of a case in chronological order.
func (uc *UseCase) History(ctx context.Context, owner model.OwnerID, caseID model.CaseID, limit int) ([]*model.QARecord, error) {
	return uc.repo.ListQA(ctx, owner, caseID, limit)
}
