// Package ingest turns raw case text into durable state: the stored blob,
// the closed-schema summary, and the embedded records of the vector
// collections.
package ingest

import (
	"io"
	"os"

	"github.com/SophieeeeeChen/lawai/pkg/adapter"
	"github.com/SophieeeeeChen/lawai/pkg/index"
	"github.com/SophieeeeeChen/lawai/pkg/repository"
	"github.com/SophieeeeeChen/lawai/pkg/session"
)

// UseCase provides upload and corpus ingestion operations
type UseCase struct {
	repo     repository.Repository
	gemini   adapter.Gemini
	storage  adapter.Storage
	builder  *index.Builder
	sessions *session.Store
	output   io.Writer

	targetWords int
	maxWords    int
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithOutput sets the output writer
func WithOutput(w io.Writer) Option {
	return func(uc *UseCase) {
		uc.output = w
	}
}

// WithSummaryWords overrides the target and maximum rendered summary length
func WithSummaryWords(target, max int) Option {
	return func(uc *UseCase) {
		uc.targetWords = target
		uc.maxWords = max
	}
}

// New creates a new ingest UseCase instance
func New(
	repo repository.Repository,
	gemini adapter.Gemini,
	storage adapter.Storage,
	builder *index.Builder,
	sessions *session.Store,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		repo:        repo,
		gemini:      gemini,
		storage:     storage,
		builder:     builder,
		sessions:    sessions,
		output:      os.Stdout,
		targetWords: 600,
		maxWords:    900,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
