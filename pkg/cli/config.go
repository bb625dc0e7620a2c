package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/SophieeeeeChen/lawai/pkg/adapter"
	"github.com/SophieeeeeChen/lawai/pkg/clarify"
	"github.com/SophieeeeeChen/lawai/pkg/index"
	"github.com/SophieeeeeChen/lawai/pkg/model"
	"github.com/SophieeeeeChen/lawai/pkg/repository"
	"github.com/SophieeeeeChen/lawai/pkg/session"
	"github.com/SophieeeeeChen/lawai/pkg/usecase/ask"
	"github.com/SophieeeeeChen/lawai/pkg/usecase/ingest"
)

// defaultEmbeddingDim matches the gemini-embedding-001 output dimensionality
// used to build the persisted corpus collections.
const defaultEmbeddingDim = 768

// config holds configuration values
type config struct {
	// Repository
	project  string
	database string

	// Adapters
	geminiProject  string
	geminiLocation string
	bucket         string

	// Caller identity scoping uploads, sessions, and the QA log
	owner string

	embeddingDim int64
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Aliases:     []string{"b"},
			Usage:       "Cloud Storage bucket for raw case text",
			Sources:     cli.EnvVars("LAWAI_BUCKET"),
			Destination: &cfg.bucket,
		},
	}
}

// ownerFlag identifies the caller. The corpus commands are owner-agnostic and
// skip it; everything touching cases or sessions requires it.
func ownerFlag(cfg *config) cli.Flag {
	return &cli.StringFlag{
		Name:        "owner",
		Aliases:     []string{"o"},
		Usage:       "Owner ID scoping cases and sessions",
		Sources:     cli.EnvVars("LAWAI_OWNER"),
		Destination: &cfg.owner,
		Required:    true,
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.IntFlag{
			Name:        "embedding-dim",
			Usage:       "Embedding dimension of the vector collections",
			Value:       defaultEmbeddingDim,
			Sources:     cli.EnvVars("LAWAI_EMBEDDING_DIM"),
			Destination: &cfg.embeddingDim,
		},
	}
}

func (cfg *config) ownerID() model.OwnerID {
	return model.OwnerID(cfg.owner)
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (*repository.Firestore, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation)
}

// newStorage creates a new Storage adapter instance
func (cfg *config) newStorage(ctx context.Context) (adapter.Storage, error) {
	if cfg.bucket == "" {
		return nil, goerr.New("bucket is required")
	}

	storage, err := adapter.NewStorage(ctx, cfg.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// runtime bundles the wired dependencies of one CLI invocation.
type runtime struct {
	repo    *repository.Firestore
	ingest  *ingest.UseCase
	ask     *ask.UseCase
	builder *index.Builder
}

func (r *runtime) Close() error {
	return r.repo.Close()
}

// newRuntime wires the full dependency graph. When restore is true, the
// persisted corpus collections are loaded into memory first; commands that
// never query the index skip it.
func (cfg *config) newRuntime(ctx context.Context, restore bool) (*runtime, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}

	storage, err := cfg.newStorage(ctx)
	if err != nil {
		return nil, err
	}

	catalog, err := clarify.Load()
	if err != nil {
		return nil, err
	}

	dim := int(cfg.embeddingDim)
	registry := index.NewRegistry(dim)
	builder := index.NewBuilder(registry, gemini.Embedding, int32(dim))
	sessions := session.New()

	rt := &runtime{
		repo:    repo,
		ingest:  ingest.New(repo, gemini, storage, builder, sessions),
		ask:     ask.New(repo, gemini, builder, sessions, catalog),
		builder: builder,
	}

	if restore {
		if err := rt.ingest.RestoreIndexes(ctx); err != nil {
			return nil, err
		}
	}
	return rt, nil
}
