package sqlagent

import (
	"context"
	"strings"

	"github.com/hetulpatel/sqlchat/internal/config"
	"github.com/hetulpatel/sqlchat/internal/llm"
	"github.com/hetulpatel/sqlchat/internal/logging"
	"github.com/hetulpatel/sqlchat/internal/metrics"
	"github.com/hetulpatel/sqlchat/internal/storage/sqlite"
)

// ModelFactory creates the model client for a new agent.
type ModelFactory func(llm.Config) (ChatModel, error)

// Opener opens the database for a new agent.
type Opener func(ctx context.Context, path string) (Database, error)

// Option customises a Factory.
type Option func(*Factory)

// WithModelFactory replaces the OpenAI client constructor.
func WithModelFactory(fn ModelFactory) Option {
	return func(f *Factory) {
		if fn != nil {
			f.newModel = fn
		}
	}
}

// WithOpener replaces the SQLite opener.
func WithOpener(fn Opener) Option {
	return func(f *Factory) {
		if fn != nil {
			f.open = fn
		}
	}
}

// Factory builds a fresh agent, with its own database handle, per call.
type Factory struct {
	cfg      config.Config
	newModel ModelFactory
	open     Opener
}

func NewFactory(cfg config.Config, opts ...Option) *Factory {
	f := &Factory{
		cfg:      cfg,
		newModel: newOpenAIModel,
		open:     openSQLite,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func newOpenAIModel(cfg llm.Config) (ChatModel, error) {
	client, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func openSQLite(ctx context.Context, path string) (Database, error) {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Build validates the credential, opens the database and binds both to a
// new agent. Every failure is logged here; callers only need to check the
// error before using the agent.
func (f *Factory) Build(ctx context.Context) (*Agent, error) {
	agent, err := f.build(ctx)
	metrics.ObserveBuild(err == nil)
	if err != nil {
		logging.Errorf("[sqlagent] Error creating agent: %v", err)
		return nil, err
	}
	return agent, nil
}

func (f *Factory) build(ctx context.Context) (*Agent, error) {
	if err := f.cfg.ValidateAPIKey(); err != nil {
		return nil, err
	}
	logging.Infof("[sqlagent] Using API key: %s", config.MaskKey(f.cfg.APIKey))

	db, err := f.open(ctx, f.cfg.DBPath)
	if err != nil {
		return nil, &OperationalError{Op: "open database", Err: err}
	}
	logging.Infof("[sqlagent] Connected to database at: %s", f.cfg.DBPath)

	tables, err := db.Tables(ctx)
	switch {
	case err != nil:
		logging.Errorf("[sqlagent] list tables (continuing): %v", err)
	case len(tables) == 0:
		logging.Warnf("[sqlagent] database at %s has no tables; check SQLITE_PATH", f.cfg.DBPath)
	default:
		logging.Infof("[sqlagent] Connected to database with %d tables", len(tables))
		logging.Infof("[sqlagent] Available tables: %s", strings.Join(tables, ", "))
	}

	model, err := f.newModel(llm.Config{
		APIKey:      f.cfg.APIKey,
		BaseURL:     f.cfg.BaseURL,
		Model:       f.cfg.Model,
		Timeout:     f.cfg.LLMTimeout,
		Temperature: 0,
	})
	if err != nil {
		db.Close()
		return nil, &OperationalError{Op: "create model client", Err: err}
	}

	agent, err := NewAgent(Config{
		Model:               model,
		DB:                  db,
		Dialect:             defaultDialect,
		TopK:                f.cfg.TopK,
		MaxIterations:       f.cfg.MaxIterations,
		HandleParsingErrors: true,
		Tables:              tables,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return agent, nil
}
