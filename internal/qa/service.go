package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hetulpatel/sqlchat/internal/cache"
	"github.com/hetulpatel/sqlchat/internal/hashutil"
	"github.com/hetulpatel/sqlchat/internal/logging"
	"github.com/hetulpatel/sqlchat/internal/metrics"
	"github.com/hetulpatel/sqlchat/internal/models"
	"github.com/hetulpatel/sqlchat/internal/sqlagent"
)

const (
	// FailureSentinel is returned verbatim when no agent could be built.
	FailureSentinel = "Failed to create database agent"
	// ErrorPrefix starts every answer that reports a failed invocation.
	ErrorPrefix = "Error: "
)

// Agent answers one question. Close releases whatever the agent holds.
type Agent interface {
	Answer(ctx context.Context, question string) (string, error)
	Close() error
}

// TableLister is implemented by agents that know their table catalog.
type TableLister interface {
	Tables() []string
}

// BuildFunc constructs a fresh agent.
type BuildFunc func(ctx context.Context) (Agent, error)

// Recorder receives every answered question.
type Recorder interface {
	Record(ctx context.Context, msg models.AnswerMessage) error
}

// FromFactory adapts a sqlagent factory to a BuildFunc.
func FromFactory(f *sqlagent.Factory) BuildFunc {
	return func(ctx context.Context) (Agent, error) {
		agent, err := f.Build(ctx)
		if err != nil {
			return nil, err
		}
		return agent, nil
	}
}

type Config struct {
	Build    BuildFunc
	Cache    cache.AnswerCache
	Recorder Recorder
	// CacheScope is mixed into cache keys, typically the database path and
	// the model name.
	CacheScope []string
	// Source labels recorded answers (web, cli, worker).
	Source string
}

// Service is the single entry point turning a question into an answer
// string. It never returns an error and never panics.
type Service struct {
	build    BuildFunc
	cache    cache.AnswerCache
	recorder Recorder
	scope    []string
	source   string
}

func New(cfg Config) (*Service, error) {
	if cfg.Build == nil {
		return nil, errors.New("qa: build func is required")
	}
	source := cfg.Source
	if source == "" {
		source = "unknown"
	}
	return &Service{
		build:    cfg.Build,
		cache:    cfg.Cache,
		recorder: cfg.Recorder,
		scope:    cfg.CacheScope,
		source:   source,
	}, nil
}

// IsFailure reports whether an answer returned by Ask describes a failure.
func IsFailure(answer string) bool {
	return answer == "" || answer == FailureSentinel || strings.HasPrefix(answer, strings.TrimSpace(ErrorPrefix))
}

// Ask builds an agent, invokes it once and returns its text. Failures are
// logged and come back as FailureSentinel or an ErrorPrefix string.
func (s *Service) Ask(ctx context.Context, question string) (answer string) {
	start := time.Now()
	outcome := metrics.OutcomeAnswered
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("[qa] panic while answering: %v", r)
			answer = ErrorPrefix + fmt.Sprint(r)
			outcome = metrics.OutcomeError
		}
		metrics.ObserveQuestion(outcome, time.Since(start))
		s.record(ctx, question, answer, start)
	}()

	agent, err := s.build(ctx)
	if err != nil || agent == nil {
		outcome = metrics.OutcomeBuildFailed
		return FailureSentinel
	}
	defer agent.Close()

	if strings.TrimSpace(question) == "" {
		outcome = metrics.OutcomeError
		return ErrorPrefix + "question is empty"
	}

	key := hashutil.QuestionKey(question, s.scope...)
	if cached, ok := s.lookup(ctx, key); ok {
		outcome = metrics.OutcomeCached
		return cached
	}

	out, err := agent.Answer(ctx, question)
	if err != nil {
		logging.Errorf("[qa] Error querying database: %v", err)
		outcome = metrics.OutcomeError
		return ErrorPrefix + err.Error()
	}
	if strings.TrimSpace(out) == "" {
		outcome = metrics.OutcomeError
		return ErrorPrefix + "agent returned an empty answer"
	}
	s.store(ctx, key, question, out)
	return out
}

// Status describes the database as seen by a freshly built agent.
type Status struct {
	Connected bool     `json:"connected"`
	Tables    []string `json:"tables"`
	Error     string   `json:"error,omitempty"`
}

// Status builds an agent the same way Ask does and reports its catalog.
func (s *Service) Status(ctx context.Context) (st Status) {
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("[qa] panic while checking status: %v", r)
			st = Status{Error: fmt.Sprint(r)}
		}
	}()

	agent, err := s.build(ctx)
	if err != nil || agent == nil {
		msg := FailureSentinel
		if err != nil {
			msg = err.Error()
		}
		return Status{Error: msg}
	}
	defer agent.Close()

	st = Status{Connected: true}
	if lister, ok := agent.(TableLister); ok {
		st.Tables = lister.Tables()
	}
	return st
}

func (s *Service) lookup(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	rec, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logging.Errorf("[qa] cache get: %v", err)
		return "", false
	}
	if !ok || rec == nil || rec.Answer == "" {
		return "", false
	}
	logging.Debugf("[qa] cache hit for %q", rec.Question)
	return rec.Answer, true
}

func (s *Service) store(ctx context.Context, key, question, answer string) {
	if s.cache == nil {
		return
	}
	err := s.cache.Set(ctx, key, cache.AnswerRecord{
		Question:  question,
		Answer:    answer,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		logging.Errorf("[qa] cache set: %v", err)
	}
}

func (s *Service) record(ctx context.Context, question, answer string, start time.Time) {
	if s.recorder == nil {
		return
	}
	msg := models.AnswerMessage{
		ID:         uuid.NewString(),
		Question:   question,
		Answer:     answer,
		Failed:     IsFailure(answer),
		Source:     s.source,
		AnsweredAt: time.Now().UTC(),
		ElapsedMS:  time.Since(start).Milliseconds(),
	}
	if err := s.recorder.Record(ctx, msg); err != nil {
		logging.Errorf("[qa] record answer: %v", err)
	}
}
