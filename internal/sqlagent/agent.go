package sqlagent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hetulpatel/sqlchat/internal/logging"
	"github.com/hetulpatel/sqlchat/internal/storage/sqlite"
)

const (
	defaultMaxIterations = 15
	defaultTopK          = 10
	defaultDialect       = "sqlite"
)

// ChatModel is the part of the LLM client the agent drives.
type ChatModel interface {
	Chat(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error)
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Database is the read-only surface the tools expose to the model.
type Database interface {
	Tables(ctx context.Context) ([]string, error)
	TableInfo(ctx context.Context, names []string) (string, error)
	Query(ctx context.Context, query string, maxRows int) (*sqlite.Result, error)
	Close() error
}

// Config controls a single agent.
type Config struct {
	Model   ChatModel
	DB      Database
	Dialect string
	TopK    int
	// MaxIterations bounds the number of model calls per question.
	MaxIterations int
	// HandleParsingErrors feeds malformed tool calls and empty replies back
	// to the model instead of failing the run.
	HandleParsingErrors bool
	// Tables is the catalog seen at construction, kept for display.
	Tables []string
}

// Agent answers natural-language questions by letting the model call SQL
// tools against one database.
type Agent struct {
	cfg   Config
	tools []openai.Tool
}

// NewAgent validates cfg and fills defaults.
func NewAgent(cfg Config) (*Agent, error) {
	if cfg.Model == nil {
		return nil, errors.New("sqlagent: model is required")
	}
	if cfg.DB == nil {
		return nil, errors.New("sqlagent: database is required")
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	if cfg.Dialect == "" {
		cfg.Dialect = defaultDialect
	}
	return &Agent{cfg: cfg, tools: toolDefinitions()}, nil
}

// Tables returns the table catalog captured when the agent was built.
func (a *Agent) Tables() []string {
	out := make([]string, len(a.cfg.Tables))
	copy(out, a.cfg.Tables)
	return out
}

// Close releases the database handle.
func (a *Agent) Close() error {
	if a == nil || a.cfg.DB == nil {
		return nil
	}
	return a.cfg.DB.Close()
}

// Answer runs the tool-calling loop for one question and returns the
// model's final text.
func (a *Agent) Answer(ctx context.Context, question string) (string, error) {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(a.cfg.Dialect, a.cfg.TopK)},
		{Role: openai.ChatMessageRoleUser, Content: question},
	}

	for step := 1; step <= a.cfg.MaxIterations; step++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		logging.Debugf("[sqlagent] step %d/%d", step, a.cfg.MaxIterations)

		reply, err := a.cfg.Model.Chat(ctx, msgs, a.tools)
		if err != nil {
			return "", &OperationalError{Op: "model call", Err: err}
		}
		if reply.Role == "" {
			reply.Role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, reply)

		if len(reply.ToolCalls) == 0 {
			out := strings.TrimSpace(reply.Content)
			if out != "" {
				logging.Debugf("[sqlagent] final answer after %d steps", step)
				return out, nil
			}
			if !a.cfg.HandleParsingErrors {
				return "", errEmptyReply
			}
			logging.Debugf("[sqlagent] empty reply, asking the model to continue")
			msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: emptyReplyPrompt})
			continue
		}

		for _, call := range reply.ToolCalls {
			logging.Debugf("[sqlagent] tool %s args=%s", call.Function.Name, call.Function.Arguments)
			observation, err := a.runTool(ctx, call)
			if err != nil {
				if errors.Is(err, errBadToolCall) && !a.cfg.HandleParsingErrors {
					return "", err
				}
				if ctxErr := ctx.Err(); ctxErr != nil {
					return "", ctxErr
				}
				observation = fmt.Sprintf("Error: %v", err)
			}
			logging.Debugf("[sqlagent] observation: %s", observation)
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    observation,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}

	logging.Infof("[sqlagent] iteration limit (%d) reached", a.cfg.MaxIterations)
	return StoppedAnswer, nil
}
