package sqlagent

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/sqlchat/internal/storage/sqlite"
	"github.com/hetulpatel/sqlchat/internal/testutil"
)

// scriptedModel replays canned assistant messages and records what it saw.
type scriptedModel struct {
	replies   []openai.ChatCompletionMessage
	err       error
	calls     int
	seen      [][]openai.ChatCompletionMessage
	completed []string
}

func (m *scriptedModel) Chat(ctx context.Context, msgs []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error) {
	snapshot := make([]openai.ChatCompletionMessage, len(msgs))
	copy(snapshot, msgs)
	m.seen = append(m.seen, snapshot)
	if m.err != nil {
		return openai.ChatCompletionMessage{}, m.err
	}
	if m.calls >= len(m.replies) {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, ToolCalls: []openai.ToolCall{toolCall("loop", toolListTables, "{}")}}, nil
	}
	reply := m.replies[m.calls]
	m.calls++
	return reply, nil
}

func (m *scriptedModel) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.completed = append(m.completed, userPrompt)
	return "SELECT 1", nil
}

func toolCall(id, name, args string) openai.ToolCall {
	return openai.ToolCall{
		ID:       id,
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: name, Arguments: args},
	}
}

func callsTools(calls ...openai.ToolCall) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, ToolCalls: calls}
}

func says(text string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text}
}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), testutil.SeedQuickCommerce(t))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func lastToolMessages(msgs []openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	var out []openai.ChatCompletionMessage
	for i := len(msgs) - 1; i >= 0 && msgs[i].Role == openai.ChatMessageRoleTool; i-- {
		out = append([]openai.ChatCompletionMessage{msgs[i]}, out...)
	}
	return out
}

func TestNewAgentValidates(t *testing.T) {
	_, err := NewAgent(Config{DB: openStore(t)})
	require.Error(t, err)
	_, err = NewAgent(Config{Model: &scriptedModel{}})
	require.Error(t, err)

	a, err := NewAgent(Config{Model: &scriptedModel{}, DB: openStore(t)})
	require.NoError(t, err)
	assert.Equal(t, defaultMaxIterations, a.cfg.MaxIterations)
	assert.Equal(t, defaultTopK, a.cfg.TopK)
	assert.Equal(t, defaultDialect, a.cfg.Dialect)
	assert.Len(t, a.tools, 4)
}

func TestAnswerRunsToolsAgainstDatabase(t *testing.T) {
	model := &scriptedModel{replies: []openai.ChatCompletionMessage{
		callsTools(toolCall("c1", toolListTables, "")),
		callsTools(toolCall("c2", toolSchema, `{"table_names": "prices, apps"}`)),
		callsTools(
			toolCall("c3", toolQueryChecker, `{"query": "SELECT 1"}`),
			toolCall("c4", toolQuery, `{"query": "SELECT a.name, p.price FROM prices p JOIN apps a ON a.id = p.app_id WHERE p.product_id = 1 ORDER BY p.price LIMIT 1"}`),
		),
		says("  Zepto has the cheapest onions at 39.5.  "),
	}}
	a, err := NewAgent(Config{Model: model, DB: openStore(t), HandleParsingErrors: true})
	require.NoError(t, err)

	out, err := a.Answer(context.Background(), "Which app has cheapest onions right now?")
	require.NoError(t, err)
	assert.Equal(t, "Zepto has the cheapest onions at 39.5.", out)
	require.Len(t, model.seen, 4)

	first := model.seen[0]
	require.Len(t, first, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, first[0].Role)
	assert.Contains(t, first[0].Content, "at most 10 results")
	assert.Equal(t, "Which app has cheapest onions right now?", first[1].Content)

	obs := lastToolMessages(model.seen[1])
	require.Len(t, obs, 1)
	assert.Equal(t, "c1", obs[0].ToolCallID)
	assert.Equal(t, "apps, prices, products", obs[0].Content)

	obs = lastToolMessages(model.seen[2])
	require.Len(t, obs, 1)
	assert.Contains(t, obs[0].Content, "CREATE TABLE prices")
	assert.Contains(t, obs[0].Content, "CREATE TABLE apps")

	obs = lastToolMessages(model.seen[3])
	require.Len(t, obs, 2)
	assert.Equal(t, "SELECT 1", obs[0].Content)
	assert.Equal(t, "name | price\nZepto | 39.5", obs[1].Content)
	require.Len(t, model.completed, 1)
	assert.Contains(t, model.completed[0], "Double check the sqlite query")
}

func TestAnswerFeedsQueryErrorsBack(t *testing.T) {
	model := &scriptedModel{replies: []openai.ChatCompletionMessage{
		callsTools(toolCall("c1", toolQuery, `{"query": "SELECT nope FROM products"}`)),
		callsTools(toolCall("c2", toolQuery, `{"query": "DELETE FROM products"}`)),
		says("done"),
	}}
	a, err := NewAgent(Config{Model: model, DB: openStore(t), HandleParsingErrors: false})
	require.NoError(t, err)

	out, err := a.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "done", out)

	obs := lastToolMessages(model.seen[1])
	require.Len(t, obs, 1)
	assert.Contains(t, obs[0].Content, "Error:")
	assert.Contains(t, obs[0].Content, "nope")

	obs = lastToolMessages(model.seen[2])
	require.Len(t, obs, 1)
	assert.Contains(t, obs[0].Content, sqlite.ErrNotReadOnly.Error())
}

func TestAnswerToleratesMalformedToolCalls(t *testing.T) {
	model := &scriptedModel{replies: []openai.ChatCompletionMessage{
		callsTools(toolCall("c1", toolSchema, `{"table_names": [`)),
		callsTools(toolCall("c2", "drop_everything", `{}`)),
		says(""),
		says("recovered"),
	}}
	a, err := NewAgent(Config{Model: model, DB: openStore(t), HandleParsingErrors: true})
	require.NoError(t, err)

	out, err := a.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)

	obs := lastToolMessages(model.seen[1])
	require.Len(t, obs, 1)
	assert.Contains(t, obs[0].Content, "not valid JSON")

	obs = lastToolMessages(model.seen[2])
	require.Len(t, obs, 1)
	assert.Contains(t, obs[0].Content, `unknown tool "drop_everything"`)

	last := model.seen[3][len(model.seen[3])-1]
	assert.Equal(t, openai.ChatMessageRoleUser, last.Role)
	assert.Equal(t, emptyReplyPrompt, last.Content)
}

func TestAnswerStrictParsing(t *testing.T) {
	model := &scriptedModel{replies: []openai.ChatCompletionMessage{
		callsTools(toolCall("c1", toolSchema, `not json`)),
	}}
	a, err := NewAgent(Config{Model: model, DB: openStore(t)})
	require.NoError(t, err)

	_, err = a.Answer(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBadToolCall))

	model = &scriptedModel{replies: []openai.ChatCompletionMessage{says("   ")}}
	a, err = NewAgent(Config{Model: model, DB: openStore(t)})
	require.NoError(t, err)
	_, err = a.Answer(context.Background(), "q")
	assert.ErrorIs(t, err, errEmptyReply)
}

func TestAnswerStopsAtIterationLimit(t *testing.T) {
	model := &scriptedModel{}
	a, err := NewAgent(Config{Model: model, DB: openStore(t), MaxIterations: 3, HandleParsingErrors: true})
	require.NoError(t, err)

	out, err := a.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, StoppedAnswer, out)
	assert.Len(t, model.seen, 3)
}

func TestAnswerWrapsModelErrors(t *testing.T) {
	model := &scriptedModel{err: errors.New("429 rate limited")}
	a, err := NewAgent(Config{Model: model, DB: openStore(t)})
	require.NoError(t, err)

	_, err = a.Answer(context.Background(), "q")
	require.Error(t, err)
	var opErr *OperationalError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "model call", opErr.Op)
	assert.Contains(t, err.Error(), "429 rate limited")
}

func TestAnswerHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a, err := NewAgent(Config{Model: &scriptedModel{}, DB: openStore(t)})
	require.NoError(t, err)
	_, err = a.Answer(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTableNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseTableNames(" a , `b`,, "))
	assert.Equal(t, []string{"x", "y"}, parseTableNames([]any{"x", 3, "y"}))
	assert.Empty(t, parseTableNames(nil))
}
