package sqlagent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hetulpatel/sqlchat/internal/metrics"
)

const (
	toolListTables   = "sql_db_list_tables"
	toolSchema       = "sql_db_schema"
	toolQuery        = "sql_db_query"
	toolQueryChecker = "sql_db_query_checker"
)

func toolDefinitions() []openai.Tool {
	queryParam := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "A single SQL SELECT statement."},
		},
		"required": []string{"query"},
	}
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolListTables,
				Description: "Returns a comma-separated list of the tables in the database.",
				Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name: toolSchema,
				Description: "Returns the schema and sample rows for the given tables. " +
					"Call sql_db_list_tables first to be sure the tables exist.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"table_names": map[string]any{
							"type":        "string",
							"description": "Comma-separated list of table names, for example: products, prices",
						},
					},
					"required": []string{"table_names"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name: toolQuery,
				Description: "Runs a read-only SQL query and returns the result rows. " +
					"If the query is wrong an error is returned; rewrite it and try again.",
				Parameters: queryParam,
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolQueryChecker,
				Description: "Double checks a SQL query for common mistakes before it is run with sql_db_query.",
				Parameters:  queryParam,
			},
		},
	}
}

type toolArgs struct {
	TableNames any    `json:"table_names"`
	Query      string `json:"query"`
}

func (a *Agent) runTool(ctx context.Context, call openai.ToolCall) (string, error) {
	name := call.Function.Name
	metrics.ObserveToolCall(name)

	var args toolArgs
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return "", fmt.Errorf("%w: arguments for %s are not valid JSON: %v", errBadToolCall, name, err)
		}
	}

	switch name {
	case toolListTables:
		tables, err := a.cfg.DB.Tables(ctx)
		if err != nil {
			return "", err
		}
		return strings.Join(tables, ", "), nil

	case toolSchema:
		names := parseTableNames(args.TableNames)
		if len(names) == 0 {
			return "", fmt.Errorf("table_names is required")
		}
		return a.cfg.DB.TableInfo(ctx, names)

	case toolQuery:
		res, err := a.cfg.DB.Query(ctx, args.Query, 0)
		if err != nil {
			return "", err
		}
		return res.String(), nil

	case toolQueryChecker:
		if strings.TrimSpace(args.Query) == "" {
			return "", fmt.Errorf("query is required")
		}
		return a.cfg.Model.Complete(ctx, checkerSystemPrompt, checkerPrompt(a.cfg.Dialect, args.Query))

	default:
		return "", fmt.Errorf("%w: unknown tool %q", errBadToolCall, name)
	}
}

// parseTableNames accepts either a comma-separated string or a JSON array.
func parseTableNames(v any) []string {
	var raw []string
	switch val := v.(type) {
	case string:
		raw = strings.Split(val, ",")
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.Trim(strings.TrimSpace(s), "\"`"); s != "" {
			out = append(out, s)
		}
	}
	return out
}
