package sqlagent

import (
	"fmt"
	"strings"
)

// StoppedAnswer is returned when the model keeps calling tools past the
// iteration limit.
const StoppedAnswer = "Agent stopped due to iteration limit."

const emptyReplyPrompt = "Your last reply was empty. Either call one of the tools or give the final answer to the question as plain text."

const checkerSystemPrompt = "You are a careful SQL reviewer. Reply with the corrected query only, no explanation and no markdown."

func systemPrompt(dialect string, topK int) string {
	return strings.Join([]string{
		fmt.Sprintf("You are an agent that answers questions about a %s database.", dialect),
		fmt.Sprintf("Given a question, write a syntactically correct %s query, run it, look at the results and answer the question.", dialect),
		fmt.Sprintf("Unless the user asks for a specific number of examples, limit the query to at most %d results.", topK),
		"Order the results by a relevant column so the most interesting rows come first.",
		"Never select all columns from a table; only ask for the columns relevant to the question.",
		"Start by listing the tables, then read the schema of the most relevant ones before writing a query.",
		"You can use sql_db_query_checker to double check a query before running it with sql_db_query.",
		"If a query fails, read the error, rewrite the query and try again.",
		"Never run INSERT, UPDATE, DELETE, DROP or any other statement that changes data.",
		"If the question has nothing to do with the database, say that you don't know.",
		"Give the final answer as plain text.",
	}, "\n")
}

func checkerPrompt(dialect, query string) string {
	return strings.Join([]string{
		query,
		"",
		fmt.Sprintf("Double check the %s query above for common mistakes, including:", dialect),
		"- Using NOT IN with NULL values",
		"- Using UNION when UNION ALL should have been used",
		"- Using BETWEEN for exclusive ranges",
		"- Data type mismatch in predicates",
		"- Properly quoting identifiers",
		"- Using the correct number of arguments for functions",
		"- Casting to the correct data type",
		"- Using the proper columns for joins",
		"",
		"If there are any of the above mistakes, rewrite the query. If there are no mistakes, reproduce the original query.",
	}, "\n")
}
