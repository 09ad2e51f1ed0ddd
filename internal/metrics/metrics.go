package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Question outcomes.
const (
	OutcomeAnswered    = "answered"
	OutcomeCached      = "cached"
	OutcomeError       = "error"
	OutcomeBuildFailed = "build_failed"
)

var (
	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlchat_questions_total",
			Help: "Questions handled by the query facade, by outcome.",
		},
		[]string{"outcome"},
	)

	questionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqlchat_question_duration_seconds",
			Help:    "End-to-end latency of a question, agent construction included.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"outcome"},
	)

	agentBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlchat_agent_builds_total",
			Help: "Agent constructions, by result.",
		},
		[]string{"result"},
	)

	toolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlchat_agent_tool_calls_total",
			Help: "Tool calls requested by the model, by tool name.",
		},
		[]string{"tool"},
	)
)

func init() {
	prometheus.MustRegister(questionsTotal, questionDurationSeconds, agentBuildsTotal, toolCallsTotal)
}

func ObserveQuestion(outcome string, elapsed time.Duration) {
	questionsTotal.WithLabelValues(outcome).Inc()
	questionDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func ObserveBuild(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	agentBuildsTotal.WithLabelValues(result).Inc()
}

func ObserveToolCall(tool string) {
	toolCallsTotal.WithLabelValues(tool).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
