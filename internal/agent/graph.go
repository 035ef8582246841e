package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/tokowa/commerce-agent/internal/agent/llm"
	"github.com/tokowa/commerce-agent/internal/agent/tools"
	"github.com/tokowa/commerce-agent/internal/resilience"
)

var (
	graphInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_graph_invocations_total",
			Help: "Total number of graph runs by terminal outcome.",
		},
		[]string{"outcome"},
	)
	llmCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_llm_calls_total",
			Help: "Total number of LLM completions by component and status.",
		},
		[]string{"component", "status"},
	)
)

// DefaultToolRoundCap bounds how many tool-call round-trips one invocation
// may make before the last AI content is used regardless of outcome.
const DefaultToolRoundCap = 8

// LLMSettings carries the per-tenant LLM configuration a graph invocation
// needs: which circuit/backoff key to use, the underlying client, and
// sampling parameters.
type LLMSettings struct {
	ConfigName  string
	Client      *llm.Client
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NodeConfig is LLMSettings scoped to the node currently executing; it is
// threaded through so callLLM can build the "<component>-<config>" circuit key.
type NodeConfig struct {
	LLMSettings
	Component string
}

// TemporarilyUnavailableMessage is returned when the circuit is open at the
// top of a graph invocation.
const TemporarilyUnavailableMessage = "We're experiencing high demand right now. Please try again shortly."

// Graph is the fixed moderation -> router -> {main|followup|fallback} node
// graph, implemented as an explicit state function plus a node map rather
// than a general graph library.
type Graph struct {
	circuits     *resilience.Registry
	nodeBackoff  resilience.BackoffConfig
	graphBackoff resilience.BackoffConfig
	toolRegistry *tools.Registry
	toolRoundCap int
	logger       *zap.Logger
}

// NewGraph builds a Graph over the given circuit registry and tool registry.
func NewGraph(circuits *resilience.Registry, nodeBackoff, graphBackoff resilience.BackoffConfig, toolRegistry *tools.Registry, logger *zap.Logger) *Graph {
	return &Graph{
		circuits:     circuits,
		nodeBackoff:  nodeBackoff,
		graphBackoff: graphBackoff,
		toolRegistry: toolRegistry,
		toolRoundCap: DefaultToolRoundCap,
		logger:       logger,
	}
}

// callLLM executes one LLM completion through the resilience sandwich:
// per-component circuit breaker (outermost of the per-call layers), then a
// timeout bounding the whole call including retries, then node-level
// exponential-with-jitter retry around the raw provider call.
func (g *Graph) callLLM(ctx context.Context, component string, cfg NodeConfig, systemPrompt string, history []llm.Turn, toolSpecs []llm.Tool) (*llm.Response, error) {
	circuitName := fmt.Sprintf("%s-%s", component, cfg.ConfigName)
	circuit := g.circuits.Get(circuitName)

	var resp *llm.Response
	err := circuit.Call(func() error {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		return resilience.WithTimeout(ctx, timeout, component, func(callCtx context.Context) error {
			return resilience.Retry(callCtx, g.nodeBackoff, func() error {
				r, callErr := cfg.Client.Complete(callCtx, systemPrompt, history, toolSpecs, cfg.Temperature, cfg.MaxTokens)
				if callErr != nil {
					return callErr
				}
				resp = r
				return nil
			})
		})
	})
	if err != nil {
		llmCalls.WithLabelValues(component, "error").Inc()
		return nil, err
	}
	llmCalls.WithLabelValues(component, "success").Inc()
	return resp, nil
}

// Invoke runs one full graph pass: moderation, routing, then the chosen
// node (which may itself run several tool-calling rounds). It does not
// retry; Run wraps Invoke with the graph-level backoff.
func (g *Graph) Invoke(ctx context.Context, state *State, componentPrompt string, settings LLMSettings) (*State, error) {
	state.Moderation = g.runModeration(ctx, state, NodeConfig{LLMSettings: settings, Component: "moderation"})

	next := route(state)

	switch next {
	case NodeFallback:
		return g.runFallback(ctx, state, settings)
	case NodeFollowup:
		return g.runFollowup(ctx, state, componentPrompt, settings)
	default:
		return g.runMain(ctx, state, componentPrompt, settings)
	}
}

// Run wraps Invoke with the graph-level backoff (§4.4.5): the whole graph
// execution is re-invokable on a restricted set of retryable errors. A
// non-retryable error bubbles. On total exhaustion, the hard-coded apology
// is returned with agent_type=fallback and zero tokens. An open circuit at
// the top of the invocation returns a distinct "temporarily unavailable"
// message instead of retrying (retrying against an open circuit is pointless).
func (g *Graph) Run(ctx context.Context, state *State, componentPrompt string, settings LLMSettings) *State {
	var result *State
	err := resilience.Retry(ctx, g.graphBackoff, func() error {
		var invokeErr error
		result, invokeErr = g.Invoke(ctx, state, componentPrompt, settings)
		return invokeErr
	})

	if err == nil {
		graphInvocations.WithLabelValues("success").Inc()
		return result
	}

	var circuitOpen *resilience.CircuitOpenError
	if errors.As(err, &circuitOpen) {
		graphInvocations.WithLabelValues("circuit_open").Inc()
		state.FinalResponse = TemporarilyUnavailableMessage
		state.AgentType = string(NodeFallback)
		state.TokensUsed = 0
		return state
	}

	var exhausted *resilience.BackoffExhausted
	if errors.As(err, &exhausted) {
		graphInvocations.WithLabelValues("backoff_exhausted").Inc()
		state.FinalResponse = fallbackApology
		state.AgentType = string(NodeFallback)
		state.TokensUsed = 0
		return state
	}

	graphInvocations.WithLabelValues("error").Inc()
	state.FinalResponse = fallbackApology
	state.AgentType = string(NodeFallback)
	state.TokensUsed = 0
	state.Error = err.Error()
	return state
}
