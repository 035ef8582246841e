package agent

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/tokowa/commerce-agent/internal/agent/llm"
)

const moderationPrompt = `You are a content moderation classifier. Given the latest user message, respond with ONLY a JSON object of the form {"is_safe": bool, "violations": [string], "confidence": number, "reason": string}. No other text.`

// runModeration calls the LLM with a structured moderation prompt and
// parses the first {...} substring of its response. A parse failure or an
// LLM-call failure must not block the pipeline: both default to a
// safe verdict with confidence 0 and a recorded reason for audit.
func (g *Graph) runModeration(ctx context.Context, state *State, cfg NodeConfig) ModerationVerdict {
	resp, err := g.callLLM(ctx, "moderation", cfg, moderationPrompt, []llm.Turn{
		{Role: "user", Content: state.LastUserMessage()},
	}, nil)
	if err != nil {
		g.logger.Warn("moderation call failed, defaulting to safe", zap.Error(err))
		return ModerationVerdict{IsSafe: true, Confidence: 0, Reason: "moderation_call_failed: " + err.Error()}
	}

	verdict, ok := parseModerationVerdict(resp.Content)
	if !ok {
		g.logger.Warn("moderation response unparsable, defaulting to safe")
		return ModerationVerdict{IsSafe: true, Confidence: 0, Reason: "moderation_response_unparsable"}
	}
	return verdict
}

type moderationJSON struct {
	IsSafe     bool     `json:"is_safe"`
	Violations []string `json:"violations"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reason"`
}

// parseModerationVerdict extracts the first {...} substring of raw and
// decodes it as the moderation JSON shape.
func parseModerationVerdict(raw string) (ModerationVerdict, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return ModerationVerdict{}, false
	}

	var parsed moderationJSON
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return ModerationVerdict{}, false
	}
	return ModerationVerdict{
		IsSafe:     parsed.IsSafe,
		Violations: parsed.Violations,
		Confidence: parsed.Confidence,
		Reason:     parsed.Reason,
	}, true
}
