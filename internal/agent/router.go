package agent

import "strings"

// followupCues is the closed set of phrase prefixes that signal the user is
// continuing a prior topic rather than starting a new one.
var followupCues = []string{
	"what about",
	"tell me more",
	"continue",
	"elaborate",
	"and what",
	"also,",
	"what else",
}

// NodeName identifies a node in the fixed agent graph.
type NodeName string

const (
	NodeMain     NodeName = "main"
	NodeFollowup NodeName = "followup"
	NodeFallback NodeName = "fallback"
)

// route is the pure routing function: moderation's verdict takes priority
// over the follow-up heuristic, which itself takes priority over the
// default main path.
func route(state *State) NodeName {
	if !state.Moderation.IsSafe {
		return NodeFallback
	}

	if isFollowup, ok := state.CustomerContext["is_followup"].(bool); ok && isFollowup {
		return NodeFollowup
	}

	lastMessage := strings.ToLower(strings.TrimSpace(state.LastUserMessage()))
	for _, cue := range followupCues {
		if strings.HasPrefix(lastMessage, cue) {
			return NodeFollowup
		}
	}

	return NodeMain
}
