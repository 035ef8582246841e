package agent

import "testing"

func newSafeState(lastMessage string) *State {
	return &State{
		Messages:        []Message{{Role: "user", Content: lastMessage}},
		CustomerContext: map[string]interface{}{},
		Moderation:      ModerationVerdict{IsSafe: true},
	}
}

func TestRouteSendsUnsafeModerationToFallback(t *testing.T) {
	state := newSafeState("hello")
	state.Moderation = ModerationVerdict{IsSafe: false, Violations: []string{"abuse"}}

	if got := route(state); got != NodeFallback {
		t.Fatalf("expected %s, got %s", NodeFallback, got)
	}
}

func TestRouteModerationOverridesFollowupContext(t *testing.T) {
	state := newSafeState("what about shipping")
	state.Moderation = ModerationVerdict{IsSafe: false}
	state.CustomerContext["is_followup"] = true

	if got := route(state); got != NodeFallback {
		t.Fatalf("expected moderation to take priority, got %s", got)
	}
}

func TestRouteFollowsContextFlagWhenSet(t *testing.T) {
	state := newSafeState("some unrelated sentence")
	state.CustomerContext["is_followup"] = true

	if got := route(state); got != NodeFollowup {
		t.Fatalf("expected %s, got %s", NodeFollowup, got)
	}
}

func TestRouteDetectsFollowupCuePrefix(t *testing.T) {
	for _, msg := range []string{"What about the discount?", "tell me more please", "Continue from before", "Also, is it in stock?"} {
		state := newSafeState(msg)
		if got := route(state); got != NodeFollowup {
			t.Fatalf("message %q: expected %s, got %s", msg, NodeFollowup, got)
		}
	}
}

func TestRouteDefaultsToMain(t *testing.T) {
	state := newSafeState("I want to buy a blue shirt")

	if got := route(state); got != NodeMain {
		t.Fatalf("expected %s, got %s", NodeMain, got)
	}
}

func TestLastUserMessageReturnsMostRecentUserTurn(t *testing.T) {
	state := &State{Messages: []Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "reply"},
		{Role: "user", Content: "second"},
	}}

	if got := state.LastUserMessage(); got != "second" {
		t.Fatalf("expected %q, got %q", "second", got)
	}
}

func TestLastUserMessageReturnsEmptyWhenNoUserTurns(t *testing.T) {
	state := &State{Messages: []Message{{Role: "assistant", Content: "hi"}}}

	if got := state.LastUserMessage(); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
