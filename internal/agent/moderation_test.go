package agent

import "testing"

func TestParseModerationVerdictDecodesCleanJSON(t *testing.T) {
	verdict, ok := parseModerationVerdict(`{"is_safe": true, "violations": [], "confidence": 0.95, "reason": "clean"}`)

	if !ok {
		t.Fatal("expected successful parse")
	}
	if !verdict.IsSafe || verdict.Confidence != 0.95 || verdict.Reason != "clean" {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}

func TestParseModerationVerdictExtractsJSONFromSurroundingText(t *testing.T) {
	raw := "Here is my answer:\n" + `{"is_safe": false, "violations": ["hate_speech"], "confidence": 0.8, "reason": "flagged"}` + "\nThanks."

	verdict, ok := parseModerationVerdict(raw)

	if !ok {
		t.Fatal("expected successful parse")
	}
	if verdict.IsSafe || len(verdict.Violations) != 1 || verdict.Violations[0] != "hate_speech" {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}

func TestParseModerationVerdictFailsWithoutBraces(t *testing.T) {
	_, ok := parseModerationVerdict("no json here at all")

	if ok {
		t.Fatal("expected parse failure")
	}
}

func TestParseModerationVerdictFailsOnMalformedJSON(t *testing.T) {
	_, ok := parseModerationVerdict(`{"is_safe": tru`)

	if ok {
		t.Fatal("expected parse failure")
	}
}
