package agent

import "encoding/json"

// decodeToolArgs parses the LLM's raw JSON tool-call arguments. A decode
// failure yields an empty argument map rather than propagating — the tool
// executor's own argument validation will surface a clear error instead.
func decodeToolArgs(raw string) map[string]interface{} {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]interface{}{}
	}
	return args
}

// encodeToolResult renders a tool result map as the JSON string threaded
// back into the conversation as a tool message.
func encodeToolResult(result map[string]interface{}) string {
	encoded, err := json.Marshal(result)
	if err != nil {
		return `{"error":"failed to encode tool result"}`
	}
	return string(encoded)
}
