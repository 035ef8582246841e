package agent

import "testing"

func TestDecodeToolArgsParsesValidJSON(t *testing.T) {
	args := decodeToolArgs(`{"address":"Jl. Sudirman", "quantity":2}`)

	if args["address"] != "Jl. Sudirman" {
		t.Fatalf("expected address to decode, got %v", args)
	}
	if args["quantity"] != float64(2) {
		t.Fatalf("expected quantity 2, got %v", args["quantity"])
	}
}

func TestDecodeToolArgsReturnsEmptyMapOnMalformedJSON(t *testing.T) {
	args := decodeToolArgs(`{not json`)

	if args == nil || len(args) != 0 {
		t.Fatalf("expected empty map, got %v", args)
	}
}

func TestEncodeToolResultRendersJSON(t *testing.T) {
	out := encodeToolResult(map[string]interface{}{"found": true, "lat": -6.2})

	if out != `{"found":true,"lat":-6.2}` {
		t.Fatalf("unexpected encoding: %s", out)
	}
}
