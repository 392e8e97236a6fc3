package engine

import (
	"bytes"
	"encoding/json"

	"github.com/ggoodman/mcp-toolkit-go/mcperr"
)

// DecodeArguments parses the raw arguments of a tool call. Absent or null
// arguments decode to an empty map; anything other than a JSON object is an
// INVALID_REQUEST error.
func DecodeArguments(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, mcperr.Wrap(mcperr.KindInvalidRequest, err, "Tool arguments must be a JSON object")
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
