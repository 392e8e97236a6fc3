package mcperr

import (
	"encoding/json"
	"fmt"
)

// Response is the wire form of a failure.
type Response struct {
	Code    Kind
	Message string
	Details map[string]any
	TraceID string
}

type responseBody struct {
	Code    Kind           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	TraceID string         `json:"trace_id,omitempty"`
}

type responseEnvelope struct {
	Error responseBody `json:"error"`
}

// MarshalJSON encodes r as {"error":{"code","message","details"?,"trace_id"?}}.
func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(responseEnvelope{Error: responseBody(r)})
}

// UnmarshalJSON decodes the envelope produced by MarshalJSON.
func (r *Response) UnmarshalJSON(data []byte) error {
	var env responseEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode error response: %w", err)
	}
	*r = Response(env.Error)
	return nil
}

// Text returns the JSON encoding of r as a string. Encoding failures fall
// back to a minimal envelope carrying code and message.
func (r Response) Text() string {
	b, err := json.Marshal(r)
	if err != nil {
		b, _ = json.Marshal(Response{Code: r.Code, Message: r.Message, TraceID: r.TraceID})
	}
	return string(b)
}

