package octavia

import (
	"bytes"
	"encoding/json"
	"fmt"

	domainerrors "github.com/octavia-db/octavia-go/errors"
)

// Result field names.
const (
	resultAck  = "ack"
	resultData = "data"
	resultCode = "code"
	resultMsg  = "msg"
)

// Result is the normalized outcome of a call. Transport failures, HTTP
// failures and failures reported by the server all produce a Result with
// Ack false; callers only need to branch on Ack.
type Result struct {
	Ack  bool
	Data json.RawMessage
	Code string
	Msg  string

	// Fields holds every top-level field of the body, including the ones
	// mirrored above and any extra detail the server supplied.
	Fields map[string]json.RawMessage
}

// Decode unmarshals Data into v. It returns an error when the call failed
// or when the server sent no data.
func (r *Result) Decode(v any) error {
	if err := r.Err(); err != nil {
		return err
	}
	if len(r.Data) == 0 || bytes.Equal(r.Data, []byte("null")) {
		return domainerrors.NewValidationError("result has no data", "")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode result data: %w", err)
	}
	return nil
}

// Field decodes the top-level body field name into v and reports whether
// the field was present.
func (r *Result) Field(name string, v any) (bool, error) {
	raw, ok := r.Fields[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("failed to decode field %s: %w", name, err)
	}
	return true, nil
}

// Err returns nil for an acknowledged call and a domain error describing
// the failure otherwise.
func (r *Result) Err() error {
	if r.Ack {
		return nil
	}
	return domainerrors.NewRequestFailedError(r.Code, r.Msg)
}

// MarshalJSON emits the body the Result was built from.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Fields == nil {
		return json.Marshal(map[string]any{resultAck: r.Ack})
	}
	return json.Marshal(r.Fields)
}

// UnmarshalJSON decodes a body, which must be a JSON object.
func (r *Result) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("result body is not an object: %w", err)
	}
	r.setFields(fields)
	return nil
}

func (r *Result) setFields(fields map[string]json.RawMessage) {
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	*r = Result{Fields: fields}

	if raw, ok := fields[resultAck]; ok {
		var ack bool
		if json.Unmarshal(raw, &ack) == nil {
			r.Ack = ack
		}
	}
	if raw, ok := fields[resultData]; ok {
		r.Data = raw
	}
	r.Code = rawText(fields[resultCode])
	r.Msg = rawText(fields[resultMsg])
}

// rawText returns a JSON string's value, or the raw JSON text of any other
// value, so numeric server codes are still visible.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// failureResult builds the synthetic result for a call that did not reach
// the server or was rejected by it. Fields of body, when body is a JSON
// object, are merged over the synthetic ones.
func failureResult(code, message string, body json.RawMessage) *Result {
	fields := map[string]json.RawMessage{
		resultAck:  json.RawMessage("false"),
		resultCode: mustRaw(code),
		resultMsg:  mustRaw("Request failed. " + message),
	}

	if len(body) > 0 {
		var server map[string]json.RawMessage
		if json.Unmarshal(body, &server) == nil {
			for k, v := range server {
				fields[k] = v
			}
		}
	}

	r := &Result{}
	r.setFields(fields)
	return r
}

func mustRaw(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
