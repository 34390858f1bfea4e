package cache

import (
	"encoding/json"
	"fmt"
)

// Outcome kinds stored in a record's result column.
const (
	outcomeValue   = "value"
	outcomeFailure = "failure"
)

// outcome is the serialized form of an operation's result: either a
// JSON-encoded return value or a recorded failure. Storing failures as
// data (rather than re-raising through control flow) lets a closed
// window replay them verbatim to any later caller.
type outcome struct {
	Kind    string          `json:"kind"`
	Value   json.RawMessage `json:"value,omitempty"`
	Failure *failureInfo    `json:"failure,omitempty"`
}

// failureInfo captures a failed operation: the error text and the stack
// trace at the point of failure.
type failureInfo struct {
	Message string `json:"message"`
	Trace   string `json:"trace,omitempty"`
}

// encodeValue serializes a successful return value. Values round-trip
// through JSON, so operation results must be JSON-encodable.
func encodeValue(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &Error{
			Code:    CodeSerialization,
			Message: "encode result value",
			Err:     err,
		}
	}
	data, err := json.Marshal(outcome{Kind: outcomeValue, Value: raw})
	if err != nil {
		return nil, &Error{
			Code:    CodeSerialization,
			Message: "encode outcome envelope",
			Err:     err,
		}
	}
	return data, nil
}

// encodeFailure serializes a failed operation's message and trace.
func encodeFailure(message, trace string) ([]byte, error) {
	data, err := json.Marshal(outcome{
		Kind:    outcomeFailure,
		Failure: &failureInfo{Message: message, Trace: trace},
	})
	if err != nil {
		return nil, &Error{
			Code:    CodeSerialization,
			Message: "encode failure outcome",
			Err:     err,
		}
	}
	return data, nil
}

// decodeOutcome parses a stored result payload. Exactly one of the
// returns is set: a decoded value for a success outcome, or the
// recorded failure for a failure outcome.
func decodeOutcome(data []byte) (any, *failureInfo, error) {
	var out outcome
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, nil, &Error{
			Code:    CodeSerialization,
			Message: "decode outcome envelope",
			Err:     err,
		}
	}

	switch out.Kind {
	case outcomeValue:
		var v any
		if len(out.Value) > 0 {
			if err := json.Unmarshal(out.Value, &v); err != nil {
				return nil, nil, &Error{
					Code:    CodeSerialization,
					Message: "decode result value",
					Err:     err,
				}
			}
		}
		return v, nil, nil
	case outcomeFailure:
		if out.Failure == nil {
			return nil, nil, &Error{
				Code:    CodeSerialization,
				Message: "failure outcome missing failure payload",
			}
		}
		return nil, out.Failure, nil
	default:
		return nil, nil, &Error{
			Code:    CodeSerialization,
			Message: fmt.Sprintf("unknown outcome kind %q", out.Kind),
		}
	}
}
