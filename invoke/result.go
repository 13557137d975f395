package invoke

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind tags the shape of parsed CLI output.
type Kind int

const (
	// KindOther is any structured value that is neither a string nor an array.
	KindOther Kind = iota
	// KindScalar is a bare JSON string.
	KindScalar
	// KindCollection is a JSON array.
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindCollection:
		return "collection"
	default:
		return "other"
	}
}

// Value is parsed stdout. Canonical is the compact JSON text with member
// order preserved; Scalar is set for KindScalar and Items for KindCollection.
type Value struct {
	Kind      Kind
	Canonical string
	Scalar    string
	Items     []json.RawMessage
}

// emptyObject stands in for empty stdout.
const emptyObject = "{}"

// ParseValue parses CLI stdout. Blank stdout parses as an empty object.
func ParseValue(stdout string) (Value, error) {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return Value{Kind: KindOther, Canonical: emptyObject}, nil
	}

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return Value{}, withErrorDetails(
			newError(ErrorCodeParseFailure, "invoke: parse cli output: "+err.Error(), err),
			map[string]any{"stdout_bytes": len(stdout)},
		)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return Value{}, newError(ErrorCodeParseFailure, "invoke: compact cli output: "+err.Error(), err)
	}
	value := Value{Kind: KindOther, Canonical: compact.String()}

	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &value.Scalar); err != nil {
			return Value{}, newError(ErrorCodeParseFailure, "invoke: decode string output: "+err.Error(), err)
		}
		value.Kind = KindScalar
	case '[':
		if err := json.Unmarshal(raw, &value.Items); err != nil {
			return Value{}, newError(ErrorCodeParseFailure, "invoke: decode array output: "+err.Error(), err)
		}
		value.Kind = KindCollection
	}
	return value, nil
}

// RawOutput derives the scalar projection of v. A bare string projects to
// itself and a one-element array to its element (strings unquoted, anything
// else as compact JSON). All other shapes have no projection.
func (v Value) RawOutput() (string, bool) {
	var raw string
	switch v.Kind {
	case KindScalar:
		raw = v.Scalar
	case KindCollection:
		if len(v.Items) != 1 {
			return "", false
		}
		raw = elementText(v.Items[0])
	default:
		return "", false
	}
	if raw == "" {
		return "", false
	}
	return raw, true
}

func elementText(item json.RawMessage) string {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}

// NormalizedOutput holds the values published for a successful run.
type NormalizedOutput struct {
	Output    string
	RawOutput string
	HasRaw    bool
	Kind      Kind
}

// Normalize parses successful stdout and derives both published values.
// Output is the canonical JSON text encoded once more as a JSON string.
func Normalize(result ExecutionResult) (NormalizedOutput, error) {
	value, err := ParseValue(result.Stdout)
	if err != nil {
		return NormalizedOutput{}, err
	}
	out := NormalizedOutput{
		Output: QuoteJSON(value.Canonical),
		Kind:   value.Kind,
	}
	out.RawOutput, out.HasRaw = value.RawOutput()
	return out, nil
}

// FailureMessage is the diagnostic for a run that exited nonzero.
func FailureMessage(result ExecutionResult) string {
	return "Failed: " + QuoteJSON(result.Stderr)
}

// QuoteJSON renders s as a JSON string literal without HTML escaping.
func QuoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		// Encoding a Go string cannot fail.
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
