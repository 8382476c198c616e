package store

import "encoding/json"

// marshalOrEmpty serializes v to JSON, falling back to the empty-container
// literal on failure so callers never see a malformed column (spec.md §3,
// §4.1 "JSON serialization discipline").
func marshalOrEmpty(v any, emptyLiteral string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return emptyLiteral
	}
	return string(b)
}

func marshalOptionsOrEmpty(opts []Option) string {
	if opts == nil {
		return "[]"
	}
	return marshalOrEmpty(opts, "[]")
}

func marshalStringsOrEmpty(ss []string) string {
	if ss == nil {
		return "[]"
	}
	return marshalOrEmpty(ss, "[]")
}

// unmarshalOptions decodes a JSON options column, returning nil (never an
// error) for an empty column or on any decode failure.
func unmarshalOptions(raw string) []Option {
	if raw == "" {
		return nil
	}
	var out []Option
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func unmarshalStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
