package schema

import "encoding/json"

// Base is embedded by tool schemas
type Base struct{}

// String implements Schema interface
func (r Base) String() string {
	return ""
}

// JSON is a helper for schemas that render themselves as JSON
func JSON(v any) string {
	bs, _ := json.Marshal(v)
	return string(bs)
}
