package schema

import (
	"encoding/json"
	"fmt"
)

// Schema is the contract shared by tool inputs and outputs
type Schema interface {
	String() string
}

// Stringify renders a tool payload as the text the model receives.
// Strings pass through untouched, everything else is JSON encoded.
func Stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case *string:
		if s == nil {
			return ""
		}
		return *s
	case String:
		return string(s)
	case *String:
		if s == nil {
			return ""
		}
		return string(*s)
	case []byte:
		return string(s)
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(bs)
}

// ToBytes is the byte form of Stringify
func ToBytes(v any) []byte {
	return []byte(Stringify(v))
}
