package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Reflect returns the JSON schema object describing T, ready to be sent to a model
// as a tool input schema.
func Reflect[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	var v T
	s := reflector.Reflect(&v)
	s.Version = ""
	s.ID = ""
	ret := make(map[string]any)
	if bs, err := json.Marshal(s); err == nil {
		_ = json.Unmarshal(bs, &ret)
	}
	ret["type"] = "object"
	if _, ok := ret["properties"]; !ok {
		ret["properties"] = map[string]any{}
	}
	return ret
}
