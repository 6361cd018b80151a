package schema

import (
	"slices"
	"testing"
)

func TestStringify(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		expect string
	}{
		{name: "nil", input: nil, expect: ""},
		{name: "string", input: "hello", expect: "hello"},
		{name: "schema string", input: String("world"), expect: "world"},
		{name: "slice", input: []map[string]string{{"id": "1", "title": "milk"}}, expect: `[{"id":"1","title":"milk"}]`},
		{name: "struct", input: struct {
			Base
			Title string `json:"title"`
		}{Title: "lunch"}, expect: `{"title":"lunch"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stringify(tt.input); got != tt.expect {
				t.Errorf("expect %s, got %s", tt.expect, got)
			}
		})
	}
}

func TestReflect(t *testing.T) {
	type Input struct {
		Base
		Summary  string `json:"summary" jsonschema:"title=summary,description=Title of the event."`
		Location string `json:"location,omitempty" jsonschema:"title=location"`
		Count    int    `json:"count,omitempty" jsonschema:"default=3"`
	}
	ret := Reflect[Input]()
	if ret["type"] != "object" {
		t.Fatalf("expect object schema, got %v", ret["type"])
	}
	props, ok := ret["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties missing: %v", ret)
	}
	for _, k := range []string{"summary", "location", "count"} {
		if _, found := props[k]; !found {
			t.Errorf("expect property %s", k)
		}
	}
	required, _ := ret["required"].([]any)
	names := make([]string, 0, len(required))
	for _, v := range required {
		names = append(names, v.(string))
	}
	if !slices.Equal(names, []string{"summary"}) {
		t.Errorf("expect only summary to be required, got %v", names)
	}
}

func TestReflectEmptyInput(t *testing.T) {
	type Input struct {
		Base
	}
	ret := Reflect[Input]()
	props, ok := ret["properties"].(map[string]any)
	if !ok || len(props) != 0 {
		t.Errorf("expect empty properties, got %v", ret["properties"])
	}
}
