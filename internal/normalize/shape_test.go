package normalize

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantName string
	}{
		{"service result", `{"result":{"a":{}}}`, "service_result"},
		{"empty result object", `{"result":{}}`, "service_result"},
		{"flat documents", `{"documents":[]}`, "flat_documents"},
		{"result wins", `{"result":{},"documents":[]}`, "service_result"},
		{"result wrong type falls through", `{"result":1,"documents":[]}`, "flat_documents"},
		{"bare list", `[1,2]`, "bare_list"},
		{"empty object", `{}`, "unrecognized"},
		{"documents object", `{"documents":{}}`, "unrecognized"},
		{"string", `"x"`, "unrecognized"},
		{"number", `3`, "unrecognized"},
		{"null", `null`, "unrecognized"},
		{"missing", ``, "unrecognized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(gjson.Parse(tt.payload))
			if got.Name() != tt.wantName {
				t.Errorf("Classify(%s) = %s, want %s", tt.payload, got.Name(), tt.wantName)
			}
		})
	}
}

func TestClassify_UnrecognizedKind(t *testing.T) {
	tests := []struct {
		payload string
		want    string
	}{
		{`{}`, "object"},
		{`"x"`, "string"},
		{`1.5`, "number"},
		{`false`, "bool"},
		{`null`, "null"},
		{``, "missing"},
	}

	for _, tt := range tests {
		s, ok := Classify(gjson.Parse(tt.payload)).(UnrecognizedShape)
		if !ok {
			t.Fatalf("Classify(%q) is not unrecognized", tt.payload)
		}
		if s.Kind != tt.want {
			t.Errorf("Classify(%q).Kind = %s, want %s", tt.payload, s.Kind, tt.want)
		}
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`null`, false},
		{`false`, false},
		{`0`, false},
		{`""`, false},
		{`[]`, false},
		{`{}`, false},
		{`true`, true},
		{`1`, true},
		{`"a"`, true},
		{`[0]`, true},
		{`{"a":null}`, true},
	}

	for _, tt := range tests {
		if got := truthy(gjson.Parse(tt.raw)); got != tt.want {
			t.Errorf("truthy(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
	if truthy(gjson.Result{}) {
		t.Error("truthy(missing) = true, want false")
	}
}
