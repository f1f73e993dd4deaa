package normalize

import (
	"github.com/tidwall/gjson"
)

const (
	keyResult    = "result"
	keyDocuments = "documents"
	keyDocument  = "document"
)

// Shape is one of ServiceResultShape, FlatDocumentsShape, BareListShape
// or UnrecognizedShape. The set is closed.
type Shape interface {
	Name() string
	isShape()
}

// ServiceResultShape: {"result": {"<service>": {"documents": [...]}, ...}}
type ServiceResultShape struct {
	Services gjson.Result
}

// FlatDocumentsShape: {"documents": [...]}
type FlatDocumentsShape struct {
	Documents gjson.Result
}

// BareListShape: [...]
type BareListShape struct {
	Items gjson.Result
}

type UnrecognizedShape struct {
	// Kind describes what was received instead, for logs.
	Kind string
}

func (ServiceResultShape) Name() string { return "service_result" }
func (FlatDocumentsShape) Name() string { return "flat_documents" }
func (BareListShape) Name() string      { return "bare_list" }
func (UnrecognizedShape) Name() string  { return "unrecognized" }

func (ServiceResultShape) isShape() {}
func (FlatDocumentsShape) isShape() {}
func (BareListShape) isShape()      {}
func (UnrecognizedShape) isShape()  {}

// Classify picks the shape of payload. Rules are tried in priority order:
// result object, then documents array, then top-level array.
func Classify(payload gjson.Result) Shape {
	if payload.IsObject() {
		if result := payload.Get(keyResult); result.IsObject() {
			return ServiceResultShape{Services: result}
		}
		if docs := payload.Get(keyDocuments); docs.IsArray() {
			return FlatDocumentsShape{Documents: docs}
		}
		return UnrecognizedShape{Kind: "object"}
	}
	if payload.IsArray() {
		return BareListShape{Items: payload}
	}
	return UnrecognizedShape{Kind: describe(payload)}
}

func describe(r gjson.Result) string {
	if !r.Exists() {
		return "missing"
	}
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "bool"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	}
	return "json"
}
