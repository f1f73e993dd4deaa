package normalize

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/NassimMahmoudi/mcp-server/internal/domain"
)

const (
	fieldID          = "id"
	fieldTitle       = "title"
	fieldURL         = "url"
	fieldContentType = "content_type"
	fieldContent     = "content"
	fieldText        = "text"
	fieldPosition    = "position"
	fieldFieldCount  = "fieldCount"
)

// source is one document as seen by the extractors: doc holds the
// metadata, wrapper is the outer list entry (zero Result when there is none).
type source struct {
	doc        gjson.Result
	wrapper    gjson.Result
	hasWrapper bool
	urlAsTitle bool
}

// extractor returns a value and whether it applies. Chains stop at the first hit.
type extractor func(src source) (string, bool)

var (
	idChain          = []extractor{wrapperTruthy(fieldID), docTruthy(fieldID)}
	titleChain       = []extractor{docTruthy(fieldTitle), urlAsTitle}
	urlChain         = []extractor{docTruthy(fieldURL)}
	contentTypeChain = []extractor{docTruthy(fieldContentType), constant(domain.DefaultContentType)}
	contentChain     = []extractor{docPresent(fieldContent), textContent}
)

func first(src source, chain []extractor) string {
	for _, ex := range chain {
		if v, ok := ex(src); ok {
			return v
		}
	}
	return ""
}

func wrapperTruthy(name string) extractor {
	return func(src source) (string, bool) {
		if !src.hasWrapper {
			return "", false
		}
		v := src.wrapper.Get(name)
		if !truthy(v) {
			return "", false
		}
		return stringify(v), true
	}
}

func docTruthy(name string) extractor {
	return func(src source) (string, bool) {
		v := src.doc.Get(name)
		if !truthy(v) {
			return "", false
		}
		return stringify(v), true
	}
}

// docPresent accepts any non-null value, including "".
func docPresent(name string) extractor {
	return func(src source) (string, bool) {
		v := src.doc.Get(name)
		if !v.Exists() || v.Type == gjson.Null {
			return "", false
		}
		return stringify(v), true
	}
}

func urlAsTitle(src source) (string, bool) {
	if !src.urlAsTitle {
		return "", false
	}
	return docTruthy(fieldURL)(src)
}

func constant(value string) extractor {
	return func(source) (string, bool) {
		return value, true
	}
}

// textContent joins a list-valued text with "\n", dropping nulls.
func textContent(src source) (string, bool) {
	text := src.doc.Get(fieldText)
	if !text.Exists() || text.Type == gjson.Null {
		return "", true
	}
	if !text.IsArray() {
		return stringify(text), true
	}

	var lines []string
	text.ForEach(func(_, line gjson.Result) bool {
		if line.Type != gjson.Null {
			lines = append(lines, stringify(line))
		}
		return true
	})
	return strings.Join(lines, "\n"), true
}

func extract(src source) domain.Document {
	doc := domain.Document{
		ID:          first(src, idChain),
		Title:       first(src, titleChain),
		URL:         first(src, urlChain),
		ContentType: first(src, contentTypeChain),
		Content:     first(src, contentChain),
	}

	if src.hasWrapper {
		doc.Meta = domain.NewMeta(value(src.wrapper.Get(fieldPosition)), value(src.wrapper.Get(fieldFieldCount)))
	} else {
		doc.Meta = domain.NewMeta(nil, nil)
	}
	return doc
}

// truthy mirrors JSON falsiness: null, false, 0, "", [] and {} are false.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		empty := true
		r.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})
		return !empty
	}
	return false
}

func stringify(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Null:
		return ""
	case gjson.JSON:
		return string(pretty.Ugly([]byte(r.Raw)))
	}
	return r.Raw
}

// value converts to a JSON-safe Go value; missing and null become nil.
func value(r gjson.Result) any {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	return r.Value()
}
