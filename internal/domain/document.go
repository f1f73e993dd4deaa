package domain

const (
	DefaultContentType = "text/markdown"
	DefaultLimit       = 20
)

const (
	MetaPosition   = "position"
	MetaFieldCount = "fieldCount"
)

// Document - canonical search hit returned to tool callers
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
	Meta        Meta   `json:"meta"`
}

// Meta carries upstream ranking info. Values are JSON primitives or nil.
type Meta map[string]any

func NewMeta(position, fieldCount any) Meta {
	return Meta{
		MetaPosition:   position,
		MetaFieldCount: fieldCount,
	}
}

func (m Meta) Position() any {
	return m[MetaPosition]
}

func (m Meta) FieldCount() any {
	return m[MetaFieldCount]
}
