package normalize

import (
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/NassimMahmoudi/mcp-server/internal/domain"
	"github.com/NassimMahmoudi/mcp-server/internal/metrics"
)

// Normalizer turns an upstream search payload into canonical documents.
// It keeps no state between calls and is safe for concurrent use.
type Normalizer struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(logger *zap.Logger, m *metrics.Metrics) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger, metrics: m}
}

// Normalize never fails: unknown payloads produce an empty, non-nil slice.
func (n *Normalizer) Normalize(payload gjson.Result, limit int) []domain.Document {
	shape := Classify(payload)
	if n.metrics != nil {
		n.metrics.RecordShape(shape.Name())
	}

	var docs []domain.Document
	switch s := shape.(type) {
	case ServiceResultShape:
		docs = fromServices(s)
	case FlatDocumentsShape:
		docs = fromFlatDocuments(s)
	case BareListShape:
		docs = fromBareList(s)
	case UnrecognizedShape:
		n.logger.Warn("unrecognized search payload shape, returning no documents",
			zap.String("payload_kind", s.Kind),
		)
	}

	found := len(docs)
	if limit < 0 {
		n.logger.Warn("negative limit, trimming from the end",
			zap.Int("limit", limit),
			zap.Int("found", found),
		)
	}
	docs = truncate(docs, limit)

	if n.metrics != nil {
		n.metrics.RecordDocuments(len(docs))
	}
	n.logger.Debug("normalized search payload",
		zap.String("shape", shape.Name()),
		zap.Int("found", found),
		zap.Int("returned", len(docs)),
		zap.Int("limit", limit),
	)

	return docs
}

func fromServices(s ServiceResultShape) []domain.Document {
	var docs []domain.Document
	s.Services.ForEach(func(_, svc gjson.Result) bool {
		if !svc.IsObject() {
			return true
		}
		entries := svc.Get(keyDocuments)
		if !entries.IsArray() {
			return true
		}
		entries.ForEach(func(_, entry gjson.Result) bool {
			if !entry.IsObject() {
				return true
			}
			// a missing or malformed nested document counts as empty
			nested := entry.Get(keyDocument)
			if !nested.IsObject() {
				nested = gjson.Parse("{}")
			}
			docs = append(docs, extract(source{
				doc:        nested,
				wrapper:    entry,
				hasWrapper: true,
				urlAsTitle: true,
			}))
			return true
		})
		return true
	})
	return docs
}

func fromFlatDocuments(s FlatDocumentsShape) []domain.Document {
	var docs []domain.Document
	s.Documents.ForEach(func(_, entry gjson.Result) bool {
		if !entry.IsObject() {
			return true
		}
		doc := entry
		if nested := entry.Get(keyDocument); nested.IsObject() {
			doc = nested
		}
		docs = append(docs, extract(source{
			doc:        doc,
			wrapper:    entry,
			hasWrapper: true,
		}))
		return true
	})
	return docs
}

func fromBareList(s BareListShape) []domain.Document {
	var docs []domain.Document
	s.Items.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			docs = append(docs, extract(source{doc: item}))
		}
		return true
	})
	return docs
}

// truncate keeps the first limit docs. A negative limit drops that many
// from the end, floored at empty.
func truncate(docs []domain.Document, limit int) []domain.Document {
	if limit < 0 {
		limit += len(docs)
		if limit < 0 {
			limit = 0
		}
	}
	if limit < len(docs) {
		docs = docs[:limit]
	}
	if docs == nil {
		return []domain.Document{}
	}
	return docs
}
