package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/NassimMahmoudi/mcp-server/internal/domain"
	"github.com/NassimMahmoudi/mcp-server/internal/metrics"
	"github.com/NassimMahmoudi/mcp-server/internal/search"
)

type Normalizer interface {
	Normalize(payload gjson.Result, limit int) []domain.Document
}

// SearchService is the tool-facing pipeline. It never returns an error:
// callers get documents or an empty list.
type SearchService interface {
	SearchDocuments(ctx context.Context, query domain.SearchQuery) []any
}

type SearchServiceDeps struct {
	Fetcher    search.Fetcher
	Normalizer Normalizer
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

type searchService struct {
	fetcher    search.Fetcher
	normalizer Normalizer
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func NewSearchService(deps SearchServiceDeps) SearchService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &searchService{
		fetcher:    deps.Fetcher,
		normalizer: deps.Normalizer,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

func (s *searchService) SearchDocuments(ctx context.Context, query domain.SearchQuery) (out []any) {
	startTime := time.Now()
	status := "ok"

	if s.metrics != nil {
		s.metrics.IncToolCallsInFlight()
		defer s.metrics.DecToolCallsInFlight()
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in search pipeline",
				zap.Any("panic", r),
				zap.String("query", query.Text),
				zap.Int("limit", query.Limit),
				zap.Stack("stack"),
			)
			status = "panic"
			out = []any{}
		}
		if s.metrics != nil {
			s.metrics.RecordToolCall(status, time.Since(startTime))
		}
	}()

	s.logger.Info("search_documents_tool called",
		zap.String("query", query.Text),
		zap.Int("limit", query.Limit),
	)

	if err := query.Validate(); err != nil {
		// not rejected: the normalizer owns negative-limit semantics
		s.logger.Warn("questionable search query", zap.Error(err), zap.Int("limit", query.Limit))
	}

	payload := s.fetcher.Fetch(ctx, search.Request{Query: query.Text, Limit: query.Limit})
	docs := s.normalizer.Normalize(payload, query.Limit)

	result, err := toJSONValues(docs)
	if err != nil {
		s.logger.Error("search_documents_tool failed",
			zap.String("query", query.Text),
			zap.Error(err),
		)
		status = "error"
		return []any{}
	}

	if len(result) == 0 {
		status = "empty"
	}
	s.logger.Debug("search_documents_tool done",
		zap.Int("documents", len(result)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return result
}

// toJSONValues round-trips through encoding/json so only JSON primitives,
// []any and map[string]any reach the tool boundary.
func toJSONValues(docs []domain.Document) ([]any, error) {
	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("marshal documents: %w", err)
	}

	var out []any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal documents: %w", err)
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}
