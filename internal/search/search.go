package search

import (
	"context"
	"errors"

	"github.com/tidwall/gjson"
)

var (
	ErrNoEndpoint     = errors.New("search endpoint is not configured")
	ErrRequestFailed  = errors.New("search request failed")
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	ErrInvalidPayload = errors.New("invalid search payload")
)

// Payload is the decoded upstream response, walked in document order.
type Payload = gjson.Result

// Fetcher never fails: any fault yields EmptyPayload.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) Payload
}

type Request struct {
	Query string
	Limit int
}

// EmptyPayload is the "no results" sentinel.
func EmptyPayload() Payload {
	return gjson.Parse("{}")
}
