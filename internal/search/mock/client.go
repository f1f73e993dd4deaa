package mock

import (
	"context"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/NassimMahmoudi/mcp-server/internal/search"
)

type Client struct {
	Body  string
	Delay time.Duration
	Panic any

	CallCount   int
	LastRequest search.Request
	AllRequests []search.Request

	mu sync.Mutex
}

func New() *Client {
	return &Client{}
}

// WithBody sets the raw JSON returned by Fetch.
func (c *Client) WithBody(body string) *Client {
	c.Body = body
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

// WithPanic makes Fetch panic, for exercising recovery in callers.
func (c *Client) WithPanic(v any) *Client {
	c.Panic = v
	return c
}

func (c *Client) Fetch(ctx context.Context, req search.Request) search.Payload {
	c.mu.Lock()
	c.CallCount++
	c.LastRequest = req
	c.AllRequests = append(c.AllRequests, req)
	delay := c.Delay
	body := c.Body
	p := c.Panic
	c.mu.Unlock()

	if p != nil {
		panic(p)
	}

	if delay > 0 {
		select {
		case <-ctx.Done():
			return search.EmptyPayload()
		case <-time.After(delay):
		}
	}

	if body == "" || !gjson.Valid(body) {
		return search.EmptyPayload()
	}
	return gjson.Parse(body)
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastRequest = search.Request{}
	c.AllRequests = nil
}
