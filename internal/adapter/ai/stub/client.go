// Package stub provides deterministic LLM doubles for tests and local runs.
package stub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// ErrExhausted is returned when a scripted client runs out of replies.
var ErrExhausted = errors.New("stub: no scripted reply")

// Reply is one scripted outcome.
type Reply struct {
	Text string
	Err  error
}

// Client replays replies keyed by ChatRequest.Operation, falling back to the
// unkeyed queue. It records every request it receives.
type Client struct {
	name string

	mu       sync.Mutex
	byOp     map[string][]Reply
	queue    []Reply
	requests []domain.ChatRequest
}

// New returns an empty scripted client named "stub".
func New() *Client { return NewNamed("stub") }

// NewNamed returns an empty scripted client usable as a fallback provider.
func NewNamed(name string) *Client {
	return &Client{name: name, byOp: map[string][]Reply{}}
}

// Name returns the provider name.
func (c *Client) Name() string { return c.name }

// On queues replies for one operation.
func (c *Client) On(operation string, replies ...Reply) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byOp[operation] = append(c.byOp[operation], replies...)
	return c
}

// OnText queues successful text replies for one operation.
func (c *Client) OnText(operation string, texts ...string) *Client {
	replies := make([]Reply, len(texts))
	for i, t := range texts {
		replies[i] = Reply{Text: t}
	}
	return c.On(operation, replies...)
}

// Then queues replies for any operation without a keyed script.
func (c *Client) Then(replies ...Reply) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, replies...)
	return c
}

// Requests returns a copy of the requests seen so far.
func (c *Client) Requests() []domain.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// Calls counts requests for one operation; empty counts all.
func (c *Client) Calls(operation string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if operation == "" {
		return len(c.requests)
	}
	n := 0
	for _, r := range c.requests {
		if r.Operation == operation {
			n++
		}
	}
	return n
}

// Chat implements domain.LLMClient.
func (c *Client) Chat(ctx context.Context, req domain.ChatRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)

	if q := c.byOp[req.Operation]; len(q) > 0 {
		r := q[0]
		c.byOp[req.Operation] = q[1:]
		return r.Text, r.Err
	}
	if len(c.queue) > 0 {
		r := c.queue[0]
		c.queue = c.queue[1:]
		return r.Text, r.Err
	}
	return "", ErrExhausted
}

// Echo is an LLM client that always fails, forcing every caller onto its
// default path. Used when the service runs with no providers in dev.
type Echo struct{}

// Name returns the provider name.
func (Echo) Name() string { return "offline" }

// Chat always fails with domain.ErrUpstream.
func (Echo) Chat(_ context.Context, req domain.ChatRequest) (string, error) {
	return "", fmt.Errorf("op=stub.Echo.Chat %s: %w: offline", req.Operation, domain.ErrUpstream)
}
