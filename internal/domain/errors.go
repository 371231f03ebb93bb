// Package domain holds the interview, agent and memory entities, their pure
// state transitions, and the ports implemented by adapters.
package domain

import (
	"context"
	"errors"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstream          = errors.New("upstream failure")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrNoActiveQuestion  = errors.New("No active question")
	ErrNoProviders       = errors.New("no llm providers configured")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrInternal          = errors.New("internal error")
)

// Context aliases the standard context so ports read uniformly.
type Context = context.Context
