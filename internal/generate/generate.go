// Package generate produces candidate child nodes for a mind map from a prompt and
// the surrounding outline.
package generate

import (
	"context"
	"errors"
	"strings"
)

const (
	DefaultCount = 3
	MaxCount     = 10
)

var (
	ErrNoAPIKey    = errors.New("generation API key is not set")
	ErrEmptyResult = errors.New("generation returned no nodes")
)

// Request describes one generation call.
type Request struct {
	Prompt       string
	Count        int
	Context      string
	SelectedText string
}

// Response holds the generated node texts, at most Request.Count of them.
type Response struct {
	Nodes []string
}

// Generator is implemented by anything that can propose node texts.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Func adapts a function to the Generator interface.
type Func func(ctx context.Context, req Request) (Response, error)

func (f Func) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// ClampCount maps a requested count into 1..MaxCount, using DefaultCount for zero or less.
func ClampCount(n int) int {
	switch {
	case n <= 0:
		return DefaultCount
	case n > MaxCount:
		return MaxCount
	default:
		return n
	}
}

// Truncate trims each text, drops blank ones and keeps at most count. It never pads.
func Truncate(nodes []string, count int) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if len(out) == count {
			break
		}
		out = append(out, n)
	}
	return out
}
