// Package textgen is the boundary to the language-model service. The
// importer and the report composer only see the Generator interface.
package textgen

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Request is one text-generation call. When Schema is set the reply must be
// JSON conforming to it.
type Request struct {
	Model  string
	Prompt string
	Schema *genai.Schema
}

// Generator produces text for a prompt.
type Generator interface {
	GenerateText(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) GenerateText(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// CapabilityError wraps a failure of the text-generation service or of
// reading its reply.
type CapabilityError struct {
	Op  string
	Err error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// ErrNoAPIKey is reported by Unavailable.
var ErrNoAPIKey = errors.New("API_KEY environment variable not set")

// Unavailable fails every call. It stands in when no API key is configured
// so the rest of the service still runs.
var Unavailable Generator = Func(func(ctx context.Context, req Request) (string, error) {
	return "", &CapabilityError{Op: "generate", Err: ErrNoAPIKey}
})
