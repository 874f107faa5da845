package llm

import (
	"context"
	"errors"
)

var (
	ErrGenerationFailed = errors.New("failed to generate content")
	ErrEmptyResponse    = errors.New("model returned empty content")
)

// Generator is the single seam to the language model. It is the only
// non-deterministic external dependency in the query path; tests replace it
// with a deterministic stub. Implementations apply their own timeout and
// surface failures as typed errors; no retries happen at this layer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
