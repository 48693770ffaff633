// Package llm holds the text-generation backends a generative headline
// producer can sit on.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when a backend answered without any text.
var ErrEmptyCompletion = errors.New("backend returned an empty completion")

// Request is one completion call. System carries the injected agent prompt.
type Request struct {
	System string
	Prompt string
}

// TextGenerator turns a prompt into free text.
type TextGenerator interface {
	GenerateText(ctx context.Context, req Request) (string, error)
	Name() string
}
