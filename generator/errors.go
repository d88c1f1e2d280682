package generator

import (
	"errors"
	"fmt"
)

// ErrEmptyTopic is returned before any model call when the topic is blank.
var ErrEmptyTopic = errors.New("topic is required")

// Stage names one of the three model calls.
type Stage string

const (
	StageTitle    Stage = "title"
	StageCaptions Stage = "captions"
	StageHashtags Stage = "hashtags"
)

// GenerationError reports a failed model call. Nothing from the failed
// generation is returned alongside it.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
