package core

import (
	"errors"
	"fmt"
)

// Stage names a step of the generation pipeline.
type Stage string

const (
	StageFetch        Stage = "fetch"
	StageTopics       Stage = "topics"
	StageResearch     Stage = "research"
	StageHeadlines    Stage = "headlines"
	StagePerex        Stage = "perex"
	StageEngagingText Stage = "engaging_text"
	StageBody         Stage = "body"
	StageTags         Stage = "tags"
	StageGraph        Stage = "graph"
)

// ErrInvalidURL is returned when a URL is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid URL")

// FetchError reports an invalid URL or a failed scrape. It is never retried.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// GenerationError reports a failed or invalid model call for one stage.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at %s stage: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UnsupportedCombinationError is returned when a mode is not available for a content kind,
// such as regenerating with research augmentation.
type UnsupportedCombinationError struct {
	Kind string
	Mode string
}

func (e *UnsupportedCombinationError) Error() string {
	return fmt.Sprintf("%s mode is not supported for %s", e.Mode, e.Kind)
}

// StageOf returns the failing stage of err, if it carries one.
func StageOf(err error) (Stage, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Stage, true
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return StageFetch, true
	}
	return "", false
}
