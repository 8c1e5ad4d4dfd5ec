package gapfill

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedEnvironment is returned when the host runtime is older than MinPlatformVersion.
	ErrUnsupportedEnvironment = errors.New("unsupported environment")
	// ErrMissingDependency is returned when the automation API cannot be reached.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrInvalidInterval is returned for hour intervals below 1.
	ErrInvalidInterval = errors.New("invalid hour interval")
	// ErrInvalidSegment is returned for malformed or duplicate segments.
	ErrInvalidSegment = errors.New("invalid segment")
)

// CreateError records a failed create for a single minute. It never aborts a run.
type CreateError struct {
	Minute int
	Name   string
	Err    error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create schedule %q (minute %d): %v", e.Name, e.Minute, e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}
