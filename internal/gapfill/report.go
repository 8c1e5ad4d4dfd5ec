package gapfill

import (
	"errors"
	"time"
)

// Action is what a run did with a minute slot.
type Action string

const (
	ActionExists    Action = "exists"
	ActionUnmatched Action = "unmatched"
	ActionPlanned   Action = "planned"
	ActionCreated   Action = "created"
	ActionFailed    Action = "failed"
)

// Outcome is the result for one minute of the hour.
type Outcome struct {
	Minute      int       `json:"minute"`
	Action      Action    `json:"action"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	Error       string    `json:"error,omitempty"`

	Err *CreateError `json:"-"`
}

// Report holds one outcome per minute, ordered 0 to 59.
type Report struct {
	Account  string    `json:"account"`
	Interval int       `json:"hour_interval"`
	Base     time.Time `json:"base"`
	DryRun   bool      `json:"dry_run"`
	Outcomes []Outcome `json:"outcomes"`
}

func (r *Report) add(o Outcome) {
	if o.Err != nil {
		o.Error = o.Err.Error()
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Count returns how many minutes ended with action a.
func (r *Report) Count(a Action) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == a {
			n++
		}
	}
	return n
}

// Failures returns the create errors in minute order.
func (r *Report) Failures() []*CreateError {
	var out []*CreateError
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o.Err)
		}
	}
	return out
}

// Err joins every create failure, or returns nil.
func (r *Report) Err() error {
	fails := r.Failures()
	if len(fails) == 0 {
		return nil
	}
	errs := make([]error, len(fails))
	for i, f := range fails {
		errs[i] = f
	}
	return errors.Join(errs...)
}
