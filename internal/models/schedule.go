package models

import "time"

// FrequencyHour is the only recurrence unit the gap filler creates.
const FrequencyHour = "Hour"

// Schedule represents a recurring schedule on an automation account.
// Only the minute-of-hour of StartTime and the HourInterval matter when
// deciding whether a minute slot is already covered.
type Schedule struct {
	ID           int       `json:"id"`
	Account      string    `json:"account"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	HourInterval int       `json:"hour_interval"`
	StartTime    time.Time `json:"start_time"`
	Frequency    string    `json:"frequency"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewSchedule is the body of a schedule create request. Account travels in
// the request path, not the body.
type NewSchedule struct {
	Account      string    `json:"-"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	HourInterval int       `json:"hour_interval"`
	StartTime    time.Time `json:"start_time"`
	Frequency    string    `json:"frequency"`
}
