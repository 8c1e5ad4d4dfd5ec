// Package gapfill finds the minute slots of an hour interval that have no
// schedule yet and creates one schedule per slot that falls on a segment.
package gapfill

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crucial707/automation-schedules/internal/models"
	"github.com/sirupsen/logrus"
)

// MinutesPerHour bounds the minute slots visited by a run.
const MinutesPerHour = 60

// ScheduleAPI is the remote scheduling service.
type ScheduleAPI interface {
	ListSchedules(ctx context.Context, account string, hourInterval int) ([]models.Schedule, error)
	CreateSchedule(ctx context.Context, s models.NewSchedule) (*models.Schedule, error)
}

// Filler runs gap fills against a ScheduleAPI.
type Filler struct {
	API    ScheduleAPI
	Logger logrus.FieldLogger
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewFiller returns a Filler logging to logger.
func NewFiller(api ScheduleAPI, logger logrus.FieldLogger) *Filler {
	return &Filler{API: api, Logger: logger, Now: time.Now}
}

// FillGaps creates a schedule for every uncovered minute that matches a segment.
// Create failures are recorded in the report and do not stop the run; the
// returned error is only set when nothing could be attempted.
func (f *Filler) FillGaps(ctx context.Context, account string, interval int, segments Segments) (*Report, error) {
	return f.run(ctx, account, interval, segments, false)
}

// Plan is FillGaps without the create calls.
func (f *Filler) Plan(ctx context.Context, account string, interval int, segments Segments) (*Report, error) {
	return f.run(ctx, account, interval, segments, true)
}

func (f *Filler) run(ctx context.Context, account string, interval int, segments Segments, dryRun bool) (*Report, error) {
	if interval < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInterval, interval)
	}
	if err := segments.Validate(); err != nil {
		return nil, err
	}

	existing, err := f.API.ListSchedules(ctx, account, interval)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	base := NextMidnight(f.now())
	covered := CoveredMinutes(existing, interval, base.Location())

	log := f.logger().WithFields(logrus.Fields{"account": account, "hour_interval": interval})
	log.WithFields(logrus.Fields{
		"existing": len(existing),
		"base":     base.Format(time.RFC3339),
		"segments": segments.String(),
	}).Debug("computing schedule gaps")

	report := &Report{Account: account, Interval: interval, Base: base, DryRun: dryRun}
	for m := 0; m < MinutesPerHour; m++ {
		out := Outcome{Minute: m, StartTime: base.Add(time.Duration(m) * time.Minute)}
		mlog := log.WithField("minute", m)

		if covered[m] {
			out.Action = ActionExists
			mlog.Debug("schedule already exists")
			report.add(out)
			continue
		}

		labels := segments.Match(m)
		if len(labels) == 0 {
			out.Action = ActionUnmatched
			mlog.Debug("no segment matches minute")
			report.add(out)
			continue
		}

		req := NewScheduleRequest(account, interval, m, base, labels)
		out.Name = req.Name
		out.Description = req.Description

		if dryRun {
			out.Action = ActionPlanned
			mlog.WithField("name", req.Name).Info("would create schedule")
			report.add(out)
			continue
		}

		mlog.WithField("name", req.Name).Info("creating schedule")
		if _, err := f.API.CreateSchedule(ctx, req); err != nil {
			out.Action = ActionFailed
			out.Err = &CreateError{Minute: m, Name: req.Name, Err: err}
			mlog.WithError(err).Error("create schedule failed")
		} else {
			out.Action = ActionCreated
		}
		report.add(out)
	}
	return report, nil
}

// NewScheduleRequest builds the create request for minute m.
func NewScheduleRequest(account string, interval, m int, base time.Time, labels []string) models.NewSchedule {
	return models.NewSchedule{
		Account:      account,
		Name:         ScheduleName(interval, m),
		Description:  strings.Join(labels, ","),
		HourInterval: interval,
		StartTime:    base.Add(time.Duration(m) * time.Minute),
		Frequency:    models.FrequencyHour,
	}
}

// ScheduleName is the display name given to created schedules.
func ScheduleName(interval, minute int) string {
	return fmt.Sprintf("Every %d Hour(s) at minute %d", interval, minute)
}

// CoveredMinutes marks the minute-of-hour, read in loc, of every schedule with
// the given hour interval. The date part of StartTime is ignored. loc must be
// the location new start times are built in, or half-hour zones shift minutes.
func CoveredMinutes(existing []models.Schedule, interval int, loc *time.Location) [MinutesPerHour]bool {
	var covered [MinutesPerHour]bool
	for _, s := range existing {
		if s.HourInterval != interval {
			continue
		}
		covered[s.StartTime.In(loc).Minute()] = true
	}
	return covered
}

// NextMidnight returns 00:00 of the day after now, in now's location.
func NextMidnight(now time.Time) time.Time {
	y, mo, d := now.AddDate(0, 0, 1).Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, now.Location())
}

func (f *Filler) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *Filler) logger() logrus.FieldLogger {
	if f.Logger != nil {
		return f.Logger
	}
	return logrus.StandardLogger()
}
