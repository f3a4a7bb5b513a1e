package models

import (
	"fmt"
	"time"
)

// Timeslot is a recurring time-of-day interval independent of calendar date.
// StartTime and EndTime are UTC "HH:MM" strings.
type Timeslot struct {
	ID        string `db:"id" json:"id"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}

// StartAt composes the slot's start time-of-day onto the given date in UTC.
func (t Timeslot) StartAt(date time.Time) (time.Time, error) {
	return composeClock(date, t.StartTime)
}

// EndAt composes the slot's end time-of-day onto the given date in UTC.
func (t Timeslot) EndAt(date time.Time) (time.Time, error) {
	return composeClock(date, t.EndTime)
}

func composeClock(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timeslot clock %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC), nil
}
