// Package schedule computes bookable time slots from a professional's
// weekly availability template. All arithmetic is done in minutes since
// midnight; times on the wire are zero-padded "HH:mm" strings.
package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeRange is one working window within a day, e.g. {"09:00", "12:00"}.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeeklyAvailability maps weekdays to the ordered working windows of a
// professional. Days without an entry are non-working days.
type WeeklyAvailability map[time.Weekday][]TimeRange

// Slot is one bookable time point of the professional's visit duration.
type Slot struct {
	Time          string     `json:"time"`
	Available     bool       `json:"available"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
}

// Booking is an existing active appointment, as far as slot marking is
// concerned: its id and its start time.
type Booking struct {
	ID        uuid.UUID
	StartTime string
}

// DaySlots expands the availability template for the given date into
// slots of visitMinutes each, marking slots whose start time exactly
// matches an existing booking's start time as unavailable.
//
// A professional with no window on the date's weekday yields an empty
// result, not an error. Slots that would run past the end of their
// window are dropped.
func DaySlots(avail WeeklyAvailability, date time.Time, visitMinutes int, booked []Booking) ([]Slot, error) {
	if visitMinutes <= 0 {
		return nil, fmt.Errorf("%w: visit duration %d minutes", ErrInvalidClock, visitMinutes)
	}

	windows := avail[date.Weekday()]
	if len(windows) == 0 {
		return []Slot{}, nil
	}

	byStart := make(map[string]uuid.UUID, len(booked))
	for _, b := range booked {
		byStart[b.StartTime] = b.ID
	}

	var slots []Slot
	for _, w := range windows {
		start, err := ParseClock(w.Start)
		if err != nil {
			return nil, err
		}
		end, err := ParseClock(w.End)
		if err != nil {
			return nil, err
		}

		for at := start; at+visitMinutes <= end; at += visitMinutes {
			s := Slot{Time: FormatClock(at), Available: true}
			if id, ok := byStart[s.Time]; ok {
				s.Available = false
				apptID := id
				s.AppointmentID = &apptID
			}
			slots = append(slots, s)
		}
	}

	if slots == nil {
		slots = []Slot{}
	}
	return slots, nil
}
