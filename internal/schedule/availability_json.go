package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

var dayNames = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

var daysByName = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, len(dayNames))
	for d, n := range dayNames {
		m[n] = d
	}
	return m
}()

// MarshalJSON encodes the template keyed by lowercase weekday names, the
// shape the availability column and the API use.
func (a WeeklyAvailability) MarshalJSON() ([]byte, error) {
	out := make(map[string][]TimeRange, len(a))
	for day, ranges := range a {
		out[dayNames[day]] = ranges
	}
	return json.Marshal(out)
}

func (a *WeeklyAvailability) UnmarshalJSON(data []byte) error {
	var raw map[string][]TimeRange
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(WeeklyAvailability, len(raw))
	for name, ranges := range raw {
		day, ok := daysByName[name]
		if !ok {
			return fmt.Errorf("unknown weekday %q in availability template", name)
		}
		out[day] = ranges
	}
	*a = out
	return nil
}
