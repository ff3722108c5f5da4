package model

import (
	"fmt"
	"strings"
	"time"
)

// OpeningTime is a value object for a single opening range within a day.
// Two OpeningTime values are equal when their bounds are equal.
type OpeningTime struct {
	StartTime time.Time
	EndTime   time.Time
}

// ParseOpeningTime parses a single "HH:MM-HH:MM" range.
func ParseOpeningTime(s string) (OpeningTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return OpeningTime{}, fmt.Errorf("plage horaire invalide: %q", s)
	}

	start, err := time.Parse("15:04", strings.TrimSpace(parts[0]))
	if err != nil {
		return OpeningTime{}, fmt.Errorf("heure de début invalide: %q", parts[0])
	}
	end, err := time.Parse("15:04", strings.TrimSpace(parts[1]))
	if err != nil {
		return OpeningTime{}, fmt.Errorf("heure de fin invalide: %q", parts[1])
	}

	return OpeningTime{StartTime: start, EndTime: end}, nil
}

// ParseOpeningHours parses a per-day hours string such as
// "08:00-12:00,14:00-18:00" into its ranges.
func ParseOpeningHours(s string) ([]OpeningTime, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("les horaires ne peuvent pas être vides")
	}

	ranges := strings.Split(s, ",")
	out := make([]OpeningTime, 0, len(ranges))
	for _, r := range ranges {
		ot, err := ParseOpeningTime(r)
		if err != nil {
			return nil, err
		}
		if !ot.IsValid() {
			return nil, fmt.Errorf("horaires invalides: %s", ot)
		}
		out = append(out, ot)
	}

	return out, nil
}

func (ot OpeningTime) IsValid() bool {
	return ot.StartTime.Before(ot.EndTime)
}

// Contains reports whether t (inclusive on both bounds) falls inside the range.
func (ot OpeningTime) Contains(t time.Time) bool {
	if !ot.IsValid() {
		return false
	}
	return !t.Before(ot.StartTime) && !t.After(ot.EndTime)
}

func (ot OpeningTime) String() string {
	return fmt.Sprintf("%s - %s", ot.StartTime.Format("15:04"), ot.EndTime.Format("15:04"))
}
