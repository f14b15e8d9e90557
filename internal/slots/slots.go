// Package slots — детерминированный каталог часовых слотов корта.
// Ничего не хранит: последовательность пересчитывается от "now" на каждый запрос.
package slots

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Бронируемый день: 06:00–24:00, 18 слотов.
	DayStartHour = 6
	DayEndHour   = 24
)

// Format renders the canonical slot string for the hour h,
// e.g. Format(23) == "23:00 - 00:00".
func Format(h int) string {
	return fmt.Sprintf("%02d:00 - %02d:00", h, (h+1)%24)
}

// All returns the full 18-slot day sequence in order.
func All() []string {
	out := make([]string, 0, DayEndHour-DayStartHour)
	for h := DayStartHour; h < DayEndHour; h++ {
		out = append(out, Format(h))
	}
	return out
}

// ForDate returns the bookable slots for date as seen at the moment now.
// For today the current hour stays available only until its first minute:
// once now.Minute() > 0 the partially elapsed hour is dropped too.
func ForDate(date, now time.Time) []string {
	all := All()
	if !sameDay(date, now) {
		return all
	}
	cur := now.Hour()
	if now.Minute() > 0 {
		cur++
	}
	out := make([]string, 0, len(all))
	for _, s := range all {
		if h, err := StartHour(s); err == nil && h >= cur {
			out = append(out, s)
		}
	}
	return out
}

// Valid reports whether slot is one of the catalog's 18 slots.
func Valid(slot string) bool {
	h, err := StartHour(slot)
	if err != nil || h < DayStartHour || h >= DayEndHour {
		return false
	}
	return slot == Format(h)
}

// StartHour parses the starting hour out of a slot string.
func StartHour(slot string) (int, error) {
	h, _, err := parseEdge(slot, 0)
	return h, err
}

// EndInstant combines the reservation date with the slot's end time.
// Слот "23:00 - 00:00" заканчивается в полночь следующего дня.
func EndInstant(date time.Time, slot string) (time.Time, error) {
	hour, minute, err := parseEdge(slot, 1)
	if err != nil {
		return time.Time{}, err
	}
	day := date
	if hour == 0 && minute == 0 {
		day = day.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, date.Location()), nil
}

// parseEdge reads the start (idx 0) or end (idx 1) "HH:MM" of a slot string.
func parseEdge(slot string, idx int) (hour, minute int, err error) {
	parts := strings.Split(slot, " - ")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed slot %q", slot)
	}
	hm := strings.Split(parts[idx], ":")
	if len(hm) != 2 {
		return 0, 0, fmt.Errorf("malformed slot %q", slot)
	}
	hour, err = strconv.Atoi(hm[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed slot %q", slot)
	}
	minute, err = strconv.Atoi(hm[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed slot %q", slot)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("malformed slot %q", slot)
	}
	return hour, minute, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
