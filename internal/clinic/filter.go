// ABOUTME: Appointment list filters for the upcoming/past tabs and the home screen

package clinic

import (
	"sort"
	"strings"
	"time"

	"github.com/markalston/iris/internal/provider"
)

// Tab selects a slice of the appointment history
type Tab int

const (
	TabUpcoming Tab = iota
	TabPast
	TabAll
)

// ParseTab accepts upcoming, past, or all
func ParseTab(s string) (Tab, bool) {
	switch strings.ToLower(s) {
	case "upcoming", "proximas", "próximas":
		return TabUpcoming, true
	case "past", "passadas", "historico", "histórico":
		return TabPast, true
	case "all", "todas":
		return TabAll, true
	}
	return TabUpcoming, false
}

func (t Tab) String() string {
	switch t {
	case TabUpcoming:
		return "upcoming"
	case TabPast:
		return "past"
	default:
		return "all"
	}
}

// Label is the tab title shown to the patient
func (t Tab) Label() string {
	switch t {
	case TabUpcoming:
		return "Próximas"
	case TabPast:
		return "Histórico"
	default:
		return "Todas"
	}
}

// Filter keeps the appointments belonging to tab, preserving order.
// Upcoming is today or later and not cancelled; past is before today or
// cancelled. Rows with unreadable dates only appear under TabAll.
func Filter(list []provider.Appointment, tab Tab, now time.Time) []provider.Appointment {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]provider.Appointment, 0, len(list))
	for _, a := range list {
		if tab == TabAll {
			out = append(out, a)
			continue
		}
		day, err := a.Day()
		if err != nil {
			continue
		}
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		cancelled := strings.EqualFold(a.Status, StatusCancelled)

		switch tab {
		case TabUpcoming:
			if !day.Before(today) && !cancelled {
				out = append(out, a)
			}
		case TabPast:
			if day.Before(today) || cancelled {
				out = append(out, a)
			}
		}
	}
	return out
}

// Upcoming returns at most limit non-cancelled appointments starting after
// now, soonest first.
func Upcoming(list []provider.Appointment, now time.Time, limit int) []provider.Appointment {
	type dated struct {
		appt  provider.Appointment
		start time.Time
	}
	var next []dated
	for _, a := range list {
		if strings.EqualFold(a.Status, StatusCancelled) {
			continue
		}
		start, ok := StartsAt(a, now.Location())
		if !ok || !start.After(now) {
			continue
		}
		next = append(next, dated{a, start})
	}
	sort.SliceStable(next, func(i, j int) bool { return next[i].start.Before(next[j].start) })

	if limit > 0 && len(next) > limit {
		next = next[:limit]
	}
	out := make([]provider.Appointment, len(next))
	for i, d := range next {
		out[i] = d.appt
	}
	return out
}
