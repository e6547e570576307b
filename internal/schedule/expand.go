// Package schedule expands recurring weekly templates into concrete dated
// events. The assisted-extraction adapters receive schedules in this shape
// from the extraction service and rely on the expansion being deterministic.
package schedule

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Rule is one day-of-week slot within a template.
type Rule struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Exception suppresses generation for a specific date.
type Exception struct {
	Date string `json:"date"`
}

// Template is a recurring weekly schedule over an inclusive date range.
type Template struct {
	StartDate  string      `json:"startDate"`
	EndDate    string      `json:"endDate"`
	Schedules  []Rule      `json:"schedules"`
	Exceptions []Exception `json:"exceptions,omitempty"`
}

// Occurrence is one generated event instance.
type Occurrence struct {
	Date      time.Time
	DayOfWeek string
	StartTime string
	EndTime   string
}

// Expand enumerates one Occurrence per calendar day in
// [StartDate, EndDate] whose weekday matches a rule, skipping exception
// dates. Iteration is by date, then rule order, so identical inputs always
// yield the same ordered output.
func Expand(t Template) ([]Occurrence, error) {
	start, err := time.Parse(dateLayout, t.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parse startDate %q: %w", t.StartDate, err)
	}
	end, err := time.Parse(dateLayout, t.EndDate)
	if err != nil {
		return nil, fmt.Errorf("parse endDate %q: %w", t.EndDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("endDate %s is before startDate %s", t.EndDate, t.StartDate)
	}

	excluded := make(map[string]struct{}, len(t.Exceptions))
	for _, ex := range t.Exceptions {
		excluded[ex.Date] = struct{}{}
	}

	var out []Occurrence
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dateStr := day.Format(dateLayout)
		if _, skip := excluded[dateStr]; skip {
			continue
		}
		weekday := day.Weekday().String()
		for _, rule := range t.Schedules {
			if rule.DayOfWeek != weekday {
				continue
			}
			out = append(out, Occurrence{
				Date:      day,
				DayOfWeek: weekday,
				StartTime: rule.StartTime,
				EndTime:   rule.EndTime,
			})
		}
	}
	return out, nil
}

// ExpandAll expands multiple independent templates and concatenates their
// results in template order.
func ExpandAll(templates []Template) ([]Occurrence, error) {
	var out []Occurrence
	for i, t := range templates {
		occ, err := Expand(t)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
		out = append(out, occ...)
	}
	return out, nil
}
