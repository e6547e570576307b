package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandSingleMondayRule(t *testing.T) {
	// 2023-09-03 is a Sunday; only 2023-09-04 is a Monday in range.
	tpl := Template{
		StartDate: "2023-09-03",
		EndDate:   "2023-09-10",
		Schedules: []Rule{{DayOfWeek: "Monday", StartTime: "16:00", EndTime: "17:30"}},
	}

	occ, err := Expand(tpl)
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.Equal(t, "2023-09-04", occ[0].Date.Format("2006-01-02"))
	assert.Equal(t, "16:00", occ[0].StartTime)
	assert.Equal(t, "17:30", occ[0].EndTime)
}

func TestExpandBoundsWeekdaysAndExceptions(t *testing.T) {
	tpl := Template{
		StartDate: "2023-09-01",
		EndDate:   "2023-09-30",
		Schedules: []Rule{
			{DayOfWeek: "Tuesday", StartTime: "10:00", EndTime: "11:00"},
			{DayOfWeek: "Saturday", StartTime: "19:00", EndTime: "21:00"},
		},
		Exceptions: []Exception{{Date: "2023-09-09"}, {Date: "2023-09-19"}},
	}

	occ, err := Expand(tpl)
	require.NoError(t, err)

	start, _ := time.Parse("2006-01-02", tpl.StartDate)
	end, _ := time.Parse("2006-01-02", tpl.EndDate)
	for _, o := range occ {
		assert.False(t, o.Date.Before(start))
		assert.False(t, o.Date.After(end))
		assert.Contains(t, []string{"Tuesday", "Saturday"}, o.Date.Weekday().String())
		assert.NotEqual(t, "2023-09-09", o.Date.Format("2006-01-02"))
		assert.NotEqual(t, "2023-09-19", o.Date.Format("2006-01-02"))
	}
	// September 2023 has 4 Tuesdays and 5 Saturdays; two dates excluded.
	assert.Len(t, occ, 7)
}

func TestExpandIsDeterministic(t *testing.T) {
	tpl := Template{
		StartDate: "2024-01-01",
		EndDate:   "2024-02-29",
		Schedules: []Rule{
			{DayOfWeek: "Monday", StartTime: "06:00", EndTime: "07:30"},
			{DayOfWeek: "Monday", StartTime: "20:00", EndTime: "21:30"},
			{DayOfWeek: "Friday", StartTime: "12:00", EndTime: "13:00"},
		},
	}

	first, err := Expand(tpl)
	require.NoError(t, err)
	second, err := Expand(tpl)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Same-day rules keep their template order.
	for i := 1; i < len(first); i++ {
		if first[i].Date.Equal(first[i-1].Date) {
			assert.Equal(t, "06:00", first[i-1].StartTime)
			assert.Equal(t, "20:00", first[i].StartTime)
		}
	}
}

func TestExpandRejectsInvertedRange(t *testing.T) {
	_, err := Expand(Template{StartDate: "2024-05-02", EndDate: "2024-05-01"})
	assert.Error(t, err)
}

func TestExpandAllConcatenatesTemplates(t *testing.T) {
	templates := []Template{
		{
			StartDate: "2024-03-04",
			EndDate:   "2024-03-10",
			Schedules: []Rule{{DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"}},
		},
		{
			StartDate: "2024-03-04",
			EndDate:   "2024-03-10",
			Schedules: []Rule{{DayOfWeek: "Sunday", StartTime: "15:00", EndTime: "16:00"}},
		},
	}

	occ, err := ExpandAll(templates)
	require.NoError(t, err)
	require.Len(t, occ, 2)
	// First template's output precedes the second's even though its date is later.
	assert.Equal(t, "2024-03-04", occ[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-03-10", occ[1].Date.Format("2006-01-02"))
}
