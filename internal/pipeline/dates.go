package pipeline

import (
	"fmt"
	"time"

	"adstudio/internal/domain"
)

// DayRange lists the days a batch covers, in order. now fixes "today" and the
// location days are computed in.
//
// A live run over the current month starts tomorrow; any other month starts
// on the 1st. Test runs cover exactly one day: today when it falls inside the
// month, else the 1st.
func DayRange(year int, month time.Month, isTest bool, now time.Time) ([]time.Time, error) {
	if year < 1 || month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: year %d month %d", domain.ErrInvalidRequest, year, int(month))
	}
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	if isTest {
		if !today.Before(first) && !today.After(last) {
			return []time.Time{today}, nil
		}
		return []time.Time{first}, nil
	}

	start := first
	if today.Year() == year && today.Month() == month {
		start = today.AddDate(0, 0, 1)
	}
	var days []time.Time
	for d := start; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}
