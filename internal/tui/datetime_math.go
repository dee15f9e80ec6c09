package tui

import (
	"time"

	"stock-cli/internal/calendar"
)

type dateUnit int

const (
	dateUnitDay dateUnit = iota
	dateUnitMonth
	dateUnitYear
)

func clampDay(y int, m time.Month, d int) int {
	return min(max(d, 1), calendar.DaysIn(y, m))
}

// bumpDisplayDate moves a DD/MM/YYYY value by delta units. Input that does not
// parse yet starts from today. Month and year moves keep the day when it exists
// in the target month and clamp it otherwise.
func bumpDisplayDate(s string, unit dateUnit, delta int) string {
	d, err := calendar.ParseDisplay(s)
	if err != nil {
		d = calendar.Today()
	}
	switch unit {
	case dateUnitDay:
		d = d.AddDays(delta)
	case dateUnitMonth:
		y, mo := d.Year, int(d.Month)+delta
		for mo < 1 {
			mo += 12
			y--
		}
		for mo > 12 {
			mo -= 12
			y++
		}
		d = calendar.MustNew(y, time.Month(mo), clampDay(y, time.Month(mo), d.Day))
	case dateUnitYear:
		y := d.Year + delta
		d = calendar.MustNew(y, d.Month, clampDay(y, d.Month, d.Day))
	}
	return d.Display()
}
