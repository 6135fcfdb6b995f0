package utils

import "time"

// StartOfDay обнуляет время в часовом поясе t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween - число календарных дней от from до to (может быть отрицательным).
// Оба момента переводятся в локальный пояс сервера, поэтому
// DaysBetween(a, b) == -DaysBetween(b, a).
func DaysBetween(from, to time.Time) int {
	a := StartOfDay(from.In(time.Local))
	b := StartOfDay(to.In(time.Local))
	// Через UTC-полдень, чтобы переход на летнее время не съедал сутки.
	au := time.Date(a.Year(), a.Month(), a.Day(), 12, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 12, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
