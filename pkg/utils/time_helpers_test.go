package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withLocal(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func TestDaysBetween(t *testing.T) {
	withLocal(t, time.UTC)
	base := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(base, base.Add(3*time.Hour)))
	assert.Equal(t, 1, DaysBetween(base, base.Add(6*time.Hour)), "переход через полночь - это уже следующий день")
	assert.Equal(t, -35, DaysBetween(base, base.AddDate(0, 0, -35)))
}

func TestDaysBetween_SymmetricAcrossZones(t *testing.T) {
	withLocal(t, time.FixedZone("EST", -5*3600))
	due := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.FixedZone("EST", -5*3600))

	assert.Equal(t, -DaysBetween(now, due), DaysBetween(due, now))
	assert.Equal(t, 1, DaysBetween(due, now), "полночь UTC - это ещё 18 октября по местному времени")
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 1, 2, 23, 59, 59, 5, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}
