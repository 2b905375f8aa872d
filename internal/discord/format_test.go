package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		start time.Time
		want  string
	}{
		{now.Add(-45 * time.Second), "45s"},
		{now.Add(-(12*time.Minute + 34*time.Second)), "12m34s"},
		{now.Add(-(1*time.Hour + 23*time.Minute)), "01h23m"},
		{now.Add(-(26*time.Hour + 5*time.Minute)), "26h05m"},
		{now.Add(time.Minute), "0s"}, // future start clamps to zero
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(tt.start, now))
	}
}

func TestRelativeFrench(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ts   time.Time
		want string
	}{
		{now.Add(-5 * time.Second), "à l’instant"},
		{now.Add(-30 * time.Second), "il y a 30 s"},
		{now.Add(-1 * time.Minute), "il y a 1 minute"},
		{now.Add(-45 * time.Minute), "il y a 45 minutes"},
		{now.Add(-1 * time.Hour), "il y a 1 heure"},
		{now.Add(-5 * time.Hour), "il y a 5 heures"},
		{now.Add(-25 * time.Hour), "hier"},
		{now.Add(-3 * 24 * time.Hour), "il y a 3 jours"},
		{now.Add(-8 * 24 * time.Hour), "la semaine dernière"},
		{now.Add(-20 * 24 * time.Hour), "il y a 2 semaines"},
		{now.Add(-40 * 24 * time.Hour), "le mois dernier"},
		{now.Add(-100 * 24 * time.Hour), "il y a 3 mois"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeFrench(tt.ts, now))
	}
}

func TestParisStamp(t *testing.T) {
	// 12:00 UTC in June is 14:00 in Paris (CEST).
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "01/06/2025 14:00", ParisStamp(ts))
}
