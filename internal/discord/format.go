package discord

import (
	"fmt"
	"time"
)

// paris is the reference timezone for all user-facing timestamps.
var paris = mustLoadParis()

func mustLoadParis() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.UTC
	}
	return loc
}

// Duration renders an elapsed duration compactly (01h23m / 12m34s / 45s).
func Duration(start, now time.Time) string {
	total := int(now.Sub(start).Seconds())
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02dh%02dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// RelativeFrench renders a human-friendly relative time in French
// ("à l’instant", "il y a 3 heures", "hier", ...).
func RelativeFrench(ts, now time.Time) string {
	sec := int(now.Sub(ts).Seconds())
	if sec < 0 {
		sec = 0 // clock skew
	}

	switch {
	case sec < 10:
		return "à l’instant"
	case sec < 60:
		return fmt.Sprintf("il y a %d s", sec)
	}

	minutes := sec / 60
	if minutes == 1 {
		return "il y a 1 minute"
	}
	if minutes < 60 {
		return fmt.Sprintf("il y a %d minutes", minutes)
	}

	hours := minutes / 60
	if hours == 1 {
		return "il y a 1 heure"
	}
	if hours < 24 {
		return fmt.Sprintf("il y a %d heures", hours)
	}

	days := hours / 24
	if days == 1 {
		return "hier"
	}
	if days < 7 {
		return fmt.Sprintf("il y a %d jours", days)
	}

	weeks := days / 7
	if weeks == 1 {
		return "la semaine dernière"
	}
	if days < 31 {
		return fmt.Sprintf("il y a %d semaines", weeks)
	}

	months := days / 31
	if months == 1 {
		return "le mois dernier"
	}
	return fmt.Sprintf("il y a %d mois", months)
}

// ParisStamp formats a timestamp in Europe/Paris local time as 'dd/mm/YYYY HH:MM'.
func ParisStamp(ts time.Time) string {
	return ts.In(paris).Format("02/01/2006 15:04")
}
