package ai

import (
	"context"
	"time"
)

const (
	maxMessagesHard     = 500
	defaultMessageCount = 100
)

// minSummaryDate is the earliest history the summarizer will look at.
var minSummaryDate = time.Date(2024, 10, 15, 0, 0, 0, 0, paris)

// Plan is the concrete collection window derived from an intent, plus the
// French notice lines explaining any fallback or clamp that was applied.
type Plan struct {
	Start   time.Time
	End     time.Time
	Limit   int
	Notices []string
}

// BuildPlan turns an intent into a collection plan. Missing parameters get
// defaults: no time range means the last 24 hours, no count means 100
// messages (or up to 500 inside an explicit time range).
func BuildPlan(ctx context.Context, completer Completer, now time.Time, intent Intent) Plan {
	now = now.In(paris)
	var plan Plan

	if intent.TimeLimit != "" {
		plan.Start, plan.End = ParseTimeRange(ctx, completer, now, intent.TimeLimit)
		if plan.Start.Before(minSummaryDate) {
			plan.Notices = append(plan.Notices,
				"⚠️ La date de début a été ajustée au 15/10/2024 (limite minimale).")
			plan.Start = minSummaryDate
		}
	} else {
		plan.End = now
		plan.Start = now.Add(-24 * time.Hour)
		plan.Notices = append(plan.Notices,
			"ℹ️ Aucun intervalle de temps précisé → résumé sur les dernières 24h.")
	}

	switch {
	case intent.CountLimit > maxMessagesHard:
		plan.Notices = append(plan.Notices,
			"⚠️ Le nombre de messages demandé a été réduit à 500 (maximum autorisé).")
		plan.Limit = maxMessagesHard
	case intent.CountLimit > 0:
		plan.Limit = intent.CountLimit
	case intent.TimeLimit != "":
		plan.Limit = maxMessagesHard
		plan.Notices = append(plan.Notices,
			"ℹ️ Aucun nombre de messages précisé → récupération de 500 messages max dans la plage de temps.")
	default:
		plan.Limit = defaultMessageCount
		plan.Notices = append(plan.Notices,
			"ℹ️ Aucun nombre de messages ni plage de temps précisé → résumé sur les 100 derniers messages.")
	}

	return plan
}
