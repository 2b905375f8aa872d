package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(context.Context, []openai.ChatCompletionMessage) (string, error) {
	return s.reply, s.err
}

var planNow = time.Date(2025, 6, 10, 15, 0, 0, 0, paris)

func TestBuildPlanDefaultsToLast24Hours(t *testing.T) {
	plan := BuildPlan(context.Background(), &stubCompleter{}, planNow, Intent{Summary: true})

	assert.Equal(t, planNow.Add(-24*time.Hour), plan.Start)
	assert.Equal(t, planNow, plan.End)
	assert.Equal(t, 100, plan.Limit)
	assert.Contains(t, plan.Notices, "ℹ️ Aucun intervalle de temps précisé → résumé sur les dernières 24h.")
	assert.Contains(t, plan.Notices, "ℹ️ Aucun nombre de messages ni plage de temps précisé → résumé sur les 100 derniers messages.")
}

func TestBuildPlanUsesResolvedTimeRange(t *testing.T) {
	completer := &stubCompleter{reply: "2025-06-09T00:00:00,2025-06-09T23:59:59"}
	plan := BuildPlan(context.Background(), completer, planNow, Intent{Summary: true, TimeLimit: "hier"})

	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, paris), plan.Start)
	assert.Equal(t, time.Date(2025, 6, 9, 23, 59, 59, 0, paris), plan.End)
	assert.Equal(t, 500, plan.Limit)
	assert.Contains(t, plan.Notices, "ℹ️ Aucun nombre de messages précisé → récupération de 500 messages max dans la plage de temps.")
}

func TestBuildPlanClampsStartToMinDate(t *testing.T) {
	completer := &stubCompleter{reply: "2023-01-01T00:00:00,2025-06-09T23:59:59"}
	plan := BuildPlan(context.Background(), completer, planNow, Intent{Summary: true, TimeLimit: "depuis 2023"})

	assert.Equal(t, minSummaryDate, plan.Start)
	assert.Contains(t, plan.Notices, "⚠️ La date de début a été ajustée au 15/10/2024 (limite minimale).")
}

func TestBuildPlanCapsCountLimit(t *testing.T) {
	plan := BuildPlan(context.Background(), &stubCompleter{}, planNow, Intent{Summary: true, CountLimit: 2000})

	assert.Equal(t, 500, plan.Limit)
	assert.Contains(t, plan.Notices, "⚠️ Le nombre de messages demandé a été réduit à 500 (maximum autorisé).")
}

func TestBuildPlanKeepsExplicitCount(t *testing.T) {
	plan := BuildPlan(context.Background(), &stubCompleter{}, planNow, Intent{Summary: true, CountLimit: 20})
	assert.Equal(t, 20, plan.Limit)
}

func TestParseTimeRangeFallsBackOnError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("api down")}
	start, end := ParseTimeRange(context.Background(), completer, planNow, "hier")

	assert.Equal(t, planNow.Add(-24*time.Hour), start)
	assert.Equal(t, planNow, end)
}

func TestParseTimeRangeFallsBackOnGarbage(t *testing.T) {
	completer := &stubCompleter{reply: "je ne sais pas"}
	start, end := ParseTimeRange(context.Background(), completer, planNow, "hier")

	assert.Equal(t, planNow.Add(-24*time.Hour), start)
	assert.Equal(t, planNow, end)
}

func TestParseTimeRangePatchesOpenEnd(t *testing.T) {
	// "depuis" with no explicit end: the model's end is overridden with now.
	completer := &stubCompleter{reply: "2025-06-09T00:00:00,2025-06-09T12:00:00"}
	_, end := ParseTimeRange(context.Background(), completer, planNow, "depuis hier")

	assert.Equal(t, planNow, end)
}

func TestParseTimeRangeKeepsExplicitEnd(t *testing.T) {
	completer := &stubCompleter{reply: "2025-06-09T00:00:00,2025-06-09T12:00:00"}
	_, end := ParseTimeRange(context.Background(), completer, planNow, "depuis hier jusqu'à midi")

	assert.Equal(t, time.Date(2025, 6, 9, 12, 0, 0, 0, paris), end)
}
