package premium

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubGrants struct {
	active map[string]bool
	err    error
}

func (s *stubGrants) ActiveByDiscordID(_ context.Context, guildID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.active[guildID], nil
}

func TestDefaultGuildsAreAlwaysPremium(t *testing.T) {
	checker := NewChecker(&stubGrants{}, "")

	assert.True(t, checker.IsPremium(context.Background(), "1372478988882022502"))
	assert.True(t, checker.IsPremium(context.Background(), "881871369149759502"))
	assert.False(t, checker.IsPremium(context.Background(), "999"))
}

func TestExtraGuildsFromConfig(t *testing.T) {
	checker := NewChecker(&stubGrants{}, " 111 ,222,")

	assert.True(t, checker.IsPremium(context.Background(), "111"))
	assert.True(t, checker.IsPremium(context.Background(), "222"))
	assert.False(t, checker.IsPremium(context.Background(), "333"))
}

func TestDatabaseGrants(t *testing.T) {
	checker := NewChecker(&stubGrants{active: map[string]bool{"777": true}}, "")

	assert.True(t, checker.IsPremium(context.Background(), "777"))
	assert.False(t, checker.IsPremium(context.Background(), "778"))
}

func TestDatabaseErrorFallsBackToStaticLists(t *testing.T) {
	checker := NewChecker(&stubGrants{err: errors.New("db down")}, "111")

	assert.True(t, checker.IsPremium(context.Background(), "111"))
	assert.False(t, checker.IsPremium(context.Background(), "777"))
}

func TestNilGrantSource(t *testing.T) {
	checker := NewChecker(nil, "")
	assert.False(t, checker.IsPremium(context.Background(), "777"))
}
