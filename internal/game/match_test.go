package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestKillTargetEndsMatch tests the kill target transition
func TestKillTargetEndsMatch(t *testing.T) {
	clock := NewManualClock()
	m := NewMatch("room-1", 2, 7*time.Minute, clock)
	m.Start()

	assert.False(t, m.RecordKill("a", "b"))
	assert.True(t, m.RecordKill("a", "c"), "second kill reaches the target")
	assert.True(t, m.IsEnded())
	assert.Equal(t, EndReasonKillTarget, m.EndReason())

	assert.False(t, m.RecordKill("b", "a"), "kills after the end are ignored")
	assert.Equal(t, 0, m.Kills("b"))
}

// TestTimeLimitEndsMatch tests the duration transition and first-reason-wins
func TestTimeLimitEndsMatch(t *testing.T) {
	clock := NewManualClock()
	m := NewMatch("room-1", 10, 7*time.Minute, clock)
	m.Start()

	assert.False(t, m.CheckTimeLimit())
	clock.Advance(7 * time.Minute)
	assert.True(t, m.CheckTimeLimit())
	assert.Equal(t, EndReasonTimeLimit, m.EndReason())

	assert.False(t, m.EndMatch(EndReasonServerError), "first end reason wins")
	assert.Equal(t, EndReasonTimeLimit, m.EndReason())
}

// TestRemainingSeconds tests the countdown
func TestRemainingSeconds(t *testing.T) {
	clock := NewManualClock()
	m := NewMatch("room-1", 10, 420*time.Second, clock)

	assert.Equal(t, 420, m.RemainingSeconds(), "full duration before start")
	m.Start()
	clock.Advance(100 * time.Second)
	assert.Equal(t, 320, m.RemainingSeconds())
	clock.Advance(500 * time.Second)
	assert.Equal(t, 0, m.RemainingSeconds(), "clamped at zero")
}

// TestDetermineWinners tests max-kills winners including ties
func TestDetermineWinners(t *testing.T) {
	clock := NewManualClock()
	m := NewMatch("room-1", 10, 7*time.Minute, clock)
	m.Start()

	assert.Empty(t, m.DetermineWinners(), "no kills means no winners")

	m.RecordKill("a", "b")
	m.RecordKill("b", "a")
	m.RecordKill("a", "c")
	m.RecordKill("b", "c")

	winners := m.DetermineWinners()
	assert.ElementsMatch(t, []string{"a", "b"}, winners, "ties produce multiple winners")
}

// TestFinalScoresCoverAllParticipants tests that live, departed and zero-kill
// participants all appear in the scoreboard
func TestFinalScoresCoverAllParticipants(t *testing.T) {
	clock := NewManualClock()
	world := NewWorldWithClock(clock)
	m := NewMatch("room-1", 10, 7*time.Minute, clock)
	m.Start()

	// Live participant with stats.
	alive := world.AddPlayer("alive", "alive")
	m.AddParticipant("alive")
	alive.IncrementKills()
	alive.AddXP(KillXPReward)

	// Departed participant: stats frozen, state released.
	departed := world.AddPlayer("departed", "departed")
	m.AddParticipant("departed")
	departed.IncrementKills()
	departed.IncrementDeaths()
	kills, deaths, xp := departed.Stats()
	m.RecordLeave("departed", kills, deaths, xp)
	world.RemovePlayer("departed")

	// Participant who never scored and never left a frozen record.
	m.AddParticipant("lurker")

	m.EndMatch(EndReasonTimeLimit)
	scores := m.GetFinalScores(world)
	require.Len(t, scores, 3)

	byID := make(map[string]PlayerScore, len(scores))
	for _, s := range scores {
		byID[s.PlayerID] = s
	}
	assert.Equal(t, 1, byID["alive"].Kills)
	assert.Equal(t, KillXPReward, byID["alive"].XP)
	assert.Equal(t, 1, byID["departed"].Kills)
	assert.Equal(t, 1, byID["departed"].Deaths)
	assert.Equal(t, 0, byID["lurker"].Kills, "zero-kill participant still listed")
}

// TestRecordLeaveIgnoresNonParticipants tests that strangers leave no record
func TestRecordLeaveIgnoresNonParticipants(t *testing.T) {
	clock := NewManualClock()
	world := NewWorldWithClock(clock)
	m := NewMatch("room-1", 10, 7*time.Minute, clock)

	m.RecordLeave("ghost", 5, 0, 500)
	assert.Empty(t, m.GetFinalScores(world))
}
