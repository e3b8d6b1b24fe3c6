package game

import (
	"sync"
	"time"
)

// Match end reasons.
const (
	EndReasonKillTarget  = "kill_target"
	EndReasonTimeLimit   = "time_limit"
	EndReasonServerError = "server_error"
)

// PlayerScore is one participant's final line in the scoreboard.
type PlayerScore struct {
	PlayerID string `json:"playerId"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
	XP       int    `json:"xp"`
}

// Match is the per-room state machine: Pending → Running → Ended.
//
// participants records every player id that was ever in the match,
// regardless of whether they scored or stayed connected. Final scores are
// produced for all of them; a zero-kill participant still appears.
type Match struct {
	mu sync.Mutex

	RoomID string

	startTime time.Time
	endTime   time.Time
	started   bool
	ended     bool
	endReason string

	playerKills  map[string]int
	participants map[string]struct{}
	// Stats frozen at disconnect for participants no longer in the world.
	departedScores map[string]PlayerScore

	killTarget int
	duration   time.Duration
	clock      Clock
}

// NewMatch creates a pending match for a room.
func NewMatch(roomID string, killTarget int, duration time.Duration, clock Clock) *Match {
	return &Match{
		RoomID:         roomID,
		playerKills:    make(map[string]int),
		participants:   make(map[string]struct{}),
		departedScores: make(map[string]PlayerScore),
		killTarget:     killTarget,
		duration:       duration,
		clock:          clock,
	}
}

// Start transitions Pending → Running and stamps the start time.
func (m *Match) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.startTime = m.clock.Now()
}

// AddParticipant records that a player joined the match at some point.
func (m *Match) AddParticipant(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants[playerID] = struct{}{}
}

// RecordLeave freezes a departing participant's stats so final scores can
// still include them after their PlayerState is released.
func (m *Match) RecordLeave(playerID string, kills, deaths, xp int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.participants[playerID]; !ok {
		return
	}
	m.departedScores[playerID] = PlayerScore{
		PlayerID: playerID,
		Kills:    kills,
		Deaths:   deaths,
		XP:       xp,
	}
}

// RecordKill credits the attacker and reports whether this kill reached the
// kill target and ended the match. Kills after the match has ended are
// ignored.
func (m *Match) RecordKill(attackerID, victimID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ended {
		return false
	}
	m.participants[attackerID] = struct{}{}
	m.participants[victimID] = struct{}{}
	m.playerKills[attackerID]++

	if m.killTarget > 0 && m.playerKills[attackerID] >= m.killTarget {
		m.endLocked(EndReasonKillTarget)
		return true
	}
	return false
}

// CheckTimeLimit ends the match if its duration has elapsed. Returns true
// when this call performed the transition.
func (m *Match) CheckTimeLimit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started || m.ended {
		return false
	}
	if m.clock.Now().Sub(m.startTime) >= m.duration {
		m.endLocked(EndReasonTimeLimit)
		return true
	}
	return false
}

// EndMatch atomically transitions to Ended. Later calls are no-ops; the
// first reason wins.
func (m *Match) EndMatch(reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ended {
		return false
	}
	m.endLocked(reason)
	return true
}

func (m *Match) endLocked(reason string) {
	m.ended = true
	m.endTime = m.clock.Now()
	m.endReason = reason
}

// IsEnded reports whether the match has ended.
func (m *Match) IsEnded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ended
}

// EndReason returns the recorded end reason, empty while running.
func (m *Match) EndReason() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endReason
}

// Kills returns the recorded kill count for a player.
func (m *Match) Kills(playerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playerKills[playerID]
}

// RemainingSeconds returns the whole seconds left on the match timer.
func (m *Match) RemainingSeconds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return int(m.duration.Seconds())
	}
	remaining := m.duration - m.clock.Now().Sub(m.startTime)
	if remaining < 0 {
		remaining = 0
	}
	return int(remaining.Seconds())
}

// DetermineWinners returns every participant with the maximum kill count.
// Ties produce multiple winners.
func (m *Match) DetermineWinners() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	maxKills := 0
	for _, kills := range m.playerKills {
		if kills > maxKills {
			maxKills = kills
		}
	}
	if maxKills == 0 {
		return []string{}
	}
	winners := make([]string, 0, 1)
	for id, kills := range m.playerKills {
		if kills == maxKills {
			winners = append(winners, id)
		}
	}
	return winners
}

// GetFinalScores produces one score per participant — every player that was
// ever in the match, including those with zero kills. Connected players are
// read live from the world; departed ones use their frozen record. The
// result is stable across repeated calls once the match has ended.
func (m *Match) GetFinalScores(world *World) []PlayerScore {
	m.mu.Lock()
	defer m.mu.Unlock()

	scores := make([]PlayerScore, 0, len(m.participants))
	for id := range m.participants {
		if p, ok := world.GetPlayer(id); ok {
			kills, deaths, xp := p.Stats()
			scores = append(scores, PlayerScore{PlayerID: id, Kills: kills, Deaths: deaths, XP: xp})
			continue
		}
		if frozen, ok := m.departedScores[id]; ok {
			scores = append(scores, frozen)
			continue
		}
		scores = append(scores, PlayerScore{PlayerID: id, Kills: m.playerKills[id]})
	}
	return scores
}
