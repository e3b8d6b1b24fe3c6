package game

import "time"

// Settings carries the room simulation knobs. The config package maps
// environment options onto this struct; tests build it directly.
type Settings struct {
	TickRateHz          int
	BroadcastDeltaHz    int
	BroadcastSnapshotHz int

	MatchDuration time.Duration
	KillTarget    int

	RoomCapacity int

	RespawnDelay      time.Duration
	PickupRadius      float64
	CrateRespawnDelay time.Duration

	// TickObserver, when set, receives the wall time of each tick.
	TickObserver func(time.Duration)
}

// DefaultSettings returns the production defaults.
func DefaultSettings() Settings {
	return Settings{
		TickRateHz:          60,
		BroadcastDeltaHz:    20,
		BroadcastSnapshotHz: 1,
		MatchDuration:       420 * time.Second,
		KillTarget:          10,
		RoomCapacity:        8,
		RespawnDelay:        3 * time.Second,
		PickupRadius:        50,
		CrateRespawnDelay:   15 * time.Second,
	}
}
