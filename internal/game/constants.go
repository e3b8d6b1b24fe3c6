package game

// Arena dimensions in pixels.
const (
	ArenaWidth  = 1920.0
	ArenaHeight = 1080.0
)

// Player movement and combat tuning.
const (
	PlayerMaxHealth = 100
	PlayerRadius    = 16.0

	PlayerSpeed      = 250.0 // px/s
	SprintMultiplier = 1.5
	PlayerAccel      = 2000.0 // px/s²
	PlayerDecel      = 1600.0 // px/s²
	// Below this speed, deceleration snaps velocity to zero.
	VelocityEpsilon = 5.0
)

// Dodge roll tuning.
const (
	RollSpeed      = 500.0 // px/s, locked for the whole roll
	RollDurationMs = 400
	RollCooldownMs = 1500
)

// Roll end reasons carried in roll:end broadcasts.
const (
	RollEndCompleted     = "completed"
	RollEndWallCollision = "wall_collision"
	RollEndInterrupted   = "interrupted"
)

// Projectile tuning.
const (
	ProjectileLifetimeMs = 3000
	ProjectileRadius     = 4.0
)

// KillXPReward is the experience granted per kill.
const KillXPReward = 100
