package parameter

// Enemy Spawn
const (
	// EnemyBaseHealth is scaled by (ratio + EnemyRatioOffset) at spawn
	EnemyBaseHealth = 100.0

	// EnemyBaseSize is scaled by (ratio + EnemyRatioOffset) at spawn
	EnemyBaseSize = 20.0

	// EnemyRatioOffset shifts the random ratio so stats land in [0.5x, 1.5x)
	EnemyRatioOffset = 0.5

	// EnemySpeed is the field-following speed in world units per second
	EnemySpeed = 15.0
)

// Structures
const (
	// BaseMaxHealth is the default health of the home structure
	BaseMaxHealth = 1000.0

	// Home footprint in cells, covering world [-36,36] x [-52,52]
	BaseCellX      = 116
	BaseCellY      = 112
	BaseCellWidth  = 18
	BaseCellHeight = 25
)

// Enemy Waves
const (
	// EnemySpawnInterval is seconds between automatic spawns, 0 disables the timer
	EnemySpawnInterval = 2.0
)
