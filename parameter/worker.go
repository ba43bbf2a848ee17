package parameter

// Worker Errands
const (
	// WorkerSpeed is the waypoint advance rate in world units per second
	WorkerSpeed = 20.0

	// WorkerHealth is the starting health of a worker
	WorkerHealth = 100.0

	// WorkerCollectTime is seconds spent picking up a corpse
	WorkerCollectTime = 0.5

	// WorkerDepositTime is seconds spent dropping a corpse at home
	WorkerDepositTime = 0.5
)

// Worker Retry
const (
	// WorkerRetryDelay is seconds a worker waits before re-planning an unreachable leg
	WorkerRetryDelay = 1.0
)
