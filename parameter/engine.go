package parameter

import "time"

// Simulation Loop Timing
const (
	// TickInterval is the fixed simulation step (~60 ticks per second)
	TickInterval = 16 * time.Millisecond

	// FrameUpdateInterval is the viewer redraw interval
	FrameUpdateInterval = 33 * time.Millisecond

	// FeedBroadcastEvery is the number of ticks between snapshot broadcasts
	FeedBroadcastEvery = 6
)

// World Geometry
const (
	// WorldExtent is the half-size of the battlefield, world spans [-WorldExtent, WorldExtent] on both axes
	WorldExtent = 500.0

	// CellSize is the quantization step in world units per grid cell
	CellSize = 4.0
)

// GridSide returns the number of cells per axis for a given extent and cell size
// 500/4 yields 251 cells: [-500, 500] inclusive of the far edge
func GridSide(extent, cellSize float64) int {
	return int(2*extent/cellSize) + 1
}

// Feed Server
const (
	// FeedAddr is the default listen address of the snapshot server
	FeedAddr = "127.0.0.1:8750"

	// FeedWriteTimeout bounds one websocket write to a slow subscriber
	FeedWriteTimeout = 2 * time.Second

	// FeedSendBuffer is the per-subscriber queue of pending snapshots
	FeedSendBuffer = 4
)
