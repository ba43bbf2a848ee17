package parameter

// Navigation - Path Search
const (
	// NavSearchMaxExpansions caps A* node expansions per query, 0 disables the cap
	NavSearchMaxExpansions = 0

	// NavSearchLegacyDivisor is the Manhattan divisor of the legacy heuristic
	NavSearchLegacyDivisor = 3
)

// Navigation - Movement
const (
	// NavMaxStepCells caps per-tick displacement so no cell is skipped
	NavMaxStepCells = 1.0
)

// Navigation - Barrier Maze Layout
const (
	// LayoutScale is the number of cells per maze node along each axis
	LayoutScale = 10

	// LayoutBraiding is the chance a dead end gets a second opening
	LayoutBraiding = 0.3

	// LayoutMargin keeps this many free cells around every configured structure
	LayoutMargin = 4
)
