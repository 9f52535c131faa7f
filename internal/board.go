package internal

// Board geometry. GlobalPosition is the single source of truth for mapping
// a token's colour-relative position onto the shared circular track;
// movement and capture logic must never recompute it independently.

const (
	// GlobalPosHome marks a token still at home (relPos 0).
	GlobalPosHome = -1
	// GlobalPosNone marks a token off the shared track: home stretch or
	// finished (relPos > 51).
	GlobalPosNone = 0
)

// Each colour starts 13 cells apart on the 52-cell ring.
var colorStartPositions = map[Color]int{
	ColorBlue:   1,
	ColorRed:    14,
	ColorGreen:  27,
	ColorYellow: 40,
}

// Safe cells, including every colour's start cell. Tokens here can never
// be captured.
var safeCells = [...]int{1, 9, 14, 22, 27, 35, 40, 48}

// GlobalPosition maps (relPos, color) to a cell on the shared 52-cell
// track. relPos 1 is the colour's own start cell.
func GlobalPosition(relPos int, color Color) int {
	if relPos == 0 {
		return GlobalPosHome
	}
	if relPos > LastSharedRelPos {
		return GlobalPosNone
	}
	start := colorStartPositions[color]
	return ((start + relPos - 2) % TrackLength) + 1
}

func StartCell(color Color) int {
	return colorStartPositions[color]
}

func IsSafeCell(globalPos int) bool {
	for _, cell := range safeCells {
		if cell == globalPos {
			return true
		}
	}
	return false
}
