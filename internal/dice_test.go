package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queuedIntn feeds RollDie a fixed sequence of die faces. RollDie asks
// for intn(6) on a normal draw and intn(5) on a streak replacement; the
// queue holds the face values to produce, 1-based.
func queuedIntn(t *testing.T, faces ...int) func(int) int {
	t.Helper()
	return func(n int) int {
		require.NotEmpty(t, faces, "dice queue exhausted")
		face := faces[0]
		faces = faces[1:]
		require.LessOrEqual(t, face, n, "face %d cannot come from intn(%d)", face, n)
		return face - 1
	}
}

func TestRollDieShiftsBuffer(t *testing.T) {
	p := NewPlayer(Identity{Email: "a@x.dev"}, ColorBlue, true)
	assert.Equal(t, [DiceStreakLength]int{1, 1, 1}, p.DiceRolls)

	intn := queuedIntn(t, 4, 2, 6)
	assert.Equal(t, 4, p.RollDie(intn))
	assert.Equal(t, [DiceStreakLength]int{1, 1, 4}, p.DiceRolls)
	assert.Equal(t, 2, p.RollDie(intn))
	assert.Equal(t, [DiceStreakLength]int{1, 4, 2}, p.DiceRolls)
	assert.Equal(t, 6, p.RollDie(intn))
	assert.Equal(t, [DiceStreakLength]int{4, 2, 6}, p.DiceRolls)
}

func TestRollDieThirdSixIsReplaced(t *testing.T) {
	p := NewPlayer(Identity{Email: "a@x.dev"}, ColorBlue, true)

	intn := queuedIntn(t, 6, 6, 6, 3)
	assert.Equal(t, 6, p.RollDie(intn))
	assert.Equal(t, 6, p.RollDie(intn))

	// Third raw six trips the guard: the buffer resets and the redraw
	// from 1-5 becomes the effective roll.
	got := p.RollDie(intn)
	assert.Equal(t, 3, got)
	assert.Equal(t, [DiceStreakLength]int{1, 1, 3}, p.DiceRolls)
}

func TestRollDieNonConsecutiveSixesPass(t *testing.T) {
	p := NewPlayer(Identity{Email: "a@x.dev"}, ColorBlue, true)

	intn := queuedIntn(t, 6, 6, 2, 6, 6)
	rolls := []int{p.RollDie(intn), p.RollDie(intn), p.RollDie(intn), p.RollDie(intn), p.RollDie(intn)}
	assert.Equal(t, []int{6, 6, 2, 6, 6}, rolls)
}

func TestRollDieNeverYieldsThreeConsecutiveSixes(t *testing.T) {
	p := NewPlayer(Identity{Email: "a@x.dev"}, ColorBlue, true)

	// Adversarial source: always the highest allowed face.
	intn := func(n int) int { return n - 1 }

	var effective []int
	for i := 0; i < 200; i++ {
		effective = append(effective, p.RollDie(intn))
	}
	for i := 2; i < len(effective); i++ {
		if effective[i-2] == 6 && effective[i-1] == 6 {
			assert.NotEqual(t, 6, effective[i], "three sixes in a row at index %d", i)
		}
	}
}
