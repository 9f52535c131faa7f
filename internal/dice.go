package internal

// RollDie draws a die roll for the player and maintains the 3-slot streak
// buffer. If the buffer holds three sixes after insertion, it is reset to
// ones and a replacement is drawn from 1-5; the replacement is what the
// caller observes, so three consecutive sixes are never the applied roll.
// intn is the random source (rand.Intn in production, a stub in tests).
func (p *Player) RollDie(intn func(int) int) int {
	roll := intn(6) + 1
	p.pushRoll(roll)

	allSix := true
	for _, v := range p.DiceRolls {
		if v != 6 {
			allSix = false
			break
		}
	}
	if allSix {
		p.DiceRolls = [DiceStreakLength]int{1, 1, 1}
		roll = intn(5) + 1
		p.pushRoll(roll)
	}
	return roll
}

func (p *Player) pushRoll(roll int) {
	copy(p.DiceRolls[:], p.DiceRolls[1:])
	p.DiceRolls[DiceStreakLength-1] = roll
}
