package games

import (
	"fmt"

	"minicasino/models"
)

const (
	// WinMultiplier is the net multiplier of an even-money win (coin, roulette)
	WinMultiplier int64 = 1
	// LossMultiplier takes exactly the wager
	LossMultiplier int64 = -1
)

// SlotsPayouts maps an exact reel triple to its net multiplier. Any triple not
// listed loses the wager.
var SlotsPayouts = map[Reels]int64{
	{Gem, Gem, Gem}:          10,
	{Cherry, Cherry, Cherry}: 5,
	{Lemon, Lemon, Lemon}:    3,
}

// Multiplier returns the signed net multiplier for an outcome and the
// player's (already normalized) choice.
func Multiplier(outcome Outcome, choice string) (int64, error) {
	switch outcome.Game {
	case models.GameCoin:
		if choice == outcome.Side {
			return WinMultiplier, nil
		}
		return LossMultiplier, nil
	case models.GameRoulette:
		// Zero is the house pocket: it loses for both parities.
		if outcome.Number == 0 {
			return LossMultiplier, nil
		}
		parity := Odd
		if outcome.Number%2 == 0 {
			parity = Even
		}
		if choice == parity {
			return WinMultiplier, nil
		}
		return LossMultiplier, nil
	case models.GameSlots:
		if m, ok := SlotsPayouts[outcome.Reels]; ok {
			return m, nil
		}
		return LossMultiplier, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownGame, outcome.Game)
}
