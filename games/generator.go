package games

import (
	"fmt"
	"math/rand/v2"

	"minicasino/models"
)

// Source yields uniform integers in [0, n)
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Generator draws outcomes from a randomness source
type Generator struct {
	src Source
}

// NewGenerator creates a generator over src
func NewGenerator(src Source) *Generator {
	return &Generator{src: src}
}

// NewRandomGenerator creates a generator backed by the runtime's
// concurrency-safe random source
func NewRandomGenerator() *Generator {
	return NewGenerator(globalSource{})
}

// Draw produces one outcome for the given game
func (g *Generator) Draw(game models.GameKind) (Outcome, error) {
	switch game {
	case models.GameCoin:
		sides := [2]string{Heads, Tails}
		return Outcome{Game: game, Side: sides[g.src.IntN(len(sides))]}, nil
	case models.GameRoulette:
		return Outcome{Game: game, Number: g.src.IntN(WheelSize)}, nil
	case models.GameSlots:
		var reels Reels
		for i := range reels {
			reels[i] = Symbols[g.src.IntN(len(Symbols))]
		}
		return Outcome{Game: game, Reels: reels}, nil
	}
	return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownGame, game)
}
