// Package games holds the outcome generator and payout rules for the
// mini-games. Nothing here touches storage; every function is pure given its
// randomness source.
package games

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"minicasino/models"
)

// Coin sides
const (
	Heads = "heads"
	Tails = "tails"
)

// Roulette parity bets
const (
	Even = "even"
	Odd  = "odd"
)

// WheelSize is the number of pockets on the single-zero wheel (0-36)
const WheelSize = 37

// Symbol is one reel symbol of the slot machine
type Symbol string

const (
	Gem    Symbol = "gem"
	Cherry Symbol = "cherry"
	Lemon  Symbol = "lemon"
)

// Symbols is the reel alphabet; every reel draws uniformly from it
var Symbols = []Symbol{Gem, Cherry, Lemon}

// Reels is the ordered result of the three slot reels
type Reels [3]Symbol

func (r Reels) String() string {
	return fmt.Sprintf("%s %s %s", r[0], r[1], r[2])
}

// Outcome is the random result of one round
type Outcome struct {
	Game   models.GameKind
	Side   string // coin
	Number int    // roulette
	Reels  Reels  // slots
}

// String renders the outcome the way it is stored on the round record
func (o Outcome) String() string {
	switch o.Game {
	case models.GameCoin:
		return o.Side
	case models.GameRoulette:
		return strconv.Itoa(o.Number)
	case models.GameSlots:
		return o.Reels.String()
	}
	return ""
}

var (
	ErrUnknownGame   = errors.New("unknown game")
	ErrInvalidChoice = errors.New("invalid choice")
)

// choiceAliases accepts the labels used by the old Portuguese forms.
var choiceAliases = map[string]string{
	"cara":  Heads,
	"coroa": Tails,
	"par":   Even,
	"impar": Odd,
	"ímpar": Odd,
}

// ParseChoice normalizes the player's declared choice for a game. Slots take
// no choice and always yield "".
func ParseChoice(game models.GameKind, raw string) (string, error) {
	choice := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := choiceAliases[choice]; ok {
		choice = alias
	}

	switch game {
	case models.GameCoin:
		if choice == Heads || choice == Tails {
			return choice, nil
		}
		return "", fmt.Errorf("%w: %q is not heads or tails", ErrInvalidChoice, raw)
	case models.GameRoulette:
		if choice == Even || choice == Odd {
			return choice, nil
		}
		return "", fmt.Errorf("%w: %q is not even or odd", ErrInvalidChoice, raw)
	case models.GameSlots:
		return "", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownGame, game)
}
