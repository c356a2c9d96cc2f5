package models

import (
	"time"

	"github.com/google/uuid"
)

// GameKind identifies one of the mini-games
type GameKind string

const (
	GameCoin     GameKind = "coin"
	GameRoulette GameKind = "roulette"
	GameSlots    GameKind = "slots"
)

// GameKinds lists the playable games in display order
var GameKinds = []GameKind{GameCoin, GameRoulette, GameSlots}

// Valid reports whether k names a known game
func (k GameKind) Valid() bool {
	switch k {
	case GameCoin, GameRoulette, GameSlots:
		return true
	}
	return false
}

// GameRound is a persisted record of one played round
type GameRound struct {
	ID               uuid.UUID `db:"id"`
	AccountID        uuid.UUID `db:"account_id"`
	Game             GameKind  `db:"game"`
	Wager            int64     `db:"wager"`
	Choice           string    `db:"choice"`
	Outcome          string    `db:"outcome"`
	Multiplier       int64     `db:"multiplier"`
	NetChange        int64     `db:"net_change"`
	Won              bool      `db:"won"`
	BalanceHistoryID *int64    `db:"balance_history_id"`
	CreatedAt        time.Time `db:"created_at"`
}

// RoundFilter narrows a round history listing
type RoundFilter struct {
	Game  *GameKind
	Limit uint64
}

// RoundResult represents the outcome of a round (returned to the player)
type RoundResult struct {
	RoundID    uuid.UUID
	Game       GameKind
	Outcome    string
	Choice     string
	Won        bool
	Wager      int64
	Multiplier int64
	NetChange  int64
	NewBalance int64
}

// DepositResult represents the outcome of a deposit (returned to the player)
type DepositResult struct {
	Amount     int64
	NewBalance int64
}
