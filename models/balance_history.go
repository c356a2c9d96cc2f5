package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeDeposit      TransactionType = "deposit"
	TransactionTypeCoinWin      TransactionType = "coin_win"
	TransactionTypeCoinLoss     TransactionType = "coin_loss"
	TransactionTypeRouletteWin  TransactionType = "roulette_win"
	TransactionTypeRouletteLoss TransactionType = "roulette_loss"
	TransactionTypeSlotsWin     TransactionType = "slots_win"
	TransactionTypeSlotsLoss    TransactionType = "slots_loss"
)

// ErrUnknownGameKind is returned for a game without ledger transaction types
var ErrUnknownGameKind = errors.New("unknown game kind")

// TransactionTypeForRound returns the ledger transaction type for a played round
func TransactionTypeForRound(game GameKind, won bool) (TransactionType, error) {
	switch game {
	case GameCoin:
		if won {
			return TransactionTypeCoinWin, nil
		}
		return TransactionTypeCoinLoss, nil
	case GameRoulette:
		if won {
			return TransactionTypeRouletteWin, nil
		}
		return TransactionTypeRouletteLoss, nil
	case GameSlots:
		if won {
			return TransactionTypeSlotsWin, nil
		}
		return TransactionTypeSlotsLoss, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGameKind, game)
}

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	AccountID           uuid.UUID       `db:"account_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedRoundID      *uuid.UUID      `db:"related_round_id"`
	CreatedAt           time.Time       `db:"created_at"`
}
