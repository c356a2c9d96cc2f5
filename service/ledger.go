package service

import (
	"context"
	"fmt"
	"math"

	"minicasino/models"

	"github.com/google/uuid"
)

// NetChange is the signed balance delta of a wager at the given multiplier.
// A multiplier of -1 takes exactly the wager.
func NetChange(wager, multiplier int64) (int64, error) {
	if wager <= 0 {
		return 0, ErrNonPositiveAmount
	}
	factor := multiplier
	if factor < 0 {
		factor = -factor
	}
	if factor != 0 && wager > math.MaxInt64/factor {
		return 0, models.ErrAmountOutOfRange
	}
	return wager * multiplier, nil
}

// ApplyLedger returns balance + wager*multiplier, refusing any result that
// would be negative or overflow.
func ApplyLedger(balance, wager, multiplier int64) (int64, error) {
	change, err := NetChange(wager, multiplier)
	if err != nil {
		return 0, err
	}
	if change > 0 && balance > math.MaxInt64-change {
		return 0, models.ErrAmountOutOfRange
	}

	newBalance := balance + change
	if newBalance < 0 {
		return 0, ErrInsufficientBalance
	}
	return newBalance, nil
}

// ledgerEntry describes one balance mutation inside an open unit of work
type ledgerEntry struct {
	account         *models.Account
	amount          int64
	multiplier      int64
	transactionType models.TransactionType
	metadata        map[string]any
	roundID         *uuid.UUID
}

// applyLedger writes the new balance and its history row. The account must
// have been loaded with GetByIDForUpdate in the same unit of work.
func applyLedger(ctx context.Context, uow UnitOfWork, entry ledgerEntry) (*models.BalanceHistory, error) {
	before := entry.account.Balance

	after, err := ApplyLedger(before, entry.amount, entry.multiplier)
	if err != nil {
		return nil, err
	}

	if err := uow.AccountRepository().UpdateBalance(ctx, entry.account.ID, after); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	history := &models.BalanceHistory{
		AccountID:           entry.account.ID,
		BalanceBefore:       before,
		BalanceAfter:        after,
		ChangeAmount:        after - before,
		TransactionType:     entry.transactionType,
		TransactionMetadata: entry.metadata,
		RelatedRoundID:      entry.roundID,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	entry.account.Balance = after
	return history, nil
}
