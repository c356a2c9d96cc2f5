package service

import (
	"context"
	"errors"
	"fmt"

	"minicasino/events"
	"minicasino/games"
	"minicasino/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultHistoryLimit uint64 = 20
	MaxHistoryLimit     uint64 = 100
)

type gameService struct {
	uowFactory UnitOfWorkFactory
	drawer     OutcomeDrawer
}

// NewGameService creates a new game service
func NewGameService(uowFactory UnitOfWorkFactory, drawer OutcomeDrawer) GameService {
	return &gameService{
		uowFactory: uowFactory,
		drawer:     drawer,
	}
}

// parsePositiveAmount turns raw form input into cents, rejecting anything
// that is not a strictly positive amount.
func parsePositiveAmount(raw, field string) (int64, error) {
	amount, err := models.ParseAmount(raw)
	switch {
	case errors.Is(err, models.ErrAmountNotNumeric):
		return 0, newValidationError(ErrInvalidAmount, fmt.Sprintf("%s must be a number", field))
	case errors.Is(err, models.ErrAmountPrecision):
		return 0, newValidationError(ErrInvalidAmount, fmt.Sprintf("%s can have at most two decimal places", field))
	case errors.Is(err, models.ErrAmountOutOfRange):
		return 0, newValidationError(ErrInvalidAmount, fmt.Sprintf("%s is too large", field))
	case err != nil:
		return 0, newValidationError(ErrInvalidAmount, fmt.Sprintf("%s is invalid", field))
	}

	if amount <= 0 {
		return 0, newValidationError(ErrNonPositiveAmount, fmt.Sprintf("%s must be greater than zero", field))
	}
	return amount, nil
}

func (s *gameService) Deposit(ctx context.Context, accountID uuid.UUID, rawAmount string) (*models.DepositResult, error) {
	amount, err := parsePositiveAmount(rawAmount, "Deposit amount")
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin deposit", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, persistenceError("load account", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	_, err = applyLedger(ctx, uow, ledgerEntry{
		account:         account,
		amount:          amount,
		multiplier:      1,
		transactionType: models.TransactionTypeDeposit,
		metadata:        map[string]any{"amount": amount},
	})
	if errors.Is(err, models.ErrAmountOutOfRange) {
		return nil, newValidationError(ErrInvalidAmount, "Deposit would exceed the maximum balance")
	}
	if err != nil {
		return nil, persistenceError("apply deposit", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("commit deposit", err)
	}

	log.WithFields(log.Fields{
		"accountID":  accountID,
		"amount":     amount,
		"newBalance": account.Balance,
	}).Info("Deposit applied")

	return &models.DepositResult{Amount: amount, NewBalance: account.Balance}, nil
}

func (s *gameService) PlayCoin(ctx context.Context, accountID uuid.UUID, rawWager, rawChoice string) (*models.RoundResult, error) {
	return s.play(ctx, accountID, models.GameCoin, rawWager, rawChoice)
}

func (s *gameService) PlayRoulette(ctx context.Context, accountID uuid.UUID, rawWager, rawChoice string) (*models.RoundResult, error) {
	return s.play(ctx, accountID, models.GameRoulette, rawWager, rawChoice)
}

func (s *gameService) PlaySlots(ctx context.Context, accountID uuid.UUID, rawWager string) (*models.RoundResult, error) {
	return s.play(ctx, accountID, models.GameSlots, rawWager, "")
}

// play runs one round: validate, lock the account, draw, pay out, record.
func (s *gameService) play(ctx context.Context, accountID uuid.UUID, game models.GameKind, rawWager, rawChoice string) (*models.RoundResult, error) {
	wager, err := parsePositiveAmount(rawWager, "Wager")
	if err != nil {
		return nil, err
	}

	choice, err := games.ParseChoice(game, rawChoice)
	if err != nil {
		if errors.Is(err, games.ErrUnknownGame) {
			return nil, err
		}
		return nil, newValidationError(ErrInvalidChoice, choiceMessage(game))
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin round", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, persistenceError("load account", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if wager > account.Balance {
		return nil, newValidationError(ErrInsufficientBalance, fmt.Sprintf(
			"Wager of %s exceeds your balance of %s",
			models.FormatAmount(wager), models.FormatAmount(account.Balance)))
	}

	outcome, err := s.drawer.Draw(game)
	if err != nil {
		return nil, fmt.Errorf("failed to draw outcome: %w", err)
	}

	multiplier, err := games.Multiplier(outcome, choice)
	if err != nil {
		return nil, fmt.Errorf("failed to compute payout: %w", err)
	}
	won := multiplier > 0

	transactionType, err := models.TransactionTypeForRound(game, won)
	if err != nil {
		return nil, err
	}

	round := &models.GameRound{
		ID:         uuid.New(),
		AccountID:  account.ID,
		Game:       game,
		Wager:      wager,
		Choice:     choice,
		Outcome:    outcome.String(),
		Multiplier: multiplier,
		Won:        won,
	}

	history, err := applyLedger(ctx, uow, ledgerEntry{
		account:         account,
		amount:          wager,
		multiplier:      multiplier,
		transactionType: transactionType,
		metadata: map[string]any{
			"game":       string(game),
			"wager":      wager,
			"choice":     choice,
			"outcome":    round.Outcome,
			"multiplier": multiplier,
		},
		roundID: &round.ID,
	})
	if errors.Is(err, models.ErrAmountOutOfRange) {
		return nil, newValidationError(ErrInvalidAmount, "Winnings would exceed the maximum balance")
	}
	if err != nil {
		return nil, persistenceError("apply round", err)
	}

	round.NetChange = history.ChangeAmount
	round.BalanceHistoryID = &history.ID
	if err := uow.GameRoundRepository().Create(ctx, round); err != nil {
		return nil, persistenceError("record round", err)
	}

	uow.EventBus().Publish(events.GamePlayedEvent{
		RoundID:   round.ID,
		AccountID: account.ID,
		Handle:    account.Handle,
		Game:      game,
		Outcome:   round.Outcome,
		Wager:     wager,
		NetChange: round.NetChange,
		Won:       won,
	})

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("commit round", err)
	}

	log.WithFields(log.Fields{
		"accountID":  account.ID,
		"game":       game,
		"wager":      wager,
		"outcome":    round.Outcome,
		"netChange":  round.NetChange,
		"newBalance": account.Balance,
	}).Info("Round settled")

	return &models.RoundResult{
		RoundID:    round.ID,
		Game:       game,
		Outcome:    round.Outcome,
		Choice:     choice,
		Won:        won,
		Wager:      wager,
		Multiplier: multiplier,
		NetChange:  round.NetChange,
		NewBalance: account.Balance,
	}, nil
}

func choiceMessage(game models.GameKind) string {
	switch game {
	case models.GameCoin:
		return "Choose heads or tails"
	case models.GameRoulette:
		return "Choose even or odd"
	}
	return "Invalid choice"
}

func (s *gameService) History(ctx context.Context, accountID uuid.UUID, filter models.RoundFilter) ([]*models.GameRound, error) {
	if filter.Game != nil && !filter.Game.Valid() {
		return nil, newValidationError(games.ErrUnknownGame, fmt.Sprintf("Unknown game %q", *filter.Game))
	}
	filter.Limit = historyLimit(filter.Limit)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin history", err)
	}
	defer uow.Rollback()

	rounds, err := uow.GameRoundRepository().List(ctx, accountID, filter)
	if err != nil {
		return nil, persistenceError("list rounds", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("commit history", err)
	}
	return rounds, nil
}

func (s *gameService) BalanceHistory(ctx context.Context, accountID uuid.UUID, limit uint64) ([]*models.BalanceHistory, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin balance history", err)
	}
	defer uow.Rollback()

	entries, err := uow.BalanceHistoryRepository().GetByAccount(ctx, accountID, int(historyLimit(limit)))
	if err != nil {
		return nil, persistenceError("list balance history", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("commit balance history", err)
	}
	return entries, nil
}

// historyLimit applies the default and the cap to a requested page size
func historyLimit(limit uint64) uint64 {
	if limit == 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
