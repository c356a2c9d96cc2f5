package repository

import (
	"context"
	"fmt"

	"minicasino/database"
	"minicasino/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const (
	roundsTable        = "game_rounds"
	colRoundID         = "id"
	colRoundAccountID  = "account_id"
	colRoundGame       = "game"
	colRoundWager      = "wager"
	colRoundChoice     = "choice"
	colRoundOutcome    = "outcome"
	colRoundMultiplier = "multiplier"
	colRoundNetChange  = "net_change"
	colRoundWon        = "won"
	colRoundHistoryID  = "balance_history_id"
	colRoundCreatedAt  = "created_at"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// GameRoundRepository implements the GameRoundRepository interface
type GameRoundRepository struct {
	q queryable
}

// NewGameRoundRepository creates a new game round repository
func NewGameRoundRepository(db *database.DB) *GameRoundRepository {
	return &GameRoundRepository{q: db.Pool}
}

// newGameRoundRepositoryWithTx creates a new game round repository with a transaction
func newGameRoundRepositoryWithTx(tx queryable) *GameRoundRepository {
	return &GameRoundRepository{q: tx}
}

// Create stores a played round
func (r *GameRoundRepository) Create(ctx context.Context, round *models.GameRound) error {
	query := psql.Insert(roundsTable).
		Columns(
			colRoundID, colRoundAccountID, colRoundGame, colRoundWager, colRoundChoice,
			colRoundOutcome, colRoundMultiplier, colRoundNetChange, colRoundWon, colRoundHistoryID,
		).
		Values(
			round.ID, round.AccountID, round.Game, round.Wager, round.Choice,
			round.Outcome, round.Multiplier, round.NetChange, round.Won, round.BalanceHistoryID,
		).
		Suffix("RETURNING " + colRoundCreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build round insert: %w", err)
	}

	if err := r.q.QueryRow(ctx, sqlStr, args...).Scan(&round.CreatedAt); err != nil {
		return fmt.Errorf("failed to create round for account %s: %w", round.AccountID, err)
	}

	return nil
}

// List returns an account's rounds, newest first
func (r *GameRoundRepository) List(ctx context.Context, accountID uuid.UUID, filter models.RoundFilter) ([]*models.GameRound, error) {
	query := psql.Select(
		colRoundID, colRoundAccountID, colRoundGame, colRoundWager, colRoundChoice, colRoundOutcome,
		colRoundMultiplier, colRoundNetChange, colRoundWon, colRoundHistoryID, colRoundCreatedAt,
	).
		From(roundsTable).
		Where(sq.Eq{colRoundAccountID: accountID}).
		OrderBy(colRoundCreatedAt+" DESC", colRoundID)

	if filter.Game != nil {
		query = query.Where(sq.Eq{colRoundGame: *filter.Game})
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build round listing: %w", err)
	}

	rows, err := r.q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var rounds []*models.GameRound
	for rows.Next() {
		var round models.GameRound
		err := rows.Scan(
			&round.ID,
			&round.AccountID,
			&round.Game,
			&round.Wager,
			&round.Choice,
			&round.Outcome,
			&round.Multiplier,
			&round.NetChange,
			&round.Won,
			&round.BalanceHistoryID,
			&round.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, &round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rounds: %w", err)
	}

	return rounds, nil
}
