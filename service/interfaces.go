package service

import (
	"context"

	"minicasino/events"
	"minicasino/games"
	"minicasino/models"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// Create inserts a new account. Returns ErrDuplicateHandle if the handle is taken.
	Create(ctx context.Context, account *models.Account) error

	// GetByID retrieves an account by id, or nil if it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)

	// GetByIDForUpdate retrieves an account and holds it exclusively until the
	// unit of work ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error)

	// GetByHandle retrieves an account by its handle, or nil if it does not exist
	GetByHandle(ctx context.Context, handle string) (*models.Account, error)

	// UpdateBalance overwrites an account's balance
	UpdateBalance(ctx context.Context, id uuid.UUID, newBalance int64) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry and fills in its id
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByAccount returns the most recent entries for an account, newest first
	GetByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.BalanceHistory, error)
}

// GameRoundRepository defines the interface for played round records
type GameRoundRepository interface {
	// Create stores a played round
	Create(ctx context.Context, round *models.GameRound) error

	// List returns an account's rounds, newest first
	List(ctx context.Context, accountID uuid.UUID, filter models.RoundFilter) ([]*models.GameRound, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups repository calls into one transaction. Events published
// through EventBus are delivered only after Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	GameRoundRepository() GameRoundRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// OutcomeDrawer produces the random outcome of a round
type OutcomeDrawer interface {
	Draw(game models.GameKind) (games.Outcome, error)
}

// PasswordHasher hashes and verifies account secrets
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Compare(hash, secret string) error
}

// AccountService defines the interface for registration and login
type AccountService interface {
	// Register creates an account with a zero balance
	Register(ctx context.Context, handle, secret string) (*models.Account, error)

	// Authenticate checks a handle and secret pair
	Authenticate(ctx context.Context, handle, secret string) (*models.Account, error)

	// GetAccount returns the account with the given id
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// GameService defines the interface for balance-changing operations
type GameService interface {
	// Deposit credits a positive amount to the account
	Deposit(ctx context.Context, accountID uuid.UUID, rawAmount string) (*models.DepositResult, error)

	// PlayCoin wagers on heads or tails
	PlayCoin(ctx context.Context, accountID uuid.UUID, rawWager, rawChoice string) (*models.RoundResult, error)

	// PlayRoulette wagers on the parity of a single-zero wheel
	PlayRoulette(ctx context.Context, accountID uuid.UUID, rawWager, rawChoice string) (*models.RoundResult, error)

	// PlaySlots wagers on three reels
	PlaySlots(ctx context.Context, accountID uuid.UUID, rawWager string) (*models.RoundResult, error)

	// History lists the account's played rounds
	History(ctx context.Context, accountID uuid.UUID, filter models.RoundFilter) ([]*models.GameRound, error)

	// BalanceHistory lists the account's balance changes, newest first
	BalanceHistory(ctx context.Context, accountID uuid.UUID, limit uint64) ([]*models.BalanceHistory, error)
}
