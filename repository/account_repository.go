package repository

import (
	"context"
	"errors"
	"fmt"

	"minicasino/database"
	"minicasino/models"
	"minicasino/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `id, handle, password_hash, balance, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Handle,
		&account.PasswordHash,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, handle, password_hash, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		account.ID,
		account.Handle,
		account.PasswordHash,
		account.Balance,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return service.ErrDuplicateHandle
	}
	if err != nil {
		return fmt.Errorf("failed to create account %q: %w", account.Handle, err)
	}

	return nil
}

// GetByID retrieves an account by id
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}

	return account, nil
}

// GetByIDForUpdate retrieves an account and locks its row until the
// surrounding transaction ends. Concurrent wagers on the same account queue
// here.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", id, err)
	}

	return account, nil
}

// GetByHandle retrieves an account by its handle
func (r *AccountRepository) GetByHandle(ctx context.Context, handle string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE handle = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, handle))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by handle %q: %w", handle, err)
	}

	return account, nil
}

// UpdateBalance overwrites an account's balance
func (r *AccountRepository) UpdateBalance(ctx context.Context, id uuid.UUID, newBalance int64) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, newBalance, id)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", id)
	}

	return nil
}
