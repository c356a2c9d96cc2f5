package memory

import (
	"context"
	"fmt"
	"time"

	"minicasino/models"
	"minicasino/service"

	"github.com/google/uuid"
)

type accountRepository struct {
	uow *unitOfWork
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	store := r.uow.store
	store.mu.RLock()
	_, taken := store.handles[account.Handle]
	store.mu.RUnlock()
	if taken {
		return service.ErrDuplicateHandle
	}
	for _, staged := range r.uow.pending.newAccounts {
		if staged.Handle == account.Handle {
			return service.ErrDuplicateHandle
		}
	}

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.uow.pending.newAccounts = append(r.uow.pending.newAccounts, *account)
	return nil
}

// lookup returns the account as this unit of work sees it
func (r *accountRepository) lookup(id uuid.UUID) *models.Account {
	var found *models.Account

	store := r.uow.store
	store.mu.RLock()
	if account, ok := store.accounts[id]; ok {
		found = &account
	}
	store.mu.RUnlock()

	for _, staged := range r.uow.pending.newAccounts {
		if staged.ID == id {
			account := staged
			found = &account
		}
	}
	if found != nil {
		if balance, ok := r.uow.pending.balances[id]; ok {
			found.Balance = balance
		}
	}
	return found
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return r.lookup(id), nil
}

func (r *accountRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if !r.uow.holds(id) {
		if err := r.uow.store.acquire(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to lock account %s: %w", id, err)
		}
		r.uow.held = append(r.uow.held, id)
	}
	return r.lookup(id), nil
}

func (r *accountRepository) GetByHandle(ctx context.Context, handle string) (*models.Account, error) {
	store := r.uow.store
	store.mu.RLock()
	id, ok := store.handles[handle]
	store.mu.RUnlock()
	if ok {
		return r.lookup(id), nil
	}

	for _, staged := range r.uow.pending.newAccounts {
		if staged.Handle == handle {
			return r.lookup(staged.ID), nil
		}
	}
	return nil, nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, id uuid.UUID, newBalance int64) error {
	if r.lookup(id) == nil {
		return fmt.Errorf("account %s not found", id)
	}
	if newBalance < 0 {
		return fmt.Errorf("balance of account %s cannot be negative", id)
	}
	r.uow.pending.balances[id] = newBalance
	return nil
}

type balanceHistoryRepository struct {
	uow *unitOfWork
}

func (r *balanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	history.ID = r.uow.store.nextHistoryID.Add(1)
	history.CreatedAt = time.Now().UTC()
	r.uow.pending.history = append(r.uow.pending.history, *history)
	return nil
}

func (r *balanceHistoryRepository) GetByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.BalanceHistory, error) {
	store := r.uow.store
	store.mu.RLock()
	defer store.mu.RUnlock()

	var result []*models.BalanceHistory
	for i := len(store.history) - 1; i >= 0 && len(result) < limit; i-- {
		if store.history[i].AccountID == accountID {
			entry := store.history[i]
			result = append(result, &entry)
		}
	}
	return result, nil
}

type gameRoundRepository struct {
	uow *unitOfWork
}

func (r *gameRoundRepository) Create(ctx context.Context, round *models.GameRound) error {
	round.CreatedAt = time.Now().UTC()
	r.uow.pending.rounds = append(r.uow.pending.rounds, *round)
	return nil
}

func (r *gameRoundRepository) List(ctx context.Context, accountID uuid.UUID, filter models.RoundFilter) ([]*models.GameRound, error) {
	store := r.uow.store
	store.mu.RLock()
	defer store.mu.RUnlock()

	var result []*models.GameRound
	for i := len(store.rounds) - 1; i >= 0; i-- {
		if filter.Limit > 0 && uint64(len(result)) >= filter.Limit {
			break
		}
		round := store.rounds[i]
		if round.AccountID != accountID {
			continue
		}
		if filter.Game != nil && round.Game != *filter.Game {
			continue
		}
		result = append(result, &round)
	}
	return result, nil
}
