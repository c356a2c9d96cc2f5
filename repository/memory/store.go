// Package memory is an in-process implementation of the unit of work and
// repositories. It backs STORAGE_DRIVER=memory and the HTTP tests. Writes
// are staged per unit of work and applied on Commit; GetByIDForUpdate holds
// a per-account lock until the unit of work ends.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"minicasino/models"
	"minicasino/service"

	"github.com/google/uuid"
)

// Store holds committed state shared by all units of work
type Store struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]models.Account
	handles  map[string]uuid.UUID
	history  []models.BalanceHistory
	rounds   []models.GameRound

	locksMu sync.Mutex
	locks   map[uuid.UUID]chan struct{}

	nextHistoryID atomic.Int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]models.Account),
		handles:  make(map[string]uuid.UUID),
		locks:    make(map[uuid.UUID]chan struct{}),
	}
}

// lockFor returns the lock channel of an account, creating it on first use
func (s *Store) lockFor(id uuid.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = make(chan struct{}, 1)
		s.locks[id] = lock
	}
	return lock
}

// acquire blocks until the account lock is free or ctx is done
func (s *Store) acquire(ctx context.Context, id uuid.UUID) error {
	select {
	case s.lockFor(id) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release(id uuid.UUID) {
	<-s.lockFor(id)
}

// Ping always succeeds; it lets the store stand in for a database health check
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// changes is everything one unit of work wants to write
type changes struct {
	newAccounts []models.Account
	balances    map[uuid.UUID]int64
	history     []models.BalanceHistory
	rounds      []models.GameRound
}

func newChanges() *changes {
	return &changes{balances: make(map[uuid.UUID]int64)}
}

// apply commits staged changes. The handle check is repeated here because
// another unit of work may have registered the same handle since staging.
func (s *Store) apply(c *changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range c.newAccounts {
		if _, taken := s.handles[account.Handle]; taken {
			return service.ErrDuplicateHandle
		}
	}

	now := time.Now().UTC()
	for _, account := range c.newAccounts {
		s.accounts[account.ID] = account
		s.handles[account.Handle] = account.ID
	}
	for id, balance := range c.balances {
		account := s.accounts[id]
		account.Balance = balance
		account.UpdatedAt = now
		s.accounts[id] = account
	}
	s.history = append(s.history, c.history...)
	s.rounds = append(s.rounds, c.rounds...)

	return nil
}
