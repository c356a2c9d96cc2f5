package memory

import (
	"context"
	"fmt"

	"minicasino/events"
	"minicasino/service"

	"github.com/google/uuid"
)

type unitOfWorkFactory struct {
	store    *Store
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a UnitOfWork factory over the store
func NewUnitOfWorkFactory(store *Store, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{store: store, eventBus: eventBus}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		store:            f.store,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

type unitOfWork struct {
	store            *Store
	ctx              context.Context
	active           bool
	pending          *changes
	held             []uuid.UUID
	transactionalBus *events.TransactionalBus
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}
	u.ctx = ctx
	u.active = true
	u.pending = newChanges()
	return nil
}

func (u *unitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.store.apply(u.pending)
	u.finish()
	if err != nil {
		u.transactionalBus.Discard()
		return err
	}

	u.transactionalBus.Flush(u.ctx)
	return nil
}

func (u *unitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.finish()
	u.transactionalBus.Discard()
	return nil
}

// finish releases held account locks and drops staged state
func (u *unitOfWork) finish() {
	for _, id := range u.held {
		u.store.release(id)
	}
	u.held = nil
	u.pending = nil
	u.active = false
}

func (u *unitOfWork) mustBeActive() {
	if !u.active {
		panic("unit of work not started - call Begin() first")
	}
}

func (u *unitOfWork) holds(id uuid.UUID) bool {
	for _, held := range u.held {
		if held == id {
			return true
		}
	}
	return false
}

func (u *unitOfWork) AccountRepository() service.AccountRepository {
	u.mustBeActive()
	return &accountRepository{uow: u}
}

func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	u.mustBeActive()
	return &balanceHistoryRepository{uow: u}
}

func (u *unitOfWork) GameRoundRepository() service.GameRoundRepository {
	u.mustBeActive()
	return &gameRoundRepository{uow: u}
}

func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
