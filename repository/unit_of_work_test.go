package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"minicasino/events"
	"minicasino/games"
	"minicasino/models"
	"minicasino/repository/testutil"
	"minicasino/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alwaysLose draws a coin side the player never picks in these tests
type alwaysLose struct{}

func (alwaysLose) Draw(game models.GameKind) (games.Outcome, error) {
	return games.Outcome{Game: game, Side: games.Tails}, nil
}

func TestUnitOfWork_EventsFollowTransactionOutcome(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	received := make(chan events.BalanceChangeEvent, 4)
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		received <- e.(events.BalanceChangeEvent)
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	account := testutil.CreateTestAccount("events")
	require.NoError(t, NewAccountRepository(testDB.DB).Create(ctx, account))

	t.Run("rollback discards", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.AccountRepository().UpdateBalance(ctx, account.ID, 500))
		require.NoError(t, service.RecordBalanceChange(ctx, uow, &models.BalanceHistory{
			AccountID:       account.ID,
			BalanceAfter:    500,
			ChangeAmount:    500,
			TransactionType: models.TransactionTypeDeposit,
		}))
		require.NoError(t, uow.Rollback())

		select {
		case e := <-received:
			t.Fatalf("unexpected event after rollback: %+v", e)
		case <-time.After(200 * time.Millisecond):
		}

		stored, err := NewAccountRepository(testDB.DB).GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stored.Balance)
	})

	t.Run("commit flushes", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.AccountRepository().UpdateBalance(ctx, account.ID, 700))
		require.NoError(t, service.RecordBalanceChange(ctx, uow, &models.BalanceHistory{
			AccountID:       account.ID,
			BalanceAfter:    700,
			ChangeAmount:    700,
			TransactionType: models.TransactionTypeDeposit,
		}))
		require.NoError(t, uow.Commit())

		select {
		case e := <-received:
			assert.Equal(t, account.ID, e.AccountID)
			assert.Equal(t, int64(700), e.NewBalance)
		case <-time.After(2 * time.Second):
			t.Fatal("balance change event was not delivered")
		}
	})
}

// TestGameService_ConcurrentWagersSerialize fires more losing wagers than the
// balance can cover. Row locks must let exactly as many succeed as the
// balance allows, with no lost update.
func TestGameService_ConcurrentWagersSerialize(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	gameService := service.NewGameService(factory, alwaysLose{})

	account := testutil.CreateTestAccount("racer")
	require.NoError(t, NewAccountRepository(testDB.DB).Create(ctx, account))
	_, err := gameService.Deposit(ctx, account.ID, "10")
	require.NoError(t, err)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gameService.PlayCoin(ctx, account.ID, "1", "heads")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case service.IsValidationError(err):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded, fmt.Sprintf("rejected=%d", rejected))
	assert.Equal(t, attempts-10, rejected)

	stored, err := NewAccountRepository(testDB.DB).GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Balance)

	history, err := NewBalanceHistoryRepository(testDB.DB).GetByAccount(ctx, account.ID, 100)
	require.NoError(t, err)
	assert.Len(t, history, 11)
}
