package events_test

import (
	"context"
	"testing"
	"time"

	"minicasino/events"
	"minicasino/games"
	"minicasino/models"
	"minicasino/repository/memory"
	"minicasino/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedPocket always lands the roulette ball on the same number
type fixedPocket int

func (p fixedPocket) Draw(game models.GameKind) (games.Outcome, error) {
	return games.Outcome{Game: game, Number: int(p)}, nil
}

type deliveryFixture struct {
	ctx       context.Context
	factory   service.UnitOfWorkFactory
	delivered chan events.Event
	account   *models.Account
}

// newDeliveryFixture stores an account holding balance cents, then starts
// recording every event delivered on the bus.
func newDeliveryFixture(t *testing.T, balance int64) *deliveryFixture {
	t.Helper()
	ctx := context.Background()
	bus := events.NewBus()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore(), bus)

	account := &models.Account{ID: uuid.New(), Handle: "alice", Balance: balance}
	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.AccountRepository().Create(ctx, account))
	require.NoError(t, uow.Commit())

	delivered := make(chan events.Event, 16)
	for _, eventType := range events.AllEventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) {
			delivered <- event
		})
	}

	return &deliveryFixture{ctx: ctx, factory: factory, delivered: delivered, account: account}
}

func (f *deliveryFixture) receive(t *testing.T, n int) map[events.EventType]events.Event {
	t.Helper()
	got := make(map[events.EventType]events.Event, n)
	for i := 0; i < n; i++ {
		select {
		case event := <-f.delivered:
			got[event.Type()] = event
		case <-time.After(2 * time.Second):
			require.FailNowf(t, "missing events", "received %d of %d", i, n)
		}
	}
	return got
}

func (f *deliveryFixture) assertQuiet(t *testing.T) {
	t.Helper()
	select {
	case event := <-f.delivered:
		t.Fatalf("unexpected %s event delivered", event.Type())
	case <-time.After(100 * time.Millisecond):
	}
}

func (f *deliveryFixture) balance(t *testing.T) int64 {
	t.Helper()
	uow := f.factory.Create()
	require.NoError(t, uow.Begin(f.ctx))
	defer uow.Rollback()
	account, err := uow.AccountRepository().GetByID(f.ctx, f.account.ID)
	require.NoError(t, err)
	return account.Balance
}

func TestCommittedRoundDeliversPlayedAndBalanceEvents(t *testing.T) {
	f := newDeliveryFixture(t, 5000)
	gameService := service.NewGameService(f.factory, fixedPocket(22))

	result, err := gameService.PlayRoulette(f.ctx, f.account.ID, "10", "even")
	require.NoError(t, err)
	require.True(t, result.Won)

	got := f.receive(t, 2)

	played, ok := got[events.EventTypeGamePlayed].(events.GamePlayedEvent)
	require.True(t, ok)
	assert.Equal(t, result.RoundID, played.RoundID)
	assert.Equal(t, "alice", played.Handle)
	assert.Equal(t, "22", played.Outcome)
	assert.Equal(t, int64(1000), played.NetChange)

	change, ok := got[events.EventTypeBalanceChange].(events.BalanceChangeEvent)
	require.True(t, ok)
	assert.Equal(t, f.account.ID, change.AccountID)
	assert.Equal(t, int64(5000), change.OldBalance)
	assert.Equal(t, int64(6000), change.NewBalance)
	assert.Equal(t, models.TransactionTypeRouletteWin, change.TransactionType)

	f.assertQuiet(t)
}

func TestRejectedRoundPublishesNothing(t *testing.T) {
	f := newDeliveryFixture(t, 500)
	gameService := service.NewGameService(f.factory, fixedPocket(22))

	_, err := gameService.PlayRoulette(f.ctx, f.account.ID, "10", "even")
	assert.ErrorIs(t, err, service.ErrInsufficientBalance)

	f.assertQuiet(t)
	assert.Equal(t, int64(500), f.balance(t))
}

func TestRolledBackRoundPublishesNothing(t *testing.T) {
	f := newDeliveryFixture(t, 5000)

	uow := f.factory.Create()
	require.NoError(t, uow.Begin(f.ctx))
	account, err := uow.AccountRepository().GetByIDForUpdate(f.ctx, f.account.ID)
	require.NoError(t, err)
	require.NoError(t, uow.AccountRepository().UpdateBalance(f.ctx, account.ID, 4000))

	roundID := uuid.New()
	require.NoError(t, service.RecordBalanceChange(f.ctx, uow, &models.BalanceHistory{
		AccountID:       account.ID,
		BalanceBefore:   5000,
		BalanceAfter:    4000,
		ChangeAmount:    -1000,
		TransactionType: models.TransactionTypeRouletteLoss,
		RelatedRoundID:  &roundID,
	}))
	uow.EventBus().Publish(events.GamePlayedEvent{RoundID: roundID, AccountID: account.ID, Game: models.GameRoulette, Wager: 1000, NetChange: -1000})

	require.NoError(t, uow.Rollback())

	f.assertQuiet(t)
	assert.Equal(t, int64(5000), f.balance(t))
}

func TestFailedCommitPublishesNothing(t *testing.T) {
	f := newDeliveryFixture(t, 0)

	uow := f.factory.Create()
	require.NoError(t, uow.Begin(f.ctx))
	require.NoError(t, uow.AccountRepository().Create(f.ctx, &models.Account{ID: uuid.New(), Handle: "bob"}))
	uow.EventBus().Publish(events.AccountCreatedEvent{Handle: "bob"})

	// A concurrent registration takes the handle first
	other := f.factory.Create()
	require.NoError(t, other.Begin(f.ctx))
	require.NoError(t, other.AccountRepository().Create(f.ctx, &models.Account{ID: uuid.New(), Handle: "bob"}))
	require.NoError(t, other.Commit())

	assert.ErrorIs(t, uow.Commit(), service.ErrDuplicateHandle)
	f.assertQuiet(t)
}
