package events

import (
	"context"
	"testing"
	"time"

	"minicasino/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect subscribes to every event type and returns the delivery channel
func collect(bus *Bus) <-chan Event {
	delivered := make(chan Event, 16)
	for _, eventType := range AllEventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event Event) {
			delivered <- event
		})
	}
	return delivered
}

func receive(t *testing.T, delivered <-chan Event, n int) []Event {
	t.Helper()
	got := make([]Event, 0, n)
	for len(got) < n {
		select {
		case event := <-delivered:
			got = append(got, event)
		case <-time.After(2 * time.Second):
			require.FailNowf(t, "missing events", "received %d of %d", len(got), n)
		}
	}
	return got
}

func assertQuiet(t *testing.T, delivered <-chan Event) {
	t.Helper()
	select {
	case event := <-delivered:
		t.Fatalf("unexpected %s event delivered", event.Type())
	case <-time.After(100 * time.Millisecond):
	}
}

func settledRound(accountID uuid.UUID) (GamePlayedEvent, BalanceChangeEvent) {
	roundID := uuid.New()
	played := GamePlayedEvent{
		RoundID:   roundID,
		AccountID: accountID,
		Handle:    "alice",
		Game:      models.GameRoulette,
		Outcome:   "22",
		Wager:     1000,
		NetChange: 1000,
		Won:       true,
	}
	change := BalanceChangeEvent{
		AccountID:       accountID,
		OldBalance:      5000,
		NewBalance:      6000,
		TransactionType: models.TransactionTypeRouletteWin,
		ChangeAmount:    1000,
	}
	return played, change
}

func TestTransactionalBus_FlushDeliversRoundEventsOnce(t *testing.T) {
	bus := NewBus()
	delivered := collect(bus)
	tx := NewTransactionalBus(bus)

	played, change := settledRound(uuid.New())
	tx.Publish(change)
	tx.Publish(played)
	assertQuiet(t, delivered)

	require.NoError(t, tx.Flush(context.Background()))
	assert.ElementsMatch(t, []Event{change, played}, receive(t, delivered, 2))

	// Pending events are cleared by a flush
	require.NoError(t, tx.Flush(context.Background()))
	assertQuiet(t, delivered)
}

func TestTransactionalBus_DiscardDropsRoundEvents(t *testing.T) {
	bus := NewBus()
	delivered := collect(bus)
	tx := NewTransactionalBus(bus)

	played, change := settledRound(uuid.New())
	tx.Publish(change)
	tx.Publish(played)
	tx.Discard()

	require.NoError(t, tx.Flush(context.Background()))
	assertQuiet(t, delivered)
}

func TestBus_DeliversOnlySubscribedTypes(t *testing.T) {
	bus := NewBus()
	wins := make(chan GamePlayedEvent, 1)
	bus.Subscribe(EventTypeGamePlayed, func(ctx context.Context, event Event) {
		wins <- event.(GamePlayedEvent)
	})

	bus.Emit(context.Background(), AccountCreatedEvent{AccountID: uuid.New(), Handle: "bob"})
	played, _ := settledRound(uuid.New())
	bus.Emit(context.Background(), played)

	select {
	case got := <-wins:
		assert.Equal(t, played.RoundID, got.RoundID)
	case <-time.After(2 * time.Second):
		t.Fatal("game played event was not delivered")
	}
	assert.Empty(t, wins)
}

// TestBusRecoversFromPanickingHandler checks that one bad subscriber does not
// stop delivery to the others
func TestBusRecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus()
	delivered := make(chan GamePlayedEvent, 1)

	bus.Subscribe(EventTypeGamePlayed, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeGamePlayed, func(ctx context.Context, event Event) {
		if played, ok := event.(GamePlayedEvent); ok {
			delivered <- played
		}
	})

	bus.Emit(context.Background(), GamePlayedEvent{Game: models.GameSlots, NetChange: 500, Won: true})

	select {
	case played := <-delivered:
		assert.Equal(t, models.GameSlots, played.Game)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered to the healthy handler")
	}
}
