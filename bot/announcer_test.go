package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"minicasino/events"
	"minicasino/models"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, content)
	if msg := args.Get(0); msg != nil {
		return msg.(*discordgo.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func slotsJackpot(handle string) events.GamePlayedEvent {
	return events.GamePlayedEvent{
		RoundID:   uuid.New(),
		AccountID: uuid.New(),
		Handle:    handle,
		Game:      models.GameSlots,
		Outcome:   "gem gem gem",
		Wager:     5000,
		NetChange: 45000,
		Won:       true,
	}
}

func TestAnnouncer_PostsRoundsAboveThreshold(t *testing.T) {
	messenger := new(mockMessenger)
	announcer := NewAnnouncer(messenger, "channel-1", 10000)

	played := slotsJackpot("alice")
	messenger.On("ChannelMessageSend", "channel-1", "🎉 **alice** won **450.00** on the slots (gem gem gem) with a wager of 50.00").
		Return(&discordgo.Message{ID: "m1"}, nil).Once()

	announcer.handleGamePlayed(context.Background(), played)

	messenger.AssertExpectations(t)
}

func TestAnnouncer_IgnoresSmallAndLosingRounds(t *testing.T) {
	messenger := new(mockMessenger)
	announcer := NewAnnouncer(messenger, "channel-1", 10000)

	small := slotsJackpot("bob")
	small.NetChange = 9999

	loss := slotsJackpot("carol")
	loss.Won = false
	loss.NetChange = -5000

	announcer.handleGamePlayed(context.Background(), small)
	announcer.handleGamePlayed(context.Background(), loss)
	announcer.handleGamePlayed(context.Background(), events.AccountCreatedEvent{Handle: "dave"})

	messenger.AssertNotCalled(t, "ChannelMessageSend", mock.Anything, mock.Anything)
}

func TestAnnouncer_SendFailureIsSwallowed(t *testing.T) {
	messenger := new(mockMessenger)
	announcer := NewAnnouncer(messenger, "channel-1", 0)

	messenger.On("ChannelMessageSend", "channel-1", mock.Anything).
		Return(nil, errors.New("discord unavailable")).Once()

	assert.NotPanics(t, func() {
		announcer.handleGamePlayed(context.Background(), slotsJackpot("erin"))
	})
	messenger.AssertExpectations(t)
}

func TestAnnouncer_SubscribesToGamePlayed(t *testing.T) {
	bus := events.NewBus()
	messenger := new(mockMessenger)
	announcer := NewAnnouncer(messenger, "channel-1", 100)
	announcer.Subscribe(bus)

	sent := make(chan struct{}, 1)
	messenger.On("ChannelMessageSend", "channel-1", mock.Anything).
		Run(func(mock.Arguments) { sent <- struct{}{} }).
		Return(&discordgo.Message{}, nil).Once()

	bus.Emit(context.Background(), slotsJackpot("frank"))

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "announcement was not sent")
	}
	messenger.AssertExpectations(t)
}

func TestFormatBigWin_NamesEachGame(t *testing.T) {
	played := events.GamePlayedEvent{Handle: "gina", Game: models.GameCoin, Outcome: "heads", Wager: 100, NetChange: 100, Won: true}
	assert.Equal(t, "🎉 **gina** won **1.00** on the coin flip (heads) with a wager of 1.00", FormatBigWin(played))

	played.Game = models.GameRoulette
	played.Outcome = "14"
	assert.Contains(t, FormatBigWin(played), "on roulette (14)")
}
