package bot

import (
	"context"
	"fmt"

	"minicasino/events"
	"minicasino/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// ChannelMessenger posts plain messages to a Discord channel.
// *discordgo.Session satisfies it.
type ChannelMessenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer posts big wins to a Discord channel
type Announcer struct {
	messenger ChannelMessenger
	channelID string
	threshold int64
}

// NewAnnouncer creates an announcer. threshold is in cents; rounds whose
// net change is below it are ignored.
func NewAnnouncer(messenger ChannelMessenger, channelID string, threshold int64) *Announcer {
	return &Announcer{
		messenger: messenger,
		channelID: channelID,
		threshold: threshold,
	}
}

// Connect opens a bot session for the given token
func Connect(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	log.Info("Discord announcer connected")
	return session, nil
}

// Subscribe registers the announcer for settled rounds on the bus
func (a *Announcer) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeGamePlayed, a.handleGamePlayed)
}

func (a *Announcer) handleGamePlayed(ctx context.Context, event events.Event) {
	played, ok := event.(events.GamePlayedEvent)
	if !ok {
		return
	}
	if !a.shouldAnnounce(played) {
		return
	}

	if _, err := a.messenger.ChannelMessageSend(a.channelID, FormatBigWin(played)); err != nil {
		log.WithFields(log.Fields{
			"roundID":   played.RoundID,
			"accountID": played.AccountID,
			"channelID": a.channelID,
			"error":     err,
		}).Error("Failed to announce big win")
		return
	}

	log.WithFields(log.Fields{
		"roundID":   played.RoundID,
		"game":      played.Game,
		"netChange": played.NetChange,
	}).Debug("Announced big win")
}

func (a *Announcer) shouldAnnounce(played events.GamePlayedEvent) bool {
	return played.Won && played.NetChange > 0 && played.NetChange >= a.threshold
}

// FormatBigWin renders the channel message for a winning round
func FormatBigWin(played events.GamePlayedEvent) string {
	return fmt.Sprintf("🎉 **%s** won **%s** on %s (%s) with a wager of %s",
		played.Handle,
		models.FormatAmount(played.NetChange),
		gameTitle(played.Game),
		played.Outcome,
		models.FormatAmount(played.Wager))
}

func gameTitle(game models.GameKind) string {
	switch game {
	case models.GameCoin:
		return "the coin flip"
	case models.GameRoulette:
		return "roulette"
	case models.GameSlots:
		return "the slots"
	default:
		return string(game)
	}
}
