package games

import (
	"testing"

	"minicasino/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiplier_Coin(t *testing.T) {
	tests := []struct {
		name     string
		side     string
		choice   string
		expected int64
	}{
		{"heads on heads wins", Heads, Heads, 1},
		{"tails on tails wins", Tails, Tails, 1},
		{"heads on tails loses", Tails, Heads, -1},
		{"tails on heads loses", Heads, Tails, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Multiplier(Outcome{Game: models.GameCoin, Side: tt.side}, tt.choice)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestMultiplier_Roulette(t *testing.T) {
	t.Run("zero loses for both parities", func(t *testing.T) {
		for _, choice := range []string{Even, Odd} {
			m, err := Multiplier(Outcome{Game: models.GameRoulette, Number: 0}, choice)
			require.NoError(t, err)
			assert.Equal(t, LossMultiplier, m, "choice %s", choice)
		}
	})

	t.Run("parity decides every other pocket", func(t *testing.T) {
		for n := 1; n < WheelSize; n++ {
			outcome := Outcome{Game: models.GameRoulette, Number: n}

			even, err := Multiplier(outcome, Even)
			require.NoError(t, err)
			odd, err := Multiplier(outcome, Odd)
			require.NoError(t, err)

			if n%2 == 0 {
				assert.Equal(t, int64(1), even, "pocket %d", n)
				assert.Equal(t, int64(-1), odd, "pocket %d", n)
			} else {
				assert.Equal(t, int64(-1), even, "pocket %d", n)
				assert.Equal(t, int64(1), odd, "pocket %d", n)
			}
		}
	})
}

func TestMultiplier_SlotsCoversAllCombinations(t *testing.T) {
	wins := 0
	losses := 0

	for _, a := range Symbols {
		for _, b := range Symbols {
			for _, c := range Symbols {
				reels := Reels{a, b, c}
				m, err := Multiplier(Outcome{Game: models.GameSlots, Reels: reels}, "")
				require.NoError(t, err)

				switch reels {
				case Reels{Gem, Gem, Gem}:
					assert.Equal(t, int64(10), m)
					wins++
				case Reels{Cherry, Cherry, Cherry}:
					assert.Equal(t, int64(5), m)
					wins++
				case Reels{Lemon, Lemon, Lemon}:
					assert.Equal(t, int64(3), m)
					wins++
				default:
					assert.Equal(t, LossMultiplier, m, "reels %s", reels)
					losses++
				}
			}
		}
	}

	assert.Equal(t, 3, wins)
	assert.Equal(t, 24, losses)
}

func TestMultiplier_PartialMatchLoses(t *testing.T) {
	m, err := Multiplier(Outcome{Game: models.GameSlots, Reels: Reels{Gem, Gem, Cherry}}, "")
	require.NoError(t, err)
	assert.Equal(t, LossMultiplier, m)
}

func TestMultiplier_UnknownGame(t *testing.T) {
	_, err := Multiplier(Outcome{Game: models.GameKind("dice")}, "")
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name     string
		game     models.GameKind
		raw      string
		expected string
		wantErr  bool
	}{
		{"coin heads", models.GameCoin, "heads", Heads, false},
		{"coin mixed case", models.GameCoin, " Tails ", Tails, false},
		{"coin legacy label", models.GameCoin, "cara", Heads, false},
		{"coin rejects parity", models.GameCoin, "even", "", true},
		{"coin rejects empty", models.GameCoin, "", "", true},
		{"roulette even", models.GameRoulette, "even", Even, false},
		{"roulette legacy label", models.GameRoulette, "impar", Odd, false},
		{"roulette rejects side", models.GameRoulette, "heads", "", true},
		{"slots ignores choice", models.GameSlots, "anything", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choice, err := ParseChoice(tt.game, tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidChoice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, choice)
		})
	}
}
