package service

import (
	"math"
	"testing"

	"minicasino/models"

	"github.com/stretchr/testify/assert"
)

func TestApplyLedger(t *testing.T) {
	tests := []struct {
		name       string
		balance    int64
		wager      int64
		multiplier int64
		want       int64
		wantErr    error
	}{
		{"even money win", 10000, 2000, 1, 12000, nil},
		{"loss takes exactly the wager", 10000, 1000, -1, 9000, nil},
		{"loss of the whole balance", 1000, 1000, -1, 0, nil},
		{"jackpot", 5000, 500, 10, 10000, nil},
		{"deposit onto empty balance", 0, 2550, 1, 2550, nil},
		{"loss larger than balance", 1000, 1500, -1, 0, ErrInsufficientBalance},
		{"zero wager", 1000, 0, 1, 0, ErrNonPositiveAmount},
		{"negative wager", 1000, -10, 1, 0, ErrNonPositiveAmount},
		{"product overflow", 0, math.MaxInt64 / 2, 10, 0, models.ErrAmountOutOfRange},
		{"sum overflow", math.MaxInt64 - 5, 10, 1, 0, models.ErrAmountOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyLedger(tt.balance, tt.wager, tt.multiplier)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNetChange_LossIsNegatedWager(t *testing.T) {
	for _, wager := range []int64{1, 99, 100, 123456789} {
		change, err := NetChange(wager, -1)
		assert.NoError(t, err)
		assert.Equal(t, -wager, change)
	}
}
