package repository

import (
	"context"
	"testing"

	"minicasino/models"
	"minicasino/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRoundRepository_List(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	accounts := NewAccountRepository(testDB.DB)
	rounds := NewGameRoundRepository(testDB.DB)

	account := testutil.CreateTestAccountWithBalance("roller", 100000)
	require.NoError(t, accounts.Create(ctx, account))
	other := testutil.CreateTestAccount("other")
	require.NoError(t, accounts.Create(ctx, other))

	for _, game := range []models.GameKind{models.GameCoin, models.GameSlots, models.GameSlots, models.GameRoulette} {
		require.NoError(t, rounds.Create(ctx, testutil.CreateTestGameRound(account.ID, game)))
	}
	require.NoError(t, rounds.Create(ctx, testutil.CreateTestGameRound(other.ID, models.GameCoin)))

	t.Run("all rounds of the account", func(t *testing.T) {
		got, err := rounds.List(ctx, account.ID, models.RoundFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 4)
		for _, round := range got {
			assert.Equal(t, account.ID, round.AccountID)
			assert.False(t, round.CreatedAt.IsZero())
		}
	})

	t.Run("filtered by game", func(t *testing.T) {
		slots := models.GameSlots
		got, err := rounds.List(ctx, account.ID, models.RoundFilter{Game: &slots})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		for _, round := range got {
			assert.Equal(t, models.GameSlots, round.Game)
		}
	})

	t.Run("limited", func(t *testing.T) {
		got, err := rounds.List(ctx, account.ID, models.RoundFilter{Limit: 3})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestBalanceHistoryRepository_RecordAndList(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	accounts := NewAccountRepository(testDB.DB)
	history := NewBalanceHistoryRepository(testDB.DB)

	account := testutil.CreateTestAccountWithBalance("ledger", 10000)
	require.NoError(t, accounts.Create(ctx, account))

	entry := testutil.CreateTestBalanceHistory(account.ID, models.TransactionTypeCoinLoss)
	require.NoError(t, history.Record(ctx, entry))
	assert.NotZero(t, entry.ID)

	got, err := history.GetByAccount(ctx, account.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.TransactionTypeCoinLoss, got[0].TransactionType)
	assert.Equal(t, int64(-1000), got[0].ChangeAmount)
	assert.Equal(t, true, got[0].TransactionMetadata["test"])
	assert.Nil(t, got[0].RelatedRoundID)
}
