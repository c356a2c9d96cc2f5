package repository

import (
	"context"
	"testing"

	"minicasino/repository/testutil"
	"minicasino/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		account := testutil.CreateTestAccount("alice")
		require.NoError(t, repo.Create(ctx, account))
		assert.False(t, account.CreatedAt.IsZero())

		byID, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "alice", byID.Handle)
		assert.Equal(t, int64(0), byID.Balance)

		byHandle, err := repo.GetByHandle(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, byHandle)
		assert.Equal(t, account.ID, byHandle.ID)
	})

	t.Run("duplicate handle", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestAccount("bob")))

		err := repo.Create(ctx, testutil.CreateTestAccount("bob"))
		assert.ErrorIs(t, err, service.ErrDuplicateHandle)
	})

	t.Run("missing account", func(t *testing.T) {
		account, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, account)

		account, err = repo.GetByHandle(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("update balance", func(t *testing.T) {
		account := testutil.CreateTestAccount("carol")
		require.NoError(t, repo.Create(ctx, account))

		require.NoError(t, repo.UpdateBalance(ctx, account.ID, 4250))

		stored, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4250), stored.Balance)
	})

	t.Run("negative balance is refused by the schema", func(t *testing.T) {
		account := testutil.CreateTestAccount("dave")
		require.NoError(t, repo.Create(ctx, account))

		assert.Error(t, repo.UpdateBalance(ctx, account.ID, -1))
	})

	t.Run("update unknown account", func(t *testing.T) {
		assert.Error(t, repo.UpdateBalance(ctx, uuid.New(), 100))
	})
}
