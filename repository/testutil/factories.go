package testutil

import (
	"time"

	"minicasino/models"

	"github.com/google/uuid"
)

// CreateTestAccount creates a test account with default values. The hash is
// not a real bcrypt hash.
func CreateTestAccount(handle string) *models.Account {
	now := time.Now()
	return &models.Account{
		ID:           uuid.New(),
		Handle:       handle,
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhashnotarealhashnota",
		Balance:      0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateTestAccountWithBalance creates a test account with a specific balance
func CreateTestAccountWithBalance(handle string, balance int64) *models.Account {
	account := CreateTestAccount(handle)
	account.Balance = balance
	return account
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(accountID uuid.UUID, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		AccountID:       accountID,
		BalanceBefore:   10000,
		BalanceAfter:    9000,
		ChangeAmount:    -1000,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestGameRound creates a lost coin round for the account
func CreateTestGameRound(accountID uuid.UUID, game models.GameKind) *models.GameRound {
	return &models.GameRound{
		ID:         uuid.New(),
		AccountID:  accountID,
		Game:       game,
		Wager:      1000,
		Choice:     "",
		Outcome:    "lemon cherry gem",
		Multiplier: -1,
		NetChange:  -1000,
		Won:        false,
	}
}
