package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"minicasino/events"
	"minicasino/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	MinHandleLength = 3
	MaxHandleLength = 80
	MinSecretLength = 6
	// MaxSecretLength is bcrypt's input limit in bytes
	MaxSecretLength = 72
)

type accountService struct {
	uowFactory UnitOfWorkFactory
	hasher     PasswordHasher
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, hasher PasswordHasher) AccountService {
	return &accountService{
		uowFactory: uowFactory,
		hasher:     hasher,
	}
}

func validateCredentials(handle, secret string) error {
	if n := utf8.RuneCountInString(handle); n < MinHandleLength || n > MaxHandleLength {
		return newValidationError(ErrInvalidHandle, fmt.Sprintf(
			"Handle must be between %d and %d characters", MinHandleLength, MaxHandleLength))
	}
	if len(secret) < MinSecretLength || len(secret) > MaxSecretLength {
		return newValidationError(ErrInvalidSecret, fmt.Sprintf(
			"Password must be between %d and %d bytes", MinSecretLength, MaxSecretLength))
	}
	return nil
}

// Register creates an account with a zero balance
func (s *accountService) Register(ctx context.Context, handle, secret string) (*models.Account, error) {
	handle = strings.TrimSpace(handle)
	if err := validateCredentials(handle, secret); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin registration", err)
	}
	defer uow.Rollback() // No-op if already committed

	account := &models.Account{
		ID:           uuid.New(),
		Handle:       handle,
		PasswordHash: hash,
		Balance:      0,
	}

	// The unique index on handle is the source of truth for duplicates
	if err := uow.AccountRepository().Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateHandle) {
			return nil, newValidationError(ErrDuplicateHandle, "That handle is already taken")
		}
		return nil, persistenceError("create account", err)
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		AccountID: account.ID,
		Handle:    account.Handle,
	})

	if err := uow.Commit(); err != nil {
		if errors.Is(err, ErrDuplicateHandle) {
			return nil, newValidationError(ErrDuplicateHandle, "That handle is already taken")
		}
		return nil, persistenceError("commit registration", err)
	}

	log.WithFields(log.Fields{
		"accountID": account.ID,
		"handle":    account.Handle,
	}).Info("Account registered")

	return account, nil
}

// Authenticate checks a handle and secret pair. Unknown handles and wrong
// secrets produce the same error.
func (s *accountService) Authenticate(ctx context.Context, handle, secret string) (*models.Account, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || secret == "" {
		return nil, newValidationError(ErrInvalidCredentials, "Invalid handle or password")
	}

	account, err := s.loadAccount(ctx, func(repo AccountRepository) (*models.Account, error) {
		return repo.GetByHandle(ctx, handle)
	})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, newValidationError(ErrInvalidCredentials, "Invalid handle or password")
	}

	if err := s.hasher.Compare(account.PasswordHash, secret); err != nil {
		log.WithField("handle", handle).Debug("Rejected login with wrong secret")
		return nil, newValidationError(ErrInvalidCredentials, "Invalid handle or password")
	}

	return account, nil
}

// GetAccount returns the account with the given id
func (s *accountService) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.loadAccount(ctx, func(repo AccountRepository) (*models.Account, error) {
		return repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// loadAccount runs a read-only lookup in its own unit of work
func (s *accountService) loadAccount(ctx context.Context, get func(AccountRepository) (*models.Account, error)) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin lookup", err)
	}
	defer uow.Rollback()

	account, err := get(uow.AccountRepository())
	if err != nil {
		return nil, persistenceError("load account", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("commit lookup", err)
	}
	return account, nil
}
