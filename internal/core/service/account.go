package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anle/storefront/internal/core/domain"
	"github.com/anle/storefront/internal/port"
)

type AccountService interface {
	// Register creates a new account. Blank fields and mismatched password
	// confirmation fail with domain.ErrInvalidInput; duplicate usernames or
	// emails fail with domain.ErrConflict.
	Register(ctx context.Context, username, email, password, confirm string) (*domain.Account, error)

	// Authenticate resolves a username/password pair into an account. Unknown
	// usernames and wrong passwords both fail with
	// domain.ErrInvalidCredentials so callers cannot tell which was wrong.
	Authenticate(ctx context.Context, username, password string) (*domain.Account, error)

	// EnsureAdmin creates the bootstrap admin account unless the username
	// already exists.
	EnsureAdmin(ctx context.Context, username, email, password string) error

	// List returns every account; admin only.
	List(ctx context.Context, caller domain.Caller) ([]domain.Account, error)
}

func NewAccountService(accounts port.AccountRepository, hasher port.PasswordHasher) AccountService {
	return &accountService{accounts: accounts, hasher: hasher}
}

type accountService struct {
	accounts port.AccountRepository
	hasher   port.PasswordHasher
}

func (s *accountService) Register(ctx context.Context, username, email, password, confirm string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}
	if password != confirm {
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Check(account.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}

func (s *accountService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	_, err := s.accounts.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.accounts.Create(ctx, &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Admin:        true,
	})
}

func (s *accountService) List(ctx context.Context, caller domain.Caller) ([]domain.Account, error) {
	if !caller.Admin {
		return nil, domain.ErrForbidden
	}
	return s.accounts.List(ctx)
}
