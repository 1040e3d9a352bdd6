package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledger-api/internal/core/domain"
	"ledger-api/internal/core/ports"
	"ledger-api/pkg/apperror"
)

const minPasswordLen = 8

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo    ports.UserRepository
	accountRepo ports.AccountRepository
	transactor  ports.DBTransactor
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	accountRepo ports.AccountRepository,
	transactor ports.DBTransactor,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		transactor:  transactor,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
	}
}

// Register creates a regular user. Accounts are opened separately.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.createUser(ctx, username, password, domain.RoleUser)
}

func (s *AuthServiceImpl) createUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	if !domain.ValidAccountID(username) {
		return nil, apperror.InvalidRequest("username must be 1-64 letters, digits, '.', '_' or '-'")
	}
	if len(password) < minPasswordLen {
		return nil, apperror.InvalidRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if !role.Valid() {
		return nil, apperror.InvalidRequest("unknown role")
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	passwordHash, err := s.hashSvc.Hash(password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.ErrUsernameExists()
		}
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	return user, nil
}

// Login validates credentials and returns a JWT token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(user)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, nil
}

// DeleteUser removes a user that no longer owns any account. Admin only.
func (s *AuthServiceImpl) DeleteUser(ctx context.Context, actor *domain.Actor, username string) error {
	if actor == nil {
		return apperror.ErrUnauthorized()
	}
	if !actor.IsAdmin() {
		return apperror.ErrForbidden()
	}
	if username == "" {
		return apperror.InvalidRequest("username is required")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	owned, err := s.accountRepo.CountByOwner(ctx, dbTx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("count owned accounts: %w", err))
	}
	if owned > 0 {
		return apperror.ErrPreconditionFailed(fmt.Sprintf("user still owns %d account(s)", owned))
	}

	if err := s.userRepo.Delete(ctx, dbTx, username); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return apperror.ErrNotFound("user")
		case errors.Is(err, domain.ErrForeignKey):
			return apperror.ErrPreconditionFailed("user still owns accounts")
		}
		return apperror.InternalError(fmt.Errorf("delete user: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// EnsureUser returns the existing user or creates it with the given role.
func (s *AuthServiceImpl) EnsureUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	user, err := s.createUser(ctx, username, password, role)
	if apperror.Code(err) == apperror.CodeUsernameExists {
		// Lost a race with another writer; theirs wins.
		return s.userRepo.GetByUsername(ctx, username)
	}
	return user, err
}
