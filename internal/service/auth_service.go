// Package service contains application business logic, decoupled from
// HTTP handlers and persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"basspress/internal/auth"
	"basspress/internal/middleware"
	"basspress/internal/models"
	"basspress/internal/observability"
	"basspress/internal/repository"
	"basspress/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login, token refresh and the
// account lockout policy.
type AuthService struct {
	userRepo     repository.UserRepository
	issuer       *auth.TokenIssuer
	bcryptRounds int

	now func() time.Time
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput carries the login form. Identifier is the account email
// or username.
type LoginInput struct {
	Identifier string
	Password   string
}

type ChangePasswordInput struct {
	UserID          uint
	CurrentPassword string
	NewPassword     string
}

// AuthResult bundles the authenticated user with its token pair.
type AuthResult struct {
	User   *models.User
	Tokens *auth.TokenPair
}

func NewAuthService(userRepo repository.UserRepository, issuer *auth.TokenIssuer, bcryptRounds int) *AuthService {
	if bcryptRounds < bcrypt.MinCost {
		bcryptRounds = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:     userRepo,
		issuer:       issuer,
		bcryptRounds: bcryptRounds,
		now:          time.Now,
	}
}

// Register creates an account and issues an initial token pair.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptRounds)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      models.RoleUser,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Login authenticates a user, enforcing the lockout policy: repeated
// failures lock the account for a fixed window, and an expired lock is
// cleared on the next attempt.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	now := s.now()

	var user *models.User
	var err error
	if strings.Contains(in.Identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, in.Identifier)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, in.Identifier)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, models.NewInvalidCredentialsError()
	}
	if !user.IsActive {
		observability.LoginAttempts.WithLabelValues("blocked").Inc()
		return nil, models.NewAccountBlockedError()
	}
	if auth.CheckLocked(user, now) {
		observability.LoginAttempts.WithLabelValues("locked").Inc()
		return nil, lockedError(user.LockUntil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		updated, repoErr := s.userRepo.RecordLoginFailure(ctx, user.ID, now)
		if repoErr != nil {
			return nil, repoErr
		}
		if auth.CheckLocked(updated, now) {
			observability.AccountLockouts.Inc()
			observability.LoginAttempts.WithLabelValues("locked").Inc()
			middleware.Logger.WarnContext(ctx, "account locked after repeated failures",
				"user_id", user.ID, "attempts", updated.LoginAttempts)
			return nil, lockedError(updated.LockUntil)
		}
		observability.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, models.NewInvalidCredentialsError()
	}

	if err := s.userRepo.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLogin = &now

	observability.LoginAttempts.WithLabelValues("success").Inc()
	return s.issueTokens(ctx, user)
}

// Refresh exchanges a stored refresh token for a new access token.
// The presented token must verify cryptographically and be in the
// user's stored list; it stays valid until logout revokes it.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return "", tokenVerifyError(err)
	}

	now := s.now()
	ok, err := s.userRepo.HasRefreshToken(ctx, userID, refreshToken, now)
	if err != nil {
		return "", err
	}
	if !ok {
		// Token was revoked or aged out of the stored list.
		return "", models.NewTokenError(models.CodeInvalidToken, "Refresh token is not valid")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", models.NewAccountBlockedError()
	}

	access, err := s.issuer.IssueAccess(user.ID)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	observability.TokensIssued.WithLabelValues("access").Inc()
	return access, nil
}

// Logout revokes a single refresh token.
func (s *AuthService) Logout(ctx context.Context, userID uint, refreshToken string) error {
	return s.userRepo.RemoveRefreshToken(ctx, userID, refreshToken)
}

// LogoutAll revokes every refresh token the user holds.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	return s.userRepo.RemoveAllRefreshTokens(ctx, userID)
}

// ChangePassword verifies the current password, stores the new hash and
// revokes all outstanding refresh tokens.
func (s *AuthService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return models.NewInvalidCredentialsError()
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.bcryptRounds)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.userRepo.UpdatePassword(ctx, in.UserID, string(hash)); err != nil {
		return err
	}
	return s.userRepo.RemoveAllRefreshTokens(ctx, in.UserID)
}

// VerifyAccess resolves an access token to the account it belongs to.
func (s *AuthService) VerifyAccess(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.issuer.VerifyAccess(token)
	if err != nil {
		return nil, tokenVerifyError(err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, models.NewTokenError(models.CodeUserNotFound, "User no longer exists")
	}
	if !user.IsActive {
		return nil, models.NewAccountBlockedError()
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.userRepo.AddRefreshToken(ctx, user.ID, pair.RefreshToken, s.now()); err != nil {
		return nil, err
	}
	observability.TokensIssued.WithLabelValues("access").Inc()
	observability.TokensIssued.WithLabelValues("refresh").Inc()
	return &AuthResult{User: user, Tokens: pair}, nil
}

// lockedError carries the lock expiry so clients can show when to retry.
func lockedError(lockUntil *time.Time) *models.AppError {
	appErr := models.NewAccountLockedError()
	if lockUntil != nil {
		appErr.Err = fmt.Errorf("locked until %s", lockUntil.UTC().Format(time.RFC3339))
	}
	return appErr
}

func tokenVerifyError(err error) *models.AppError {
	if errors.Is(err, auth.ErrTokenExpired) {
		return models.NewTokenError(models.CodeTokenExpired, "Token has expired")
	}
	return models.NewTokenError(models.CodeInvalidToken, "Token is not valid")
}
