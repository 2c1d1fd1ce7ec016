package service

import (
	"context"
	"testing"
	"time"

	"basspress/internal/auth"
	"basspress/internal/models"
	"basspress/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// stubUserRepo implements repository.UserRepository with overridable
// function fields so each test wires only what it needs.
type stubUserRepo struct {
	getByID      func(ctx context.Context, id uint) (*models.User, error)
	getByEmail   func(ctx context.Context, email string) (*models.User, error)
	getByUser    func(ctx context.Context, username string) (*models.User, error)
	create       func(ctx context.Context, user *models.User) error
	loginFailure func(ctx context.Context, id uint, now time.Time) (*models.User, error)
	loginSuccess func(ctx context.Context, id uint, now time.Time) error
	addToken     func(ctx context.Context, userID uint, token string, now time.Time) error
	hasToken     func(ctx context.Context, userID uint, token string, now time.Time) (bool, error)
	removeToken  func(ctx context.Context, userID uint, token string) error
	removeAll    func(ctx context.Context, userID uint) error
	updatePass   func(ctx context.Context, id uint, hash string) error
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByID(ctx, id)
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmail == nil {
		return nil, nil
	}
	return s.getByEmail(ctx, email)
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUser == nil {
		return nil, nil
	}
	return s.getByUser(ctx, username)
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if s.create == nil {
		user.ID = 1
		return nil
	}
	return s.create(ctx, user)
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error { return nil }
func (s *stubUserRepo) Delete(ctx context.Context, id uint) error           { return nil }

func (s *stubUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	return nil, nil
}

func (s *stubUserRepo) RecordLoginFailure(ctx context.Context, id uint, now time.Time) (*models.User, error) {
	return s.loginFailure(ctx, id, now)
}

func (s *stubUserRepo) RecordLoginSuccess(ctx context.Context, id uint, now time.Time) error {
	if s.loginSuccess == nil {
		return nil
	}
	return s.loginSuccess(ctx, id, now)
}

func (s *stubUserRepo) AddRefreshToken(ctx context.Context, userID uint, token string, now time.Time) error {
	if s.addToken == nil {
		return nil
	}
	return s.addToken(ctx, userID, token, now)
}

func (s *stubUserRepo) HasRefreshToken(ctx context.Context, userID uint, token string, now time.Time) (bool, error) {
	return s.hasToken(ctx, userID, token, now)
}

func (s *stubUserRepo) RemoveRefreshToken(ctx context.Context, userID uint, token string) error {
	if s.removeToken == nil {
		return nil
	}
	return s.removeToken(ctx, userID, token)
}

func (s *stubUserRepo) RemoveAllRefreshTokens(ctx context.Context, userID uint) error {
	if s.removeAll == nil {
		return nil
	}
	return s.removeAll(ctx, userID)
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, id uint, hash string) error {
	if s.updatePass == nil {
		return nil
	}
	return s.updatePass(ctx, id, hash)
}

func (s *stubUserRepo) SetRole(ctx context.Context, id uint, role models.Role) error   { return nil }
func (s *stubUserRepo) SetActive(ctx context.Context, id uint, active bool) error      { return nil }
func (s *stubUserRepo) CountByRole(ctx context.Context) (map[models.Role]int64, error) { return nil, nil }

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("access-secret", "refresh-secret", time.Hour)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	return &models.User{
		ID:       1,
		Username: "bassline",
		Email:    "bass@example.com",
		Password: hashPassword(t, password),
		Role:     models.RoleUser,
		IsActive: true,
	}
}

func TestRegister_RejectsInvalidInput(t *testing.T) {
	svc := NewAuthService(&stubUserRepo{}, testIssuer(), bcrypt.MinCost)
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"bad username", RegisterInput{Username: "x", Email: "a@b.com", Password: "Secret1"}},
		{"bad email", RegisterInput{Username: "valid_user", Email: "nope", Password: "Secret1"}},
		{"weak password", RegisterInput{Username: "valid_user", Email: "a@b.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &stubUserRepo{
		getByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: 7, Email: email}, nil
		},
	}
	svc := NewAuthService(repo, testIssuer(), bcrypt.MinCost)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "valid_user", Email: "taken@example.com", Password: "Secret1",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)
}

func TestRegister_Success(t *testing.T) {
	var stored string
	repo := &stubUserRepo{
		addToken: func(ctx context.Context, userID uint, token string, now time.Time) error {
			stored = token
			return nil
		},
	}
	svc := NewAuthService(repo, testIssuer(), bcrypt.MinCost)

	res, err := svc.Register(context.Background(), RegisterInput{
		Username: "new_user", Email: "new@example.com", Password: "Secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.True(t, res.User.IsActive)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.Equal(t, res.Tokens.RefreshToken, stored, "refresh token goes into the stored list")
	assert.NotEqual(t, "Secret1", res.User.Password, "password is stored hashed")
}

func TestLogin_Success(t *testing.T) {
	user := activeUser(t, "Secret1")
	repo := &stubUserRepo{
		getByEmail: func(ctx context.Context, email string) (*models.User, error) { return user, nil },
	}
	svc := NewAuthService(repo, testIssuer(), bcrypt.MinCost)

	res, err := svc.Login(context.Background(), LoginInput{Identifier: user.Email, Password: "Secret1"})
	require.NoError(t, err)
	assert.Zero(t, res.User.LoginAttempts)
	assert.Nil(t, res.User.LockUntil)
	assert.NotNil(t, res.User.LastLogin)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
}

func TestLogin_ByUsername(t *testing.T) {
	user := activeUser(t, "Secret1")
	repo := &stubUserRepo{
		getByUser: func(ctx context.Context, username string) (*models.User, error) {
			if username == user.Username {
				return user, nil
			}
			return nil, nil
		},
	}
	svc := NewAuthService(repo, testIssuer(), bcrypt.MinCost)

	// An identifier without an @ is looked up as a username.
	res, err := svc.Login(context.Background(), LoginInput{Identifier: user.Username, Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewAuthService(&stubUserRepo{}, testIssuer(), bcrypt.MinCost)

	_, err := svc.Login(context.Background(), LoginInput{Identifier: "ghost@example.com", Password: "Secret1"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeInvalidCredentials, appErr.Code)
}

func TestLogin_BlockedAccount(t *testing.T) {
	user := activeUser(t, "Secret1")
	user.IsActive = false
	repo := &stubUserRepo{
		getByEmail: func(ctx context.Context, email string) (*models.User, error) { return user, nil },
	}
	svc := NewAuthService(repo, testIssuer(), bcrypt.MinCost)

	_, err := svc.Login(context.Background(), LoginInput{Identifier: user.Email, Password: "Secret1"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeAccountBlocked, appErr.Code)
}

func TestLogin_WrongPasswordBelowThreshold(t *testing.T) {
	user := activeUser(t, "Secret1")
	repo := &stubUserRepo{
		getByEmail: func(ctx context.Context, email string) (*models.User, error) { return user, nil },
		loginFailure: func(ctx context.Context, id uint, now time.Time) (*models.User, error) {
			u := *user
			u.LoginAttempts = 2
			return &u, nil
		},
	}
	svc := NewAuthService(repo, testIssuer(), bcrypt.MinCost)

	_, err := svc.Login(context.Background(), LoginInput{Identifier: user.Email, Password: "wrong"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeInvalidCredentials, appErr.Code)
}

func TestLogin_FifthFailureLocks(t *testing.T) {
	user := activeUser(t, "Secret1")
	lockUntil := time.Now().Add(auth.LockDuration)
	repo := &stubUserRepo{
		getByEmail: func(ctx context.Context, email string) (*models.User, error) { return user, nil },
		loginFailure: func(ctx context.Context, id uint, now time.Time) (*models.User, error) {
			u := *user
			u.LoginAttempts = auth.MaxLoginAttempts
			u.LockUntil = &lockUntil
			return &u, nil
		},
	}
	svc := NewAuthService(repo, testIssuer(), bcrypt.MinCost)

	_, err := svc.Login(context.Background(), LoginInput{Identifier: user.Email, Password: "wrong"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeAccountLocked, appErr.Code)
	require.NotNil(t, appErr.Err, "lock expiry is surfaced in details")
	assert.Contains(t, appErr.Err.Error(), "locked until")
}

func TestLogin_LockedAccountRejectedBeforePasswordCheck(t *testing.T) {
	user := activeUser(t, "Secret1")
	lockUntil := time.Now().Add(time.Hour)
	user.LockUntil = &lockUntil
	user.LoginAttempts = auth.MaxLoginAttempts

	repo := &stubUserRepo{
		getByEmail: func(ctx context.Context, email string) (*models.User, error) { return user, nil },
	}
	svc := NewAuthService(repo, testIssuer(), bcrypt.MinCost)

	// Even the correct password must not get through while locked.
	_, err := svc.Login(context.Background(), LoginInput{Identifier: user.Email, Password: "Secret1"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeAccountLocked, appErr.Code)
}

func TestRefresh_IssuesAccessOnly(t *testing.T) {
	user := activeUser(t, "Secret1")
	issuer := testIssuer()
	pair, err := issuer.IssuePair(user.ID)
	require.NoError(t, err)

	var removed, added []string
	repo := &stubUserRepo{
		getByID: func(ctx context.Context, id uint) (*models.User, error) { return user, nil },
		hasToken: func(ctx context.Context, userID uint, token string, now time.Time) (bool, error) {
			return token == pair.RefreshToken, nil
		},
		removeToken: func(ctx context.Context, userID uint, token string) error {
			removed = append(removed, token)
			return nil
		},
		addToken: func(ctx context.Context, userID uint, token string, now time.Time) error {
			added = append(added, token)
			return nil
		},
	}
	svc := NewAuthService(repo, issuer, bcrypt.MinCost)

	access, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, access)

	gotID, err := issuer.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotID)

	// The stored refresh token survives the exchange untouched.
	assert.Empty(t, removed)
	assert.Empty(t, added)

	// And it can be presented again.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_RevokedTokenRejected(t *testing.T) {
	user := activeUser(t, "Secret1")
	issuer := testIssuer()
	pair, err := issuer.IssuePair(user.ID)
	require.NoError(t, err)

	repo := &stubUserRepo{
		hasToken: func(ctx context.Context, userID uint, token string, now time.Time) (bool, error) {
			return false, nil
		},
	}
	svc := NewAuthService(repo, issuer, bcrypt.MinCost)

	// Signature is valid but the token is not in the stored list.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeInvalidToken, appErr.Code)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	issuer := testIssuer()
	pair, err := issuer.IssuePair(1)
	require.NoError(t, err)

	svc := NewAuthService(&stubUserRepo{}, issuer, bcrypt.MinCost)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeInvalidToken, appErr.Code)
}

func TestChangePassword(t *testing.T) {
	user := activeUser(t, "Secret1")

	var newHash string
	var revokedAll bool
	repo := &stubUserRepo{
		getByID: func(ctx context.Context, id uint) (*models.User, error) { return user, nil },
		updatePass: func(ctx context.Context, id uint, hash string) error {
			newHash = hash
			return nil
		},
		removeAll: func(ctx context.Context, userID uint) error {
			revokedAll = true
			return nil
		},
	}
	svc := NewAuthService(repo, testIssuer(), bcrypt.MinCost)

	err := svc.ChangePassword(context.Background(), ChangePasswordInput{
		UserID: 1, CurrentPassword: "Secret1", NewPassword: "Newpass2",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("Newpass2")))
	assert.True(t, revokedAll, "password change revokes every refresh token")
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	user := activeUser(t, "Secret1")
	repo := &stubUserRepo{
		getByID: func(ctx context.Context, id uint) (*models.User, error) { return user, nil },
	}
	svc := NewAuthService(repo, testIssuer(), bcrypt.MinCost)

	err := svc.ChangePassword(context.Background(), ChangePasswordInput{
		UserID: 1, CurrentPassword: "nope", NewPassword: "Newpass2",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeInvalidCredentials, appErr.Code)
}

func TestVerifyAccess(t *testing.T) {
	user := activeUser(t, "Secret1")
	issuer := testIssuer()
	token, err := issuer.IssueAccess(user.ID)
	require.NoError(t, err)

	repo := &stubUserRepo{
		getByID: func(ctx context.Context, id uint) (*models.User, error) { return user, nil },
	}
	svc := NewAuthService(repo, issuer, bcrypt.MinCost)

	got, err := svc.VerifyAccess(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestVerifyAccess_DeletedUser(t *testing.T) {
	issuer := testIssuer()
	token, err := issuer.IssueAccess(42)
	require.NoError(t, err)

	repo := &stubUserRepo{
		getByID: func(ctx context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		},
	}
	svc := NewAuthService(repo, issuer, bcrypt.MinCost)

	_, err = svc.VerifyAccess(context.Background(), token)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUserNotFound, appErr.Code)
}
