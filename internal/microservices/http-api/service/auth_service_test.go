package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"recipehub/internal/apperrors"
	"recipehub/internal/config"
	"recipehub/internal/microservices/http-api/dto"
	"recipehub/internal/microservices/http-api/models"
	"recipehub/internal/microservices/http-api/repository"
	"recipehub/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

type authFixture struct {
	tx     *MockTxManager
	users  *MockUserRepository
	tokens *MockRefreshTokenRepository
	codes  *MockCodeStore
	mailer *MockMailer
	svc    *authService
}

func newAuthFixture(adminCode string) *authFixture {
	f := &authFixture{
		tx:     newTx(),
		users:  new(MockUserRepository),
		tokens: new(MockRefreshTokenRepository),
		codes:  new(MockCodeStore),
		mailer: new(MockMailer),
	}
	cfg := &config.Config{
		JWTSecret:           testSecret,
		AccessTokenTTL:      15 * time.Minute,
		RefreshTokenTTL:     7 * 24 * time.Hour,
		AdminCode:           adminCode,
		VerificationCodeTTL: 15 * time.Minute,
		PasswordResetTTL:    time.Hour,
	}
	svc := NewAuthService(f.tx, f.users, f.tokens, f.codes, f.mailer, cfg, zap.NewNop()).(*authService)
	svc.now = func() time.Time { return fixedNow }
	f.svc = svc
	return f
}

func (f *authFixture) expectVerificationMail(ctx context.Context, email string) {
	f.codes.On("Save", ctx, repository.PurposeVerification, email, mock.AnythingOfType("string"), 15*time.Minute).Return(nil)
	f.mailer.On("Send", ctx, email, "Verify your email", mock.AnythingOfType("string")).Return(nil)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture("")
	ctx := context.Background()

	f.users.On("FindByUsername", ctx, "testuser").Return(nil, gorm.ErrRecordNotFound)
	f.users.On("FindByEmail", ctx, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.users.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)
	f.expectVerificationMail(ctx, "test@example.com")

	user, err := f.svc.Register(ctx, dto.RegisterRequest{
		Username: "testuser",
		Password: "password123",
		Email:    " Test@Example.com ",
	})

	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.IsVerified)
	assert.NoError(t, auth.VerifyPassword(user.Password, "password123"))
	f.users.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestRegister_AdminCode(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name       string
		configured string
		given      string
		want       string
	}{
		{"matching code", "letmein", "letmein", models.RoleAdmin},
		{"wrong code", "letmein", "guess", models.RoleUser},
		{"no code configured", "", "", models.RoleUser},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture(tc.configured)
			f.users.On("FindByUsername", ctx, "chef").Return(nil, gorm.ErrRecordNotFound)
			f.users.On("FindByEmail", ctx, "chef@example.com").Return(nil, gorm.ErrRecordNotFound)
			f.users.On("Create", ctx, mock.Anything).Return(nil)
			f.expectVerificationMail(ctx, "chef@example.com")

			user, err := f.svc.Register(ctx, dto.RegisterRequest{
				Username:  "chef",
				Password:  "password123",
				Email:     "chef@example.com",
				AdminCode: tc.given,
			})

			require.NoError(t, err)
			assert.Equal(t, tc.want, user.Role)
		})
	}
}

func TestRegister_Taken(t *testing.T) {
	ctx := context.Background()

	t.Run("username", func(t *testing.T) {
		f := newAuthFixture("")
		f.users.On("FindByUsername", ctx, "testuser").Return(&models.User{Username: "testuser"}, nil)

		user, err := f.svc.Register(ctx, dto.RegisterRequest{Username: "testuser", Password: "password123", Email: "test@example.com"})

		assert.Equal(t, ErrNameInUse, err)
		assert.Nil(t, user)
	})

	t.Run("email", func(t *testing.T) {
		f := newAuthFixture("")
		f.users.On("FindByUsername", ctx, "testuser").Return(nil, gorm.ErrRecordNotFound)
		f.users.On("FindByEmail", ctx, "test@example.com").Return(&models.User{Email: "test@example.com"}, nil)

		_, err := f.svc.Register(ctx, dto.RegisterRequest{Username: "testuser", Password: "password123", Email: "test@example.com"})

		assert.Equal(t, ErrEmailInUse, err)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestRegister_MailFailureKeepsAccount(t *testing.T) {
	f := newAuthFixture("")
	ctx := context.Background()

	f.users.On("FindByUsername", ctx, "testuser").Return(nil, gorm.ErrRecordNotFound)
	f.users.On("FindByEmail", ctx, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.users.On("Create", ctx, mock.Anything).Return(nil)
	f.codes.On("Save", ctx, repository.PurposeVerification, "test@example.com", mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("Send", ctx, "test@example.com", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	user, err := f.svc.Register(ctx, dto.RegisterRequest{Username: "testuser", Password: "password123", Email: "test@example.com"})

	require.NoError(t, err)
	assert.NotNil(t, user)
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture("")
	ctx := context.Background()
	user := &models.User{ID: userA, Username: "testuser", Password: hashed(t, "password123"), Role: models.RoleUser}

	f.users.On("FindByUsername", ctx, "testuser").Return(user, nil)
	f.users.On("Update", ctx, user).Return(nil)
	f.tokens.On("Create", ctx, mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	resp, err := f.svc.Login(ctx, "testuser", "password123")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, userA, resp.UserID)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	require.NotNil(t, user.LastLogin)
	assert.Equal(t, fixedNow, *user.LastLogin)
	f.tokens.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture("")
		f.users.On("FindByUsername", ctx, "testuser").Return(&models.User{ID: userA, Password: hashed(t, "password123")}, nil)

		resp, err := f.svc.Login(ctx, "testuser", "wrongpassword")

		assert.Equal(t, ErrInvalidCredentials, err)
		assert.Nil(t, resp)
		f.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthFixture("")
		f.users.On("FindByUsername", ctx, "nobody").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.Login(ctx, "nobody", "password123")

		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newAuthFixture("")
		f.users.On("FindByUsername", ctx, "testuser").Return(nil, errors.New("db down"))

		_, err := f.svc.Login(ctx, "testuser", "password123")

		assert.Equal(t, apperrors.KindUnknown, apperrors.KindOf(err))
	})
}

func TestValidateToken(t *testing.T) {
	f := newAuthFixture("")
	user := &models.User{ID: userA, Username: "alice", Role: models.RoleAdmin}

	token, err := f.svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := f.svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userA, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	t.Run("expired", func(t *testing.T) {
		f.svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
		defer func() { f.svc.now = func() time.Time { return fixedNow } }()

		_, err := f.svc.ValidateToken(token)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("other secret", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			UserID: userA,
			Role:   models.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
			},
		})
		signed, err := forged.SignedString([]byte("another-secret"))
		require.NoError(t, err)

		_, err = f.svc.ValidateToken(signed)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.svc.ValidateToken("not.a.token")
		assert.Equal(t, ErrInvalidToken, err)
	})
}

func TestRefresh_RotatesToken(t *testing.T) {
	f := newAuthFixture("")
	ctx := context.Background()
	stored := &models.RefreshToken{ID: "rt-1", UserID: userA, Token: "old", ExpiresAt: fixedNow.Add(time.Hour)}

	f.tokens.On("FindByToken", ctx, "old").Return(stored, nil)
	f.users.On("FindByID", ctx, userA).Return(alice(), nil)
	f.tokens.On("Revoke", ctx, "rt-1").Return(nil)
	f.tokens.On("Create", ctx, mock.MatchedBy(func(rt *models.RefreshToken) bool {
		return rt.UserID == userA && rt.ExpiresAt.Equal(fixedNow.Add(7*24*time.Hour))
	})).Return(nil)

	resp, err := f.svc.Refresh(ctx, "old")

	require.NoError(t, err)
	assert.NotEqual(t, "old", resp.RefreshToken)
	assert.Equal(t, "alice", resp.Username)
	f.tokens.AssertExpectations(t)
	f.tx.AssertNumberOfCalls(t, "WithinTx", 1)
}

func TestRefresh_Rejected(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown", func(t *testing.T) {
		f := newAuthFixture("")
		f.tokens.On("FindByToken", ctx, "nope").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.Refresh(ctx, "nope")
		assert.Equal(t, ErrInvalidRefreshToken, err)
	})

	t.Run("revoked", func(t *testing.T) {
		f := newAuthFixture("")
		f.tokens.On("FindByToken", ctx, "old").Return(&models.RefreshToken{ID: "rt-1", Revoked: true, ExpiresAt: fixedNow.Add(time.Hour)}, nil)

		_, err := f.svc.Refresh(ctx, "old")
		assert.Equal(t, ErrInvalidRefreshToken, err)
		f.tx.AssertNotCalled(t, "WithinTx")
	})

	t.Run("expired is deleted", func(t *testing.T) {
		f := newAuthFixture("")
		f.tokens.On("FindByToken", ctx, "old").Return(&models.RefreshToken{ID: "rt-1", UserID: userA, ExpiresAt: fixedNow.Add(-time.Minute)}, nil)
		f.tokens.On("Delete", ctx, "rt-1").Return(nil)

		_, err := f.svc.Refresh(ctx, "old")
		assert.Equal(t, ErrExpiredRefreshToken, err)
		f.tokens.AssertExpectations(t)
	})

	t.Run("owner gone", func(t *testing.T) {
		f := newAuthFixture("")
		f.tokens.On("FindByToken", ctx, "old").Return(&models.RefreshToken{ID: "rt-1", UserID: userA, ExpiresAt: fixedNow.Add(time.Hour)}, nil)
		f.users.On("FindByID", ctx, userA).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.Refresh(ctx, "old")
		assert.Equal(t, ErrInvalidRefreshToken, err)
		f.tokens.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes", func(t *testing.T) {
		f := newAuthFixture("")
		f.tokens.On("FindByToken", ctx, "old").Return(&models.RefreshToken{ID: "rt-1"}, nil)
		f.tokens.On("Revoke", ctx, "rt-1").Return(nil)

		assert.NoError(t, f.svc.Logout(ctx, "old"))
		f.tokens.AssertExpectations(t)
	})

	t.Run("unknown token still succeeds", func(t *testing.T) {
		f := newAuthFixture("")
		f.tokens.On("FindByToken", ctx, "nope").Return(nil, gorm.ErrRecordNotFound)

		assert.NoError(t, f.svc.Logout(ctx, "nope"))
	})
}

func TestSendVerificationCode(t *testing.T) {
	ctx := context.Background()

	t.Run("mails a six digit code", func(t *testing.T) {
		f := newAuthFixture("")
		u := &models.User{ID: userA, Username: "alice", Email: "alice@example.com"}
		f.users.On("FindByID", ctx, userA).Return(u, nil)

		var saved string
		f.codes.On("Save", ctx, repository.PurposeVerification, "alice@example.com", mock.Anything, 15*time.Minute).
			Run(func(args mock.Arguments) { saved = args.String(3) }).
			Return(nil)
		f.mailer.On("Send", ctx, "alice@example.com", "Verify your email", mock.MatchedBy(func(body string) bool {
			return saved != "" && regexp.MustCompile(`\b`+saved+`\b`).MatchString(body)
		})).Return(nil)

		require.NoError(t, f.svc.SendVerificationCode(ctx, userA))
		assert.Regexp(t, `^[0-9]{6}$`, saved)
	})

	t.Run("already verified", func(t *testing.T) {
		f := newAuthFixture("")
		f.users.On("FindByID", ctx, userA).Return(&models.User{ID: userA, IsVerified: true}, nil)

		assert.Equal(t, ErrAlreadyVerified, f.svc.SendVerificationCode(ctx, userA))
		f.codes.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("matching code", func(t *testing.T) {
		f := newAuthFixture("")
		u := &models.User{ID: userA, Email: "alice@example.com"}
		f.codes.On("Get", ctx, repository.PurposeVerification, "alice@example.com").Return("123456", nil)
		f.users.On("FindByEmail", ctx, "alice@example.com").Return(u, nil)
		f.users.On("Update", ctx, u).Return(nil)
		f.codes.On("Delete", ctx, repository.PurposeVerification, "alice@example.com").Return(nil)

		require.NoError(t, f.svc.VerifyEmail(ctx, "Alice@example.com", "123456"))
		assert.True(t, u.IsVerified)
		f.codes.AssertExpectations(t)
	})

	t.Run("wrong code", func(t *testing.T) {
		f := newAuthFixture("")
		f.codes.On("Get", ctx, repository.PurposeVerification, "alice@example.com").Return("123456", nil)

		assert.Equal(t, ErrInvalidCode, f.svc.VerifyEmail(ctx, "alice@example.com", "654321"))
		f.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("expired code", func(t *testing.T) {
		f := newAuthFixture("")
		f.codes.On("Get", ctx, repository.PurposeVerification, "alice@example.com").Return("", repository.ErrCodeNotFound)

		assert.Equal(t, ErrInvalidCode, f.svc.VerifyEmail(ctx, "alice@example.com", "123456"))
	})
}

func TestSendPasswordResetKey(t *testing.T) {
	ctx := context.Background()

	t.Run("known address", func(t *testing.T) {
		f := newAuthFixture("")
		f.users.On("FindByEmail", ctx, "alice@example.com").Return(&models.User{ID: userA, Username: "alice", Email: "alice@example.com"}, nil)
		f.codes.On("Save", ctx, repository.PurposePasswordReset, "alice@example.com", mock.MatchedBy(func(key string) bool {
			return regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(key)
		}), time.Hour).Return(nil)
		f.mailer.On("Send", ctx, "alice@example.com", "Reset your password", mock.Anything).Return(nil)

		require.NoError(t, f.svc.SendPasswordResetKey(ctx, "alice@example.com"))
		f.codes.AssertExpectations(t)
		f.mailer.AssertExpectations(t)
	})

	t.Run("unknown address is silent", func(t *testing.T) {
		f := newAuthFixture("")
		f.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

		assert.NoError(t, f.svc.SendPasswordResetKey(ctx, "ghost@example.com"))
		f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	key := "0123456789abcdef0123456789abcdef"

	t.Run("replaces password and signs out everywhere", func(t *testing.T) {
		f := newAuthFixture("")
		u := &models.User{ID: userA, Email: "alice@example.com", Password: hashed(t, "old-password")}
		f.codes.On("Get", ctx, repository.PurposePasswordReset, "alice@example.com").Return(key, nil)
		f.users.On("FindByEmail", ctx, "alice@example.com").Return(u, nil)
		f.users.On("Update", ctx, u).Return(nil)
		f.tokens.On("RevokeAllForUser", ctx, userA).Return(nil)
		f.codes.On("Delete", ctx, repository.PurposePasswordReset, "alice@example.com").Return(nil)

		require.NoError(t, f.svc.ResetPassword(ctx, "alice@example.com", key, "new-password"))
		assert.NoError(t, auth.VerifyPassword(u.Password, "new-password"))
		f.tokens.AssertExpectations(t)
		f.codes.AssertExpectations(t)
	})

	t.Run("revocation failure keeps the key", func(t *testing.T) {
		f := newAuthFixture("")
		u := &models.User{ID: userA, Email: "alice@example.com"}
		f.codes.On("Get", ctx, repository.PurposePasswordReset, "alice@example.com").Return(key, nil)
		f.users.On("FindByEmail", ctx, "alice@example.com").Return(u, nil)
		f.users.On("Update", ctx, u).Return(nil)
		f.tokens.On("RevokeAllForUser", ctx, userA).Return(errors.New("db down"))

		err := f.svc.ResetPassword(ctx, "alice@example.com", key, "new-password")

		assert.Equal(t, apperrors.KindUnknown, apperrors.KindOf(err))
		f.codes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong key", func(t *testing.T) {
		f := newAuthFixture("")
		f.codes.On("Get", ctx, repository.PurposePasswordReset, "alice@example.com").Return(key, nil)

		assert.Equal(t, ErrInvalidCode, f.svc.ResetPassword(ctx, "alice@example.com", "ffffffffffffffffffffffffffffffff", "new-password"))
	})
}

func TestNumericCodeAndHexKey(t *testing.T) {
	code, err := numericCode(6)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]{6}$`, code)

	key, err := hexKey(32)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{32}$`, key)
}
