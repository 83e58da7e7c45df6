package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"recipehub/internal/apperrors"
	"recipehub/internal/config"
	"recipehub/internal/email"
	"recipehub/internal/microservices/http-api/dto"
	"recipehub/internal/microservices/http-api/models"
	"recipehub/internal/microservices/http-api/repository"
	"recipehub/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Claims carried by access tokens.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, username, password string) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(tokenString string) (*Claims, error)

	SendVerificationCode(ctx context.Context, userID string) error
	VerifyEmail(ctx context.Context, email, code string) error
	SendPasswordResetKey(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, key, newPassword string) error
}

type authService struct {
	tx               repository.TxManager
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	codes            repository.CodeStore
	mailer           email.Sender
	logger           *zap.Logger

	jwtSecret       string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	adminCode       string
	verificationTTL time.Duration
	resetTTL        time.Duration
	now             func() time.Time
}

func NewAuthService(
	tx repository.TxManager,
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	codes repository.CodeStore,
	mailer email.Sender,
	cfg *config.Config,
	logger *zap.Logger,
) AuthService {
	return &authService{
		tx:               tx,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		codes:            codes,
		mailer:           mailer,
		logger:           logger,
		jwtSecret:        cfg.JWTSecret,
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
		adminCode:        cfg.AdminCode,
		verificationTTL:  cfg.VerificationCodeTTL,
		resetTTL:         cfg.PasswordResetTTL,
		now:              time.Now,
	}
}

// Register creates the account and mails a verification code. The account
// gets the admin role only when a non-empty admin code is configured and matches.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrNameInUse
	}
	if _, err := s.userRepo.FindByEmail(ctx, emailAddr); err == nil {
		return nil, ErrEmailInUse
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	role := models.RoleUser
	if s.adminCode != "" && subtle.ConstantTimeCompare([]byte(req.AdminCode), []byte(s.adminCode)) == 1 {
		role = models.RoleAdmin
	}

	now := s.now()
	user := &models.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     emailAddr,
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, conflictErr(err, "username or email already in use")
	}

	// the account exists either way; the code can be re-sent
	if err := s.issueVerificationCode(ctx, user); err != nil {
		s.logger.Warn("failed to send verification code", zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(err)
		}
		// same work as a real comparison so unknown users are not detectable by timing
		auth.BurnCompare(password)
		return nil, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token: the presented one is revoked and a new pair issued.
func (s *authService) Refresh(ctx context.Context, refreshTokenString string) (*dto.AuthResponse, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, apperrors.Wrap(err)
	}
	if refreshToken.Revoked {
		return nil, ErrInvalidRefreshToken
	}
	if s.now().After(refreshToken.ExpiresAt) {
		if err := s.refreshTokenRepo.Delete(ctx, refreshToken.ID); err != nil {
			s.logger.Warn("failed to delete expired refresh token", zap.String("token_id", refreshToken.ID), zap.Error(err))
		}
		return nil, ErrExpiredRefreshToken
	}

	var resp *dto.AuthResponse
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}
		if err := s.refreshTokenRepo.Revoke(ctx, refreshToken.ID); err != nil {
			return err
		}
		resp, err = s.issueTokens(ctx, user)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, refreshTokenString string) error {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("logout lookup failed", zap.Error(err))
		}
		return nil
	}
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken.ID); err != nil {
		s.logger.Warn("failed to revoke refresh token", zap.String("token_id", refreshToken.ID), zap.Error(err))
	}
	return nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	now := s.now()
	refreshToken := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(s.refreshTokenTTL),
		CreatedAt: now,
	}
	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}
	return refreshToken.Token, nil
}

func (s *authService) SendVerificationCode(ctx context.Context, userID string) error {
	if !validID(userID) {
		return apperrors.NotFound("user")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return lookupErr(err, "user")
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	return apperrors.Wrap(s.issueVerificationCode(ctx, user))
}

func (s *authService) issueVerificationCode(ctx context.Context, user *models.User) error {
	code, err := numericCode(6)
	if err != nil {
		return err
	}
	if err := s.codes.Save(ctx, repository.PurposeVerification, user.Email, code, s.verificationTTL); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	body := fmt.Sprintf("Hi %s,\n\nyour verification code is %s. It expires in %s.\n", user.Username, code, s.verificationTTL)
	return s.mailer.Send(ctx, user.Email, "Verify your email", body)
}

func (s *authService) VerifyEmail(ctx context.Context, emailAddr, code string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if err := s.checkCode(ctx, repository.PurposeVerification, emailAddr, code); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		return lookupErr(err, "user")
	}
	if !user.IsVerified {
		user.IsVerified = true
		user.UpdatedAt = s.now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return apperrors.Wrap(err)
		}
	}
	if err := s.codes.Delete(ctx, repository.PurposeVerification, emailAddr); err != nil {
		s.logger.Warn("failed to delete verification code", zap.Error(err))
	}
	return nil
}

// SendPasswordResetKey answers success for unknown addresses so accounts cannot be probed.
func (s *authService) SendPasswordResetKey(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	user, err := s.userRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Wrap(err)
	}

	key, err := hexKey(32)
	if err != nil {
		return apperrors.Wrap(err)
	}
	if err := s.codes.Save(ctx, repository.PurposePasswordReset, user.Email, key, s.resetTTL); err != nil {
		return apperrors.Wrap(err)
	}
	body := fmt.Sprintf("Hi %s,\n\nuse this key to reset your password: %s\nIt expires in %s.\n", user.Username, key, s.resetTTL)
	return apperrors.Wrap(s.mailer.Send(ctx, user.Email, "Reset your password", body))
}

func (s *authService) ResetPassword(ctx context.Context, emailAddr, key, newPassword string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if err := s.checkCode(ctx, repository.PurposePasswordReset, emailAddr, key); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		return lookupErr(err, "user")
	}
	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.Wrap(err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user.Password = hashed
		user.UpdatedAt = s.now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		return s.refreshTokenRepo.RevokeAllForUser(ctx, user.ID)
	})
	if err != nil {
		return apperrors.Wrap(err)
	}

	if err := s.codes.Delete(ctx, repository.PurposePasswordReset, emailAddr); err != nil {
		s.logger.Warn("failed to delete password reset key", zap.Error(err))
	}
	return nil
}

func (s *authService) checkCode(ctx context.Context, purpose repository.CodePurpose, emailAddr, given string) error {
	stored, err := s.codes.Get(ctx, purpose, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return ErrInvalidCode
		}
		return apperrors.Wrap(err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(given)) != 1 {
		return ErrInvalidCode
	}
	return nil
}

// numericCode returns n random decimal digits.
func numericCode(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// hexKey returns a random key of n hex characters.
func hexKey(n int) (string, error) {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf)[:n], nil
}
