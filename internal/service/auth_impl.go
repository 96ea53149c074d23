package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"blog-server/internal/config"
	"blog-server/internal/mailer"
	"blog-server/internal/models"
	"blog-server/internal/repository"
	"blog-server/internal/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Margin added to the revocation TTL so a revoked token outlives any
// clock skew between the service and the store.
const revocationMargin = 5 * time.Second

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

// pendingRegistration is the cache payload parked between the two
// registration phases.
type pendingRegistration struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

type authServiceImpl struct {
	userRepo   repository.UserRepository
	tokenStore repository.TokenStore
	codec      *token.Codec
	mailer     mailer.Mailer
	cfg        *config.Config
	logger     *zap.Logger
}

// NewAuthService creates a new instance of authServiceImpl.
func NewAuthService(
	userRepo repository.UserRepository,
	tokenStore repository.TokenStore,
	codec *token.Codec,
	letters mailer.Mailer,
	cfg *config.Config,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		tokenStore: tokenStore,
		codec:      codec,
		mailer:     letters,
		cfg:        cfg,
		logger:     logger.Named("AuthService"),
	}
}

// CreateUser parks a registration in the pending cache and mails a
// verification token.
func (s *authServiceImpl) CreateUser(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	logFields := []zap.Field{zap.String("name", name), zap.String("email", email)}
	s.logger.Info("Starting user registration", logFields...)

	if _, err := mail.ParseAddress(email); err != nil {
		s.logger.Warn("Registration attempt with invalid email format", append(logFields, zap.Error(err))...)
		return fmt.Errorf("invalid email format: %w", models.ErrInvalidInput)
	}
	if name == "" || password == "" {
		s.logger.Warn("Registration attempt with empty name or password", logFields...)
		return models.ErrInvalidInput
	}

	existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		s.logger.Error("Error checking existing email during registration", append(logFields, zap.Error(err))...)
		return fmt.Errorf("error checking existing email: %w", err)
	}
	if existingUser != nil {
		s.logger.Warn("Registration attempt for existing email", logFields...)
		return models.ErrEmailAlreadyExists
	}

	// A letter already on its way blocks a new one until it expires.
	remaining, pending, err := s.tokenStore.PendingTTL(ctx, repository.PendingSignup, email)
	if err != nil {
		s.logger.Error("Failed to check pending registration", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to check pending registration: %w", err)
	}
	if pending {
		s.logger.Info("Registration already pending", append(logFields, zap.Duration("retryAfter", remaining))...)
		return &models.VerificationPendingError{RetryAfter: remaining}
	}

	hashedPassword, err := hashPassword(password, s.cfg.PasswordPepper)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to hash password: %w", err)
	}

	payload, err := json.Marshal(pendingRegistration{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to encode pending registration: %w", err)
	}
	if err := s.tokenStore.SetPending(ctx, repository.PendingSignup, email, payload, s.cfg.VerificationTokenTTL); err != nil {
		s.logger.Error("Failed to store pending registration", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to store pending registration: %w", err)
	}

	verificationToken, err := s.codec.Encode(token.NewVerificationClaims(uuid.Nil, email, s.cfg.VerificationTokenTTL))
	if err != nil {
		s.logger.Error("Failed to sign verification token", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to sign verification token: %w", err)
	}

	if err := s.mailer.SendVerificationLetter(email, verificationToken); err != nil {
		// Drop the pending record so the user can retry right away.
		if delErr := s.tokenStore.DeletePending(ctx, repository.PendingSignup, email); delErr != nil {
			s.logger.Error("Failed to drop pending registration after mail failure", append(logFields, zap.Error(delErr))...)
		}
		return fmt.Errorf("failed to send verification letter: %w", err)
	}

	s.logger.Info("Verification letter sent", logFields...)
	return nil
}

// CompleteRegistration creates the account parked under the verification
// token's email and issues the first token pair.
func (s *authServiceImpl) CompleteRegistration(ctx context.Context, claims *token.Claims) (*models.User, *models.TokenPair, error) {
	if claims == nil || claims.Email == "" {
		return nil, nil, models.ErrTokenInvalid
	}
	email := claims.Email
	log := s.logger.With(zap.String("email", email))
	log.Info("Completing registration")

	payload, err := s.tokenStore.GetPending(ctx, repository.PendingSignup, email)
	if err != nil {
		if errors.Is(err, models.ErrPendingNotFound) {
			log.Warn("Registration completion without pending record")
			return nil, nil, models.ErrPendingNotFound
		}
		log.Error("Failed to load pending registration", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to load pending registration: %w", err)
	}

	var pending pendingRegistration
	if err := json.Unmarshal(payload, &pending); err != nil {
		log.Error("Corrupted pending registration payload", zap.Error(err))
		return nil, nil, fmt.Errorf("corrupted pending registration payload: %w", err)
	}

	user := &models.User{
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// ErrEmailAlreadyExists passes through as is.
		return nil, nil, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.tokenStore.DeletePending(ctx, repository.PendingSignup, email); err != nil {
		// The record expires on its own, so only log.
		log.Error("Failed to delete pending registration", zap.Error(err))
	}

	log.Info("User registered successfully", zap.String("userID", user.ID.String()))
	return user, pair, nil
}

// Login authenticates a user and issues a token pair.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.logger.Info("Login attempt", zap.String("email", email))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("email", email))
			return nil, nil, models.ErrInvalidCredentials
		}
		s.logger.Error("Login failed: error getting user from repository", zap.Error(err), zap.String("email", email))
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !checkPasswordHash(password, user.PasswordHash, s.cfg.PasswordPepper) {
		s.logger.Warn("Login failed: invalid password", zap.String("email", email), zap.String("userID", user.ID.String()))
		return nil, nil, models.ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return user, pair, nil
}

// Refresh rotates the token pair after comparing the presented refresh
// token with the stored one.
func (s *authServiceImpl) Refresh(ctx context.Context, rawRefresh string) (*models.TokenPair, error) {
	s.logger.Info("Token refresh attempt")

	claims, err := s.codec.Verify(rawRefresh)
	if err != nil {
		s.logger.Warn("Refresh attempt with invalid token", zap.Error(err))
		return nil, err
	}
	if claims.TokenType != token.TypeRefresh {
		s.logger.Warn("Refresh attempt with wrong token type", zap.String("tokenType", claims.TokenType))
		return nil, models.ErrTokenInvalid
	}

	log := s.logger.With(zap.String("userID", claims.UserID.String()))
	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Warn("Refresh attempt for unknown user")
			return nil, models.ErrRefreshMismatch
		}
		log.Error("Failed to get user during refresh", zap.Error(err))
		return nil, fmt.Errorf("failed to get user during refresh: %w", err)
	}

	// Single use: the presented token must be the one issued last.
	if user.RefreshToken == nil || *user.RefreshToken != rawRefresh {
		log.Warn("Refresh attempt with stale or unknown refresh token")
		return nil, models.ErrRefreshMismatch
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Info("Token pair rotated successfully")
	return pair, nil
}

// Logout revokes the access token and clears the stored refresh token.
func (s *authServiceImpl) Logout(ctx context.Context, claims *token.Claims, rawAccess string) error {
	log := s.logger.With(zap.String("userID", claims.UserID.String()))
	log.Info("Logout attempt")

	remaining := claims.Remaining()
	if remaining < 0 {
		remaining = 0
	}
	if err := s.tokenStore.Revoke(ctx, rawAccess, claims.UserID, remaining+revocationMargin); err != nil {
		log.Error("Failed to revoke access token during logout", zap.Error(err))
		return fmt.Errorf("failed to revoke access token: %w", err)
	}

	if err := s.userRepo.UpdateRefreshToken(ctx, claims.UserID, nil); err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			log.Error("Failed to clear refresh token during logout", zap.Error(err))
			return fmt.Errorf("failed to clear refresh token: %w", err)
		}
		log.Warn("Logout for user missing in database")
	}

	log.Info("User logged out successfully")
	return nil
}

// RequestPasswordReset mails a reset token for an existing account.
func (s *authServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	log := s.logger.With(zap.String("email", email))
	log.Info("Password reset requested")

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		// ErrUserNotFound passes through as is.
		return err
	}

	remaining, pending, err := s.tokenStore.PendingTTL(ctx, repository.PendingReset, email)
	if err != nil {
		log.Error("Failed to check pending reset", zap.Error(err))
		return fmt.Errorf("failed to check pending reset: %w", err)
	}
	if pending {
		log.Info("Reset already pending", zap.Duration("retryAfter", remaining))
		return &models.VerificationPendingError{RetryAfter: remaining}
	}

	resetToken, err := s.codec.Encode(token.NewResetClaims(user.ID, email, s.cfg.ResetTokenTTL))
	if err != nil {
		log.Error("Failed to sign reset token", zap.Error(err))
		return fmt.Errorf("failed to sign reset token: %w", err)
	}

	if err := s.tokenStore.SetPending(ctx, repository.PendingReset, email, []byte(user.ID.String()), s.cfg.ResetTokenTTL); err != nil {
		log.Error("Failed to store pending reset", zap.Error(err))
		return fmt.Errorf("failed to store pending reset: %w", err)
	}

	if err := s.mailer.SendResetLetter(email, resetToken); err != nil {
		if delErr := s.tokenStore.DeletePending(ctx, repository.PendingReset, email); delErr != nil {
			log.Error("Failed to drop pending reset after mail failure", zap.Error(delErr))
		}
		return fmt.Errorf("failed to send reset letter: %w", err)
	}

	log.Info("Reset letter sent")
	return nil
}

// UpdatePassword sets a new password hash and invalidates the stored
// refresh token so every session has to log in again.
func (s *authServiceImpl) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	log := s.logger.With(zap.String("userID", userID.String()))
	log.Info("Updating user password")

	if newPassword == "" {
		return models.ErrInvalidInput
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		// ErrUserNotFound passes through as is.
		return err
	}

	newHash, err := hashPassword(newPassword, s.cfg.PasswordPepper)
	if err != nil {
		log.Error("Failed to hash new password", zap.Error(err))
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return err
	}
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, nil); err != nil && !errors.Is(err, models.ErrUserNotFound) {
		log.Error("Failed to clear refresh token after password update", zap.Error(err))
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	// Close the reset flow if one was open for this account.
	if err := s.tokenStore.DeletePending(ctx, repository.PendingReset, user.Email); err != nil {
		log.Error("Failed to delete pending reset after password update", zap.Error(err))
	}

	log.Info("User password updated successfully")
	return nil
}

// ListUsers returns all accounts.
func (s *authServiceImpl) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListUsers(ctx)
}

// issuePair signs a fresh access/refresh pair and persists the refresh
// token as the only valid one for the user.
func (s *authServiceImpl) issuePair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	accessClaims := token.NewAccessClaims(user.ID, user.Email, s.cfg.AccessTokenTTL)
	refreshClaims := token.NewRefreshClaims(user.ID, user.Email, s.cfg.RefreshTokenTTL)

	accessToken, err := s.codec.Encode(accessClaims)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, err := s.codec.Encode(refreshClaims)
	if err != nil {
		s.logger.Error("Failed to sign refresh token", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if err := s.userRepo.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		s.logger.Error("Failed to persist refresh token", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		AccessExpires:  accessClaims.ExpiresAt.Unix(),
		RefreshExpires: refreshClaims.ExpiresAt.Unix(),
	}, nil
}

// --- Helper Functions ---

// applyPepper applies HMAC-SHA256 using the pepper as the key.
func applyPepper(password, pepper string) []byte {
	h := hmac.New(sha256.New, []byte(pepper))
	h.Write([]byte(password))
	return h.Sum(nil)
}

// hashPassword generates a bcrypt hash of the password after applying the pepper.
func hashPassword(password, pepper string) (string, error) {
	pepperedPassword := applyPepper(password, pepper)
	bytes, err := bcrypt.GenerateFromPassword(pepperedPassword, bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash compares a plain text password (after applying pepper) with a stored hash.
func checkPasswordHash(password, hash, pepper string) bool {
	pepperedPassword := applyPepper(password, pepper)
	err := bcrypt.CompareHashAndPassword([]byte(hash), pepperedPassword)
	return err == nil
}
