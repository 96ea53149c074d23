package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"blog-server/internal/config"
	"blog-server/internal/models"
	"blog-server/internal/repository"
	"blog-server/internal/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Tests for hashPassword and checkPasswordHash

func TestHashAndCheckPassword(t *testing.T) {
	password := "mysecretpassword"
	pepper := "test-pepper-for-unit-tests"

	hashedPassword, err := hashPassword(password, pepper)
	require.NoError(t, err, "hashPassword should not return an error")
	require.NotEmpty(t, hashedPassword, "hashPassword should return a non-empty string")
	assert.NotEqual(t, password, hashedPassword, "Hashed password should not be equal to the original password")

	match := checkPasswordHash(password, hashedPassword, pepper)
	assert.True(t, match, "checkPasswordHash should return true for correct password and pepper")

	match = checkPasswordHash("wrongpassword", hashedPassword, pepper)
	assert.False(t, match, "checkPasswordHash should return false for incorrect password")

	// The pepper participates in the HMAC step before bcrypt, so a wrong
	// pepper fails even with the right password.
	match = checkPasswordHash(password, hashedPassword, "another-pepper")
	assert.False(t, match, "checkPasswordHash should return false for incorrect pepper")

	match = checkPasswordHash(password, "not-a-bcrypt-hash", pepper)
	assert.False(t, match, "checkPasswordHash should return false for invalid hash format")

	hashedEmpty, err := hashPassword("", pepper)
	require.NoError(t, err, "hashPassword should handle empty password")
	require.NotEmpty(t, hashedEmpty)
	assert.True(t, checkPasswordHash("", hashedEmpty, pepper), "checkPasswordHash should verify empty password")
	assert.False(t, checkPasswordHash("nonempty", hashedEmpty, pepper))
}

// --- Fakes ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return models.ErrEmailAlreadyExists
		}
	}
	user.ID = uuid.New()
	user.Created = time.Now()
	user.Modified = user.Created
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) UpdateRefreshToken(_ context.Context, id uuid.UUID, refreshToken *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.RefreshToken = refreshToken
	return nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) ListUsers(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

type fakeMailer struct {
	mu            sync.Mutex
	verifications []string
	resets        []string
	failNext      error
}

func (m *fakeMailer) SendVerificationLetter(email, rawToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.verifications = append(m.verifications, rawToken)
	return nil
}

func (m *fakeMailer) SendResetLetter(email, rawToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.resets = append(m.resets, rawToken)
	return nil
}

func (m *fakeMailer) lastVerification(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.verifications, "a verification letter should have been sent")
	return m.verifications[len(m.verifications)-1]
}

type serviceFixture struct {
	svc    AuthService
	repo   *fakeUserRepo
	store  repository.TokenStore
	mailer *fakeMailer
	codec  *token.Codec
	cfg    *config.Config
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	codec, err := token.NewCodec("test-key", []string{"HS256"})
	require.NoError(t, err)

	cfg := &config.Config{
		PasswordPepper:       "test-pepper",
		AccessTokenTTL:       10 * time.Minute,
		RefreshTokenTTL:      48 * time.Hour,
		VerificationTokenTTL: 3 * time.Minute,
		ResetTokenTTL:        3 * time.Minute,
	}

	repo := newFakeUserRepo()
	store := repository.NewMemoryTokenStore()
	letters := &fakeMailer{}
	svc := NewAuthService(repo, store, codec, letters, cfg, zap.NewNop())

	return &serviceFixture{svc: svc, repo: repo, store: store, mailer: letters, codec: codec, cfg: cfg}
}

func (f *serviceFixture) registerUser(t *testing.T, name, email, password string) *models.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.CreateUser(ctx, name, email, password))

	claims, err := f.codec.Verify(f.mailer.lastVerification(t))
	require.NoError(t, err)

	user, pair, err := f.svc.CompleteRegistration(ctx, claims)
	require.NoError(t, err)
	require.NotNil(t, pair)
	return user
}

// --- Registration ---

func TestCreateUser_InvalidInput(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	err := f.svc.CreateUser(ctx, "user", "not-an-email", "password123")
	assert.True(t, errors.Is(err, models.ErrInvalidInput), "invalid email format should be rejected")

	err = f.svc.CreateUser(ctx, "", "user@example.com", "password123")
	assert.True(t, errors.Is(err, models.ErrInvalidInput), "empty name should be rejected")

	err = f.svc.CreateUser(ctx, "user", "user@example.com", "")
	assert.True(t, errors.Is(err, models.ErrInvalidInput), "empty password should be rejected")
}

func TestCreateUser_PendingBlocksRepeat(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.CreateUser(ctx, "user", "user@example.com", "password123"))

	err := f.svc.CreateUser(ctx, "user", "user@example.com", "password123")
	require.Error(t, err, "a second registration before the letter expires should fail")
	assert.True(t, errors.Is(err, models.ErrVerificationPending))

	var pendingErr *models.VerificationPendingError
	require.True(t, errors.As(err, &pendingErr))
	assert.Greater(t, pendingErr.RetryAfter, time.Duration(0), "the error should carry the retry window")
}

func TestCreateUser_MailFailureRollsBackPending(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.mailer.failNext = errors.New("smtp down")
	err := f.svc.CreateUser(ctx, "user", "user@example.com", "password123")
	require.Error(t, err)

	// The pending record is gone, so a retry goes through immediately.
	require.NoError(t, f.svc.CreateUser(ctx, "user", "user@example.com", "password123"))
}

func TestCompleteRegistration_Success(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user := f.registerUser(t, "testuser", "user@example.com", "password123")
	assert.Equal(t, "testuser", user.Name)
	assert.Equal(t, "user@example.com", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)

	// The pending record is consumed, replaying the token finds nothing.
	claims, err := f.codec.Verify(f.mailer.lastVerification(t))
	require.NoError(t, err)
	_, _, err = f.svc.CompleteRegistration(ctx, claims)
	assert.True(t, errors.Is(err, models.ErrPendingNotFound), "a consumed verification token should not register twice")
}

func TestCompleteRegistration_NoPendingRecord(t *testing.T) {
	f := newServiceFixture(t)
	claims := token.NewVerificationClaims(uuid.Nil, "ghost@example.com", time.Minute)

	_, _, err := f.svc.CompleteRegistration(context.Background(), claims)
	assert.True(t, errors.Is(err, models.ErrPendingNotFound))
}

func TestCreateUser_ExistingEmail(t *testing.T) {
	f := newServiceFixture(t)
	f.registerUser(t, "user", "user@example.com", "password123")

	err := f.svc.CreateUser(context.Background(), "other", "user@example.com", "password456")
	assert.True(t, errors.Is(err, models.ErrEmailAlreadyExists))
}

// --- Login ---

func TestLogin(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	registered := f.registerUser(t, "user", "user@example.com", "password123")

	user, pair, err := f.svc.Login(ctx, "user@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	_, _, err = f.svc.Login(ctx, "user@example.com", "wrongpassword")
	assert.True(t, errors.Is(err, models.ErrInvalidCredentials))

	_, _, err = f.svc.Login(ctx, "nobody@example.com", "password123")
	assert.True(t, errors.Is(err, models.ErrInvalidCredentials), "unknown user should read the same as a bad password")
}

// --- Refresh rotation ---

func TestRefresh_RotatesAndInvalidatesOldToken(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerUser(t, "user", "user@example.com", "password123")

	_, pair, err := f.svc.Login(ctx, "user@example.com", "password123")
	require.NoError(t, err)

	newPair, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err, "first refresh should succeed")
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken, "refresh should rotate the refresh token")

	// Single use: replaying the consumed token fails.
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRefreshMismatch), "a replayed refresh token should mismatch")

	// The rotated token still works.
	_, err = f.svc.Refresh(ctx, newPair.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerUser(t, "user", "user@example.com", "password123")

	_, pair, err := f.svc.Login(ctx, "user@example.com", "password123")
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, pair.AccessToken)
	assert.True(t, errors.Is(err, models.ErrTokenInvalid), "an access token must not rotate the pair")
}

func TestRefresh_Garbage(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.Refresh(context.Background(), "this-is-not-a-jwt")
	assert.True(t, errors.Is(err, models.ErrTokenMalformed))
}

// --- Logout ---

func TestLogout_RevokesAccessAndClearsRefresh(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerUser(t, "user", "user@example.com", "password123")

	_, pair, err := f.svc.Login(ctx, "user@example.com", "password123")
	require.NoError(t, err)

	claims, err := f.codec.Verify(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, claims, pair.AccessToken))

	revoked, err := f.store.IsRevoked(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked, "the access token should be on the blocklist after logout")

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.True(t, errors.Is(err, models.ErrRefreshMismatch), "the stored refresh token should be cleared by logout")
}

// --- Password reset ---

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newServiceFixture(t)
	err := f.svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, models.ErrUserNotFound))
}

func TestPasswordResetFlow(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerUser(t, "user", "user@example.com", "oldpassword")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "user@example.com"))
	require.NotEmpty(t, f.mailer.resets)

	// A second request inside the window is blocked.
	err := f.svc.RequestPasswordReset(ctx, "user@example.com")
	assert.True(t, errors.Is(err, models.ErrVerificationPending))

	resetClaims, err := f.codec.Verify(f.mailer.resets[len(f.mailer.resets)-1])
	require.NoError(t, err)
	assert.Equal(t, token.TypeReset, resetClaims.TokenType)

	require.NoError(t, f.svc.UpdatePassword(ctx, resetClaims.UserID, "newpassword"))

	_, _, err = f.svc.Login(ctx, "user@example.com", "oldpassword")
	assert.True(t, errors.Is(err, models.ErrInvalidCredentials), "the old password should stop working")

	_, _, err = f.svc.Login(ctx, "user@example.com", "newpassword")
	require.NoError(t, err, "the new password should log in")
}

func TestUpdatePassword_InvalidatesRefreshToken(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := f.registerUser(t, "user", "user@example.com", "password123")

	_, pair, err := f.svc.Login(ctx, "user@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdatePassword(ctx, user.ID, "password456"))

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.True(t, errors.Is(err, models.ErrRefreshMismatch), "a password change should end every session")
}
