package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-management-api/internal/domain/apperr"
	"github.com/oksasatya/project-management-api/internal/domain/entity"
	repo "github.com/oksasatya/project-management-api/internal/domain/repository"
	"github.com/oksasatya/project-management-api/pkg/helpers"
	"github.com/oksasatya/project-management-api/pkg/mailer"
	tpl "github.com/oksasatya/project-management-api/pkg/mailer/templates"
)

// Cache key namespaces for one-time tokens.
const (
	verifyKeyPrefix = "email_verification_"
	resetKeyPrefix  = "password_reset_"
)

func keyVerifyToken(t string) string { return verifyKeyPrefix + t }
func keyResetToken(t string) string  { return resetKeyPrefix + t }

// Stable error codes returned by the auth flows.
const (
	CodeEmailTaken          = "email_taken"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeAccountDeactivated  = "account_deactivated"
	CodeInvalidVerifyToken  = "invalid_verification_token"
	CodeInvalidResetToken   = "invalid_reset_token"
	CodeAlreadyVerified     = "email_already_verified"
	CodeUserNotFound        = "user_not_found"
	CodeWrongPassword       = "wrong_current_password"
	CodeInvalidRole         = "invalid_role"
	CodeInvalidAccessToken  = "invalid_access_token"
	CodeVerificationNotSent = "verification_not_sent"
	CodePasswordTooLong     = "password_too_long"
)

// PasswordHasher is the one-way function used for every password write.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type AuthConfig struct {
	ClientURL      string
	VerifyTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	// ConcealUnknownEmail makes ForgotPassword succeed silently for unknown
	// addresses instead of returning not found.
	ConcealUnknownEmail bool
	Brand               tpl.Brand
}

// AuthService runs the credential lifecycle: registration, login, email
// verification and password reset/change. Each call is independent; the only
// shared state is the injected clients.
type AuthService struct {
	Users  repo.UserRepository
	Cache  repo.TokenCache
	Hasher PasswordHasher
	JWT    *helpers.JWTManager
	Mailer mailer.Sender
	Logger *logrus.Logger
	Cfg    AuthConfig

	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repo.UserRepository, cache repo.TokenCache, hasher PasswordHasher, jwt *helpers.JWTManager, m mailer.Sender, logger *logrus.Logger, cfg AuthConfig) *AuthService {
	if cfg.VerifyTokenTTL <= 0 {
		cfg.VerifyTokenTTL = time.Hour
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = 30 * time.Minute
	}
	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")
	return &AuthService{
		Users:  users,
		Cache:  cache,
		Hasher: hasher,
		JWT:    jwt,
		Mailer: m,
		Logger: logger,
		Cfg:    cfg,
		Now:    time.Now,
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      entity.Role
}

type AuthResult struct {
	User   entity.UserProfile `json:"user"`
	Tokens helpers.TokenPair  `json:"token"`
}

type RegisterResult struct {
	AuthResult
	VerificationEmailSent bool `json:"verificationEmailSent"`
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *AuthService) internal(code, msg string, err error, fields logrus.Fields) error {
	helpers.LogError(s.Logger, msg, err, fields)
	return apperr.Internal(code, err)
}

// Register creates an unverified account, mails a verification link and
// returns the profile with a fresh token pair. A failed verification email
// does not undo the registration; it is reported in VerificationEmailSent.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := entity.NormalizeEmail(in.Email)
	role := in.Role
	if role == "" {
		role = entity.DefaultRole
	}
	if !role.Valid() {
		return nil, apperr.New(apperr.KindBadRequest, CodeInvalidRole, "invalid role")
	}

	existing, err := s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, apperr.New(apperr.KindConflict, CodeEmailTaken, "user already exists with this email")
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return nil, s.internal("store_unavailable", "lookup user by email failed", err, nil)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       email,
		Password:    hash,
		Role:        role,
		IsActive:    true,
		Preferences: entity.DefaultPreferences(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperr.New(apperr.KindConflict, CodeEmailTaken, "user already exists with this email")
		}
		return nil, s.internal("store_unavailable", "create user failed", err, nil)
	}

	sent := true
	if err := s.sendVerification(ctx, u); err != nil {
		sent = false
		helpers.LogWarn(s.Logger, "verification email not sent", err, logrus.Fields{"user_id": u.ID})
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, err
	}
	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": u.ID, "role": u.Role})
	return &RegisterResult{AuthResult: AuthResult{User: u.Profile(), Tokens: pair}, VerificationEmailSent: sent}, nil
}

// VerifyEmail consumes a verification token and marks the account verified.
// Unknown, expired and already used tokens are indistinguishable. The token
// is claimed before the write, so concurrent calls have one winner.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	invalid := apperr.New(apperr.KindUnauthorized, CodeInvalidVerifyToken, "invalid or expired verification token")
	if strings.TrimSpace(token) == "" {
		return invalid
	}
	key := keyVerifyToken(token)
	uid, err := s.Cache.Get(ctx, key)
	if errors.Is(err, repo.ErrCacheMiss) {
		return invalid
	}
	if err != nil {
		return s.internal("cache_unavailable", "read verification token failed", err, nil)
	}

	u, err := s.loadUser(ctx, uid)
	if err != nil {
		return err
	}
	if u.IsEmailVerified {
		return apperr.New(apperr.KindBadRequest, CodeAlreadyVerified, "email is already verified")
	}

	claimed, err := s.Cache.Consume(ctx, key, uid)
	if err != nil {
		return s.internal("cache_unavailable", "consume verification token failed", err, logrus.Fields{"user_id": uid})
	}
	if !claimed {
		return invalid
	}

	u.IsEmailVerified = true
	if err := s.Users.Update(ctx, u); err != nil {
		return s.internal("store_unavailable", "persist verification failed", err, logrus.Fields{"user_id": u.ID})
	}
	helpers.LogInfo(s.Logger, "email verified", logrus.Fields{"user_id": u.ID})
	return nil
}

// ReverifyEmail issues a fresh verification link. Earlier links stay valid
// until their own expiry.
func (s *AuthService) ReverifyEmail(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.New(apperr.KindUnauthorized, CodeUserNotFound, "user with email not found")
	}
	if err != nil {
		return s.internal("store_unavailable", "lookup user by email failed", err, nil)
	}
	if u.IsEmailVerified {
		return apperr.New(apperr.KindBadRequest, CodeAlreadyVerified, "email already verified")
	}
	if err := s.sendVerification(ctx, u); err != nil {
		return s.internal(CodeVerificationNotSent, "resend verification failed", err, logrus.Fields{"user_id": u.ID})
	}
	return nil
}

// Login verifies the password before the active flag; a deactivated account
// is reported only to a caller that supplied the right password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := apperr.New(apperr.KindUnauthorized, CodeInvalidCredentials, "invalid credentials")

	u, err := s.Users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		s.burnHash(password)
		return nil, invalid
	}
	if err != nil {
		return nil, s.internal("store_unavailable", "lookup user by email failed", err, nil)
	}
	if !s.Hasher.Verify(password, u.Password) {
		return nil, invalid
	}
	if !u.IsActive {
		return nil, apperr.New(apperr.KindUnauthorized, CodeAccountDeactivated, "account is deactivated")
	}

	now := s.now()
	if err := s.Users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return nil, s.internal("store_unavailable", "update last login failed", err, logrus.Fields{"user_id": u.ID})
	}
	u.LastLogin = &now

	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u.Profile(), Tokens: pair}, nil
}

// ChangePassword replaces the password of an authenticated user after
// checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.Hasher.Verify(currentPassword, u.Password) {
		return apperr.New(apperr.KindBadRequest, CodeWrongPassword, "current password is incorrect")
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	if err := s.Users.Update(ctx, u); err != nil {
		return s.internal("store_unavailable", "persist password failed", err, logrus.Fields{"user_id": u.ID})
	}
	helpers.LogInfo(s.Logger, "password changed", logrus.Fields{"user_id": u.ID})
	return nil
}

// ForgotPassword mails a reset link. Unknown emails yield not found unless
// ConcealUnknownEmail is set.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		if s.Cfg.ConcealUnknownEmail {
			return nil
		}
		return apperr.New(apperr.KindNotFound, CodeUserNotFound, "user not found")
	}
	if err != nil {
		return s.internal("store_unavailable", "lookup user by email failed", err, nil)
	}

	tok, err := helpers.GenOneTimeToken()
	if err != nil {
		return s.internal("token_generation_failed", "generate reset token failed", err, nil)
	}
	if err := s.Cache.Set(ctx, keyResetToken(tok), u.ID, s.Cfg.ResetTokenTTL); err != nil {
		return s.internal("cache_unavailable", "store reset token failed", err, logrus.Fields{"user_id": u.ID})
	}
	link := s.Cfg.ClientURL + "/reset-password/" + tok
	if err := s.send(ctx, tpl.ResetPassword, u, link, s.Cfg.ResetTokenTTL); err != nil {
		return s.internal("email_failed", "send reset email failed", err, logrus.Fields{"user_id": u.ID})
	}
	return nil
}

// ResetPassword sets a new password using a reset token. The token is
// claimed atomically before the write so two concurrent resets cannot both
// succeed.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	invalid := apperr.New(apperr.KindBadRequest, CodeInvalidResetToken, "invalid or expired reset token")
	if strings.TrimSpace(token) == "" {
		return invalid
	}
	key := keyResetToken(token)
	uid, err := s.Cache.Get(ctx, key)
	if errors.Is(err, repo.ErrCacheMiss) {
		return invalid
	}
	if err != nil {
		return s.internal("cache_unavailable", "read reset token failed", err, nil)
	}

	u, err := s.loadUser(ctx, uid)
	if err != nil {
		return err
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	claimed, err := s.Cache.Consume(ctx, key, uid)
	if err != nil {
		return s.internal("cache_unavailable", "consume reset token failed", err, logrus.Fields{"user_id": uid})
	}
	if !claimed {
		return invalid
	}

	u.Password = hash
	if err := s.Users.Update(ctx, u); err != nil {
		return s.internal("store_unavailable", "persist password failed", err, logrus.Fields{"user_id": u.ID})
	}
	helpers.LogInfo(s.Logger, "password reset", logrus.Fields{"user_id": u.ID})
	return nil
}

// Logout is an acknowledgment only; issued tokens stay valid until they expire.
func (s *AuthService) Logout(_ context.Context, userID string) error {
	helpers.LogInfo(s.Logger, "user logged out", logrus.Fields{"user_id": userID})
	return nil
}

// AuthenticateToken resolves an access token to an active user. When touch is
// set the user's last login is refreshed.
func (s *AuthService) AuthenticateToken(ctx context.Context, token string, touch bool) (*entity.User, error) {
	invalid := apperr.New(apperr.KindUnauthorized, CodeInvalidAccessToken, "invalid token or user not found")
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		return nil, invalid
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, s.internal("store_unavailable", "load token user failed", err, logrus.Fields{"user_id": claims.UserID})
	}
	if !u.IsActive {
		return nil, invalid
	}
	if touch {
		now := s.now()
		if err := s.Users.UpdateLastLogin(ctx, u.ID, now); err != nil {
			helpers.LogWarn(s.Logger, "update last login failed", err, logrus.Fields{"user_id": u.ID})
		} else {
			u.LastLogin = &now
		}
	}
	return u, nil
}

func (s *AuthService) loadUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, CodeUserNotFound, "user not found")
	}
	if err != nil {
		return nil, s.internal("store_unavailable", "load user failed", err, logrus.Fields{"user_id": id})
	}
	return u, nil
}

func (s *AuthService) sendVerification(ctx context.Context, u *entity.User) error {
	tok, err := helpers.GenOneTimeToken()
	if err != nil {
		return err
	}
	if err := s.Cache.Set(ctx, keyVerifyToken(tok), u.ID, s.Cfg.VerifyTokenTTL); err != nil {
		return err
	}
	link := s.Cfg.ClientURL + "/verify-email/" + tok
	return s.send(ctx, tpl.VerifyEmail, u, link, s.Cfg.VerifyTokenTTL)
}

func (s *AuthService) send(ctx context.Context, template string, u *entity.User, link string, ttl time.Duration) error {
	if s.Mailer == nil {
		return errors.New("mailer not configured")
	}
	now := s.now()
	data := tpl.NewEmailData(s.Cfg.Brand, template, u.FirstName, u.Email,
		tpl.WithActionURL(link),
		tpl.WithTime(now),
		tpl.WithExpiresIn(now, ttl),
	)
	subject, text, html, err := tpl.Render(template, data)
	if err != nil {
		return err
	}
	return s.Mailer.Send(ctx, mailer.Message{To: u.Email, Subject: subject, Text: text, HTML: html})
}

func (s *AuthService) issueTokens(u *entity.User) (helpers.TokenPair, error) {
	pair, err := s.JWT.GenerateTokenPair(helpers.Subject{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	})
	if err != nil {
		return helpers.TokenPair{}, s.internal("token_issue_failed", "generate tokens failed", err, logrus.Fields{"user_id": u.ID})
	}
	return pair, nil
}

// burnHash runs one password check against a throwaway hash so a miss costs
// the same as a wrong password.
// hashPassword reports input bcrypt cannot accept as a bad request.
func (s *AuthService) hashPassword(plain string) (string, error) {
	hash, err := s.Hasher.Hash(plain)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return "", apperr.New(apperr.KindBadRequest, CodePasswordTooLong, "password must be at most 72 bytes")
	}
	if err != nil {
		return "", s.internal("hash_failed", "hash password failed", err, nil)
	}
	return hash, nil
}

func (s *AuthService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash("not-a-real-password")
	})
	_ = s.Hasher.Verify(password, s.dummyHash)
}
