package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// Default refresh token lifetime; overridable via WithRefreshExpiry.
const defaultRefreshExpiry = 7 * 24 * time.Hour

// ProfileProvisioner creates or refreshes the application-level profile row
// for a user. The auth service calls it on sign-up and first OAuth sign-in so
// every identity has a matching profile.
type ProfileProvisioner interface {
	EnsureProfile(ctx context.Context, userID, email, fullName string) error
}

// Repos holds all repository dependencies for the Service.
type Repos struct {
	Users    UserRepo    // Repository for user identities
	Sessions SessionRepo // Repository for session rows
}

// Service implements the auth subsystem: sign-up, sign-in, sign-out, session
// issuance and refresh. State changes are published on the event broadcaster.
type Service struct {
	repos         Repos
	tokens        *TokenCreator
	events        *Broadcaster
	provisioner   ProfileProvisioner
	refreshExpiry time.Duration
	nowTime       func() time.Time // injectable for testing
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithProfileProvisioner wires profile creation into sign-up and OAuth
// sign-in.
func WithProfileProvisioner(p ProfileProvisioner) ServiceOption {
	return func(s *Service) {
		s.provisioner = p
	}
}

// WithRefreshExpiry overrides the refresh token lifetime.
func WithRefreshExpiry(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.refreshExpiry = d
	}
}

// NewService initializes the auth service with required dependencies.
func NewService(repos Repos, tokens *TokenCreator, events *Broadcaster, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, fmt.Errorf("[NewService] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, fmt.Errorf("[NewService] Sessions repo is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("[NewService] token creator is required")
	}
	if events == nil {
		return nil, fmt.Errorf("[NewService] event broadcaster is required")
	}

	service := &Service{
		repos:         repos,
		tokens:        tokens,
		events:        events,
		refreshExpiry: defaultRefreshExpiry,
		nowTime:       time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Events returns the broadcaster auth state changes are published on.
func (s *Service) Events() *Broadcaster {
	return s.events
}

// SignUp registers a new user with an email/password credential and
// provisions its profile row.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return nil, err
	}

	if existing, err := s.repos.Users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Service SignUp] hash password")
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Metadata:     map[string]string{"full_name": fullName},
		CreatedAt:    s.nowTime(),
	}
	if err := s.repos.Users.Upsert(ctx, user); err != nil {
		return nil, apperrors.Wrapf(err, "[Service SignUp] upsert user")
	}

	if err := s.ensureProfile(ctx, user, fullName); err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn authenticates an email/password credential and issues a session.
// Publishes SIGNED_IN on success.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, *User, error) {
	user, err := s.repos.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || user == nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if user.PasswordHash == "" || !CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repos.Users.SetLastLogin(ctx, user.ID, s.nowTime()); err != nil {
		// Best effort; a failed bookkeeping write must not fail the sign-in.
		_ = err
	}

	s.events.Publish(Event{Kind: EventSignedIn, User: user, Session: session})
	return session, user, nil
}

// SignInOAuth provisions (or finds) a user for an external identity and
// issues a session. subject is the provider-issued stable identifier.
func (s *Service) SignInOAuth(ctx context.Context, email, fullName, subject string) (*Session, *User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil || user == nil {
		user = &User{
			ID:        uuid.New().String(),
			Email:     email,
			Metadata:  map[string]string{"full_name": fullName, "oauth_subject": subject},
			CreatedAt: s.nowTime(),
		}
		if err := s.repos.Users.Upsert(ctx, user); err != nil {
			return nil, nil, apperrors.Wrapf(err, "[Service SignInOAuth] upsert user")
		}
		if err := s.ensureProfile(ctx, user, fullName); err != nil {
			return nil, nil, err
		}
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.events.Publish(Event{Kind: EventSignedIn, User: user, Session: session})
	return session, user, nil
}

// SignOut deletes the session identified by the refresh token and publishes
// SIGNED_OUT. Deleting an unknown token is not an error.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		if err := s.repos.Sessions.DeleteByRefreshToken(ctx, refreshToken); err != nil {
			return apperrors.Wrapf(err, "[Service SignOut] delete session")
		}
	}
	s.events.Publish(Event{Kind: EventSignedOut})
	return nil
}

// RefreshSession rotates the token pair for the session identified by the
// refresh token. The old refresh token is invalidated. Publishes
// TOKEN_REFRESHED on success.
func (s *Service) RefreshSession(ctx context.Context, refreshToken string) (*Session, *User, error) {
	session, err := s.repos.Sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil || session == nil {
		return nil, nil, apperrors.ErrSession
	}

	now := s.nowTime()
	if session.RefreshExpired(now) {
		_ = s.repos.Sessions.DeleteByRefreshToken(ctx, refreshToken)
		return nil, nil, apperrors.ErrSessionExpired
	}

	user, err := s.repos.Users.GetByID(ctx, session.UserID)
	if err != nil || user == nil {
		_ = s.repos.Sessions.DeleteByRefreshToken(ctx, refreshToken)
		return nil, nil, apperrors.ErrUserNotFound
	}

	rotated, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	if err := s.repos.Sessions.DeleteByRefreshToken(ctx, refreshToken); err != nil {
		return nil, nil, apperrors.Wrapf(err, "[Service RefreshSession] invalidate old session")
	}

	s.events.Publish(Event{Kind: EventTokenRefreshed, User: user, Session: rotated})
	return rotated, user, nil
}

// SessionByRefreshToken looks a session up without refreshing it. A missing
// session returns (nil, nil): absence is not an error.
func (s *Service) SessionByRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, nil
	}
	session, err := s.repos.Sessions.GetByRefreshToken(ctx, refreshToken)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Service SessionByRefreshToken] lookup")
	}
	if session == nil || session.RefreshExpired(s.nowTime()) {
		return nil, nil
	}
	return session, nil
}

// UserForSession resolves the user a session belongs to.
func (s *Service) UserForSession(ctx context.Context, session *Session) (*User, error) {
	if session == nil {
		return nil, apperrors.ErrSession
	}
	user, err := s.repos.Users.GetByID(ctx, session.UserID)
	if err != nil || user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// UserFromAccessToken verifies an access token and resolves its user.
func (s *Service) UserFromAccessToken(ctx context.Context, rawToken string) (*User, error) {
	claims, err := s.tokens.ParseAccessToken(rawToken)
	if err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByID(ctx, claims.UserID)
	if err != nil || user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// CleanupExpiredSessions removes sessions past their refresh expiry.
func (s *Service) CleanupExpiredSessions(ctx context.Context) error {
	return s.repos.Sessions.DeleteExpired(ctx, s.nowTime())
}

func (s *Service) issueSession(ctx context.Context, user *User) (*Session, error) {
	accessToken, expiresAt, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Service issueSession] create access token")
	}

	now := s.nowTime()
	session := &Session{
		UserID:           user.ID,
		AccessToken:      accessToken,
		RefreshToken:     uuid.New().String(),
		ExpiresAt:        expiresAt,
		RefreshExpiresAt: now.Add(s.refreshExpiry),
		CreatedAt:        now,
	}
	if err := s.repos.Sessions.Upsert(ctx, session); err != nil {
		return nil, apperrors.Wrapf(err, "[Service issueSession] upsert session")
	}
	return session, nil
}

func (s *Service) ensureProfile(ctx context.Context, user *User, fullName string) error {
	if s.provisioner == nil {
		return nil
	}
	if err := s.provisioner.EnsureProfile(ctx, user.ID, user.Email, fullName); err != nil {
		return apperrors.Wrapf(err, "[Service ensureProfile] provision profile")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
