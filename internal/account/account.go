// Package account implements sign up, sign in, sign out and session lookup
// on top of the user store, with bcrypt password hashes and signed session
// tokens. Session changes are pushed to a Notifier.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/metron/internal/apperr"
	"github.com/starford/metron/internal/models"
	"github.com/starford/metron/internal/store"
)

// Session change event types.
const (
	EventSignedIn  = "session.signed_in"
	EventSignedOut = "session.signed_out"
)

// Notifier receives per-user change events.
type Notifier interface {
	PublishUser(userID, eventType string, data any)
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the session change notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service is the identity provider.
type Service struct {
	users    store.UserStore
	tokens   *TokenManager
	notifier Notifier
	logger   *slog.Logger
	cost     int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewService creates an identity provider.
func NewService(users store.UserStore, tokens *TokenManager, opts ...Option) *Service {
	s := &Service{
		users:  users,
		tokens: tokens,
		logger: slog.Default(),
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type signUpInput struct {
	Email    string
	Password string
	Name     string
}

func (in *signUpInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
	)
}

// SignUp registers a new account and opens a session for it.
func (s *Service) SignUp(ctx context.Context, email, password, name string) (*models.Session, error) {
	in := signUpInput{Email: normalizeEmail(email), Password: password, Name: strings.TrimSpace(name)}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	u, err := s.users.CreateUser(ctx, models.User{Email: in.Email, Name: in.Name, PasswordHash: string(hash)})
	if err != nil {
		return nil, err
	}
	s.logger.Info("account created", slog.String("user_id", u.ID))
	return s.open(u)
}

// SignIn verifies credentials and opens a session. Unknown emails and wrong
// passwords both yield apperr.ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	u, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.dummyCompare(password)
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	return s.open(*u)
}

// SignOut revokes the session token until it expires.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}
	if err := s.users.RevokeSession(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	s.publish(claims.Subject, EventSignedOut, map[string]string{"user_id": claims.Subject})
	return nil
}

// Session resolves a token to its session. Invalid, expired and revoked
// tokens yield apperr.ErrUnauthorized.
func (s *Service) Session(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}
	revoked, err := s.users.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: session signed out", apperr.ErrUnauthorized)
	}
	u, err := s.users.UserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", apperr.ErrUnauthorized)
		}
		return nil, err
	}
	return &models.Session{
		Token:     token,
		TokenID:   claims.ID,
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// PruneRevoked forgets revocations of tokens that have expired.
func (s *Service) PruneRevoked(ctx context.Context) (int64, error) {
	return s.users.PruneRevoked(ctx, time.Now())
}

func (s *Service) open(u models.User) (*models.Session, error) {
	sess, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	s.publish(u.ID, EventSignedIn, map[string]string{"user_id": u.ID, "email": u.Email})
	return &sess, nil
}

func (s *Service) publish(userID, eventType string, data any) {
	if s.notifier != nil {
		s.notifier.PublishUser(userID, eventType, data)
	}
}

// dummyCompare spends a bcrypt comparison so unknown emails take as long as
// wrong passwords.
func (s *Service) dummyCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("metron-dummy-password"), s.cost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
