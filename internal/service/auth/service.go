package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"storefront/internal/domain"
	userrepo "storefront/internal/repository/user"
)

var (
	// ErrInvalidEmail is returned when the email does not look like an address.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrPasswordTooShort is returned for passwords under the minimum length.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service handles user registration and login.
type Service struct {
	repo        userrepo.Repository
	hasher      *Hasher
	tokens      *TokenManager
	logger      zerolog.Logger
	passwordMin int
}

func New(repo userrepo.Repository, hasher *Hasher, tokens *TokenManager, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger.With().Str("svc", "auth").Logger(),
		passwordMin: 6,
	}
}

// Session is what a successful login hands back to the caller.
type Session struct {
	Token string
	User  domain.User
}

// Register creates a user. It never logs the caller in. The password is
// hashed exactly as given and its length is counted in characters.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < s.passwordMin {
		return nil, fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooShort, s.passwordMin)
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.Create(ctx, domain.User{Email: email, PasswordHash: hashed})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Login validates credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := s.hasher.Matches(u.PasswordHash, password)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", u.ID).Msg("stored password hash unreadable")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: *u}, nil
}

// Authenticate resolves a bearer token to the caller's identity.
func (s *Service) Authenticate(token string) (Identity, error) {
	return s.tokens.Verify(strings.TrimSpace(token))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
