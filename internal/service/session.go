package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/folio-sh/folio/internal/domain"
)

var tracer = otel.Tracer("session")

// SessionService authenticates the configured admin and mints/verifies the
// stateless session marker carried in a cookie.
type SessionService struct {
	config domain.Config
	now    func() time.Time
}

func NewSessionService(config domain.Config) *SessionService {
	return &SessionService{
		config: config,
		now:    time.Now,
	}
}

type SessionResult struct {
	Email string
}

// Login checks credentials and issues a session token. Every failure path
// returns ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *SessionService) Login(ctx context.Context, email, password string) (string, error) {
	_, span := tracer.Start(ctx, "Session.Service.Login")
	defer span.End()

	if email != s.config.AdminEmail {
		span.RecordError(errors.New("unknown email"))
		return "", domain.ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(password))
	if err != nil {
		span.RecordError(errors.Wrap(err, "password mismatch"))
		return "", domain.ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   domain.SessionSubject,
		Issuer:    s.config.SiteURL,
		Audience:  jwt.ClaimStrings{email},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.SessionTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SessionSecret))
	if err != nil {
		span.RecordError(errors.Wrap(err, "token signing failed"))
		return "", err
	}
	return token, nil
}

// Verify parses a session marker and returns the authenticated identity.
func (s *SessionService) Verify(ctx context.Context, token string) (*SessionResult, error) {
	_, span := tracer.Start(ctx, "Session.Service.Verify")
	defer span.End()

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.SessionSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		span.RecordError(errors.Wrap(err, "session token rejected"))
		return nil, domain.ErrInvalidCredentials
	}
	if !parsed.Valid || claims.Subject != domain.SessionSubject {
		span.RecordError(errors.New("invalid session subject"))
		return nil, domain.ErrInvalidCredentials
	}

	email := ""
	if len(claims.Audience) > 0 {
		email = claims.Audience[0]
	}
	return &SessionResult{Email: email}, nil
}

// TTL exposes the configured session lifetime for cookie expiry.
func (s *SessionService) TTL() time.Duration {
	return s.config.SessionTTL
}
