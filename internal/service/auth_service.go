package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"unigang/annex/internal/config"
	"unigang/annex/internal/models"
	"unigang/annex/internal/security"
	"unigang/annex/internal/session"
)

var (
	ErrAuthInFlight     = errors.New("auth already in flight")
	ErrIdentityExchange = errors.New("identity exchange failed")
)

const (
	defaultLoginName    = "TestUser"
	defaultRegisterName = "NewUser"
)

// AuthService is the mock identity provider. Every flow writes the session keys
// of the calling client and then notifies the calling tab.
type AuthService struct {
	sessions *session.Manager
	cfg      *config.AppConfig
	log      zerolog.Logger
	hash     func(string) (string, error)
}

func NewAuthService(sessions *session.Manager, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		sessions: sessions,
		cfg:      cfg,
		log:      log.With().Str("component", "auth").Logger(),
		hash:     security.HashPassword,
	}
}

type LoginInput struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

func (s *AuthService) Login(ctx context.Context, sc *session.Context, input LoginInput) (session.State, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := models.ValidateStruct(input); err != nil {
		return session.State{}, err
	}

	release, ok := s.sessions.Begin(sc.Client())
	if !ok {
		return session.State{}, ErrAuthInFlight
	}
	defer release()

	if err := s.wait(ctx); err != nil {
		return session.State{}, err
	}

	current, err := sc.State(ctx)
	if err != nil {
		return session.State{}, err
	}
	name := displayName(current.FirstName, input.Email, defaultLoginName)

	token, err := security.GenerateSessionToken(s.cfg.Security.TokenSecret, sc.Client(), input.Email, name, "password", s.cfg.Security.TokenTTL)
	if err != nil {
		return session.State{}, err
	}

	values := map[string]string{
		session.KeyToken: token,
		session.KeyName:  name,
	}
	if input.Email != "" {
		values[session.KeyEmail] = input.Email
	}
	return s.commit(ctx, sc, values, "login")
}

func (s *AuthService) Register(ctx context.Context, sc *session.Context, input RegisterInput) (session.State, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := models.ValidateStruct(input); err != nil {
		return session.State{}, err
	}

	release, ok := s.sessions.Begin(sc.Client())
	if !ok {
		return session.State{}, ErrAuthInFlight
	}
	defer release()

	if err := s.wait(ctx); err != nil {
		return session.State{}, err
	}

	name := input.Name
	if name == "" {
		name = defaultRegisterName
	}

	passwordHash, err := s.hash(input.Password)
	if err != nil {
		return session.State{}, fmt.Errorf("hash password: %w", err)
	}

	token, err := security.GenerateSessionToken(s.cfg.Security.TokenSecret, sc.Client(), input.Email, name, "register", s.cfg.Security.TokenTTL)
	if err != nil {
		return session.State{}, err
	}

	values := map[string]string{
		session.KeyToken:    token,
		session.KeyName:     name,
		session.KeyPassword: passwordHash,
	}
	if input.Email != "" {
		values[session.KeyEmail] = input.Email
	}
	return s.commit(ctx, sc, values, "register")
}

// ExchangeIdentity signs the client in with an OAuth ID token. The token's
// signature is not verified, so the resulting profile is self-asserted.
func (s *AuthService) ExchangeIdentity(ctx context.Context, sc *session.Context, credential string) (session.State, error) {
	release, ok := s.sessions.Begin(sc.Client())
	if !ok {
		return session.State{}, ErrAuthInFlight
	}
	defer release()

	claims, err := security.DecodeIdentityToken(strings.TrimSpace(credential))
	if err != nil {
		s.log.Warn().Err(err).Str("client", sc.Client()).Msg("identity exchange rejected")
		return session.State{}, fmt.Errorf("%w: %v", ErrIdentityExchange, err)
	}

	values := map[string]string{
		session.KeyToken:          credential,
		session.KeyName:           claims.Name,
		session.KeyProfilePicture: claims.Picture,
		session.KeyFirstName:      claims.GivenName,
		session.KeyLastName:       claims.FamilyName,
		session.KeyEmail:          claims.Email,
	}
	return s.commit(ctx, sc, values, "identity")
}

// Logout clears every session key of the client.
func (s *AuthService) Logout(ctx context.Context, sc *session.Context) (session.State, error) {
	if err := sc.Clear(ctx); err != nil {
		return session.State{}, err
	}
	state, err := sc.NotifyAuthChanged(ctx)
	if err != nil {
		return session.State{}, err
	}
	s.log.Info().Str("client", sc.Client()).Msg("logged out")
	return state, nil
}

// SessionInfo describes the token held by a session.
type SessionInfo struct {
	Method    string
	ExpiresAt time.Time
	Expired   bool
}

// Describe reports how the session token was issued. Tokens this service did
// not sign are reported as "identity".
func (s *AuthService) Describe(state session.State) SessionInfo {
	if !state.Authenticated() {
		return SessionInfo{}
	}
	claims, err := security.ParseSessionToken(state.Token, s.cfg.Security.TokenSecret)
	switch {
	case err == nil:
		info := SessionInfo{Method: claims.Method}
		if claims.ExpiresAt != nil {
			info.ExpiresAt = claims.ExpiresAt.Time
		}
		return info
	case errors.Is(err, jwt.ErrTokenExpired):
		return SessionInfo{Expired: true}
	}
	return SessionInfo{Method: "identity"}
}

func (s *AuthService) commit(ctx context.Context, sc *session.Context, values map[string]string, method string) (session.State, error) {
	if err := sc.Update(ctx, values); err != nil {
		return session.State{}, err
	}
	state, err := sc.NotifyAuthChanged(ctx)
	if err != nil {
		return session.State{}, err
	}
	s.log.Info().Str("client", sc.Client()).Str("method", method).Msg("logged in")
	return state, nil
}

// wait simulates the provider round trip.
func (s *AuthService) wait(ctx context.Context) error {
	if s.cfg.Auth.MockDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.cfg.Auth.MockDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func displayName(firstName, email, fallback string) string {
	if firstName != "" {
		return firstName
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return fallback
}
