package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"unigang/annex/internal/media/sniffer"
	"unigang/annex/internal/media/svg"
	"unigang/annex/internal/models"
	"unigang/annex/internal/security"
	"unigang/annex/internal/session"
)

var (
	ErrInvalidPicture = errors.New("invalid profile picture")
	ErrWrongPassword  = errors.New("current password does not match")
)

// Placeholders shown for fields the client never filled in.
const (
	placeholderFirstName = "John"
	placeholderLastName  = "Doe"
	placeholderEmail     = "john.doe@example.com"
	placeholderPhone     = "0712345678"
)

type Profile struct {
	Name        string `json:"name"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phoneNumber"`
	University  string `json:"university"`
	Picture     string `json:"profilePicture,omitempty"`
	HasPassword bool   `json:"hasPassword"`
}

type ProfileInput struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phoneNumber" validate:"required"`
	University string `json:"university"`
	// Password replaces the stored hash when non-empty. Replacing an existing
	// hash requires CurrentPassword.
	Password        string `json:"password"`
	CurrentPassword string `json:"currentPassword"`
}

type ProfileService struct {
	log  zerolog.Logger
	hash func(string) (string, error)
}

func NewProfileService(log zerolog.Logger) *ProfileService {
	return &ProfileService{
		log:  log.With().Str("component", "profile").Logger(),
		hash: security.HashPassword,
	}
}

func ProfileFrom(state session.State) Profile {
	return Profile{
		Name:        state.Name,
		FirstName:   orDefault(state.FirstName, placeholderFirstName),
		LastName:    orDefault(state.LastName, placeholderLastName),
		Email:       orDefault(state.Email, placeholderEmail),
		Phone:       orDefault(state.Phone, placeholderPhone),
		University:  state.University,
		Picture:     state.ProfilePicture,
		HasPassword: state.Password != "",
	}
}

func (s *ProfileService) Get(ctx context.Context, sc *session.Context) (Profile, error) {
	state, err := sc.State(ctx)
	if err != nil {
		return Profile{}, err
	}
	return ProfileFrom(state), nil
}

func (s *ProfileService) Update(ctx context.Context, sc *session.Context, input ProfileInput) (Profile, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.University = strings.TrimSpace(input.University)
	if err := models.ValidateStruct(input); err != nil {
		return Profile{}, err
	}

	values := map[string]string{
		session.KeyFirstName:  input.FirstName,
		session.KeyLastName:   input.LastName,
		session.KeyEmail:      input.Email,
		session.KeyPhone:      input.Phone,
		session.KeyUniversity: input.University,
	}
	if input.Password != "" {
		if err := s.checkCurrent(ctx, sc, input.CurrentPassword); err != nil {
			return Profile{}, err
		}
		hash, err := s.hash(input.Password)
		if err != nil {
			return Profile{}, fmt.Errorf("hash password: %w", err)
		}
		values[session.KeyPassword] = hash
	}

	if err := sc.Update(ctx, values); err != nil {
		return Profile{}, err
	}
	return s.notify(ctx, sc, "profile updated")
}

func (s *ProfileService) checkCurrent(ctx context.Context, sc *session.Context, current string) error {
	state, err := sc.State(ctx)
	if err != nil {
		return err
	}
	if state.Password == "" {
		return nil
	}
	ok, err := security.VerifyPassword(current, state.Password)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.log.Warn().Str("client", sc.Client()).Msg("password change rejected")
		return ErrWrongPassword
	}
	return nil
}

// SetPicture stores an http(s) URL as is. Inline images are sniffed against
// their declared type; SVG payloads are sanitized and re-encoded.
func (s *ProfileService) SetPicture(ctx context.Context, sc *session.Context, raw string) (Profile, error) {
	ref, err := sniffer.ParseReference(raw)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrInvalidPicture, err)
	}

	value := ref.Raw
	if ref.Kind == sniffer.KindInline && ref.Media.Type == sniffer.TypeSVG {
		clean, removed, err := svg.SanitizeReport(ref.Data)
		if err != nil {
			return Profile{}, fmt.Errorf("%w: %v", ErrInvalidPicture, err)
		}
		if len(removed) > 0 {
			s.log.Warn().Str("client", sc.Client()).Strs("removed", removed).Msg("svg avatar sanitized")
		}
		value = sniffer.DataURL(ref.Media.MIME, clean)
	}

	if err := sc.Set(ctx, session.KeyProfilePicture, value); err != nil {
		return Profile{}, err
	}
	return s.notify(ctx, sc, "profile picture set")
}

func (s *ProfileService) RemovePicture(ctx context.Context, sc *session.Context) (Profile, error) {
	if err := sc.Remove(ctx, session.KeyProfilePicture); err != nil {
		return Profile{}, err
	}
	return s.notify(ctx, sc, "profile picture removed")
}

func (s *ProfileService) notify(ctx context.Context, sc *session.Context, msg string) (Profile, error) {
	state, err := sc.NotifyAuthChanged(ctx)
	if err != nil {
		return Profile{}, err
	}
	s.log.Info().Str("client", sc.Client()).Msg(msg)
	return ProfileFrom(state), nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
