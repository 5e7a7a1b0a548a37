// Package account runs the login, registration and profile flows on top of
// the gateway and keeps the session in step with them.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"clinic-booking-client/internal/gateway"
	"clinic-booking-client/internal/model"
	"clinic-booking-client/internal/router"
	"clinic-booking-client/internal/session"
)

const MinPasswordLen = 6

// ValidationError is raised before any request is sent.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

var ErrNotLoggedIn = errors.New("not logged in")

// API is the part of the gateway the account flows use.
type API interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, req gateway.RegisterRequest) (*model.User, error)
	CurrentUser(ctx context.Context) (*model.User, error)
	ProfileCompletion(ctx context.Context) (*model.ProfileCompletion, error)
	UpdateProfile(ctx context.Context, p model.ProfileUpdate) (*model.User, error)
}

type Service struct {
	api   API
	store session.Store
	log   zerolog.Logger
}

func New(api API, st session.Store, log zerolog.Logger) *Service {
	return &Service{api: api, store: st, log: log}
}

// Login authenticates, saves the token, caches the profile and returns
// the landing route for the user's role. If the profile cannot be fetched
// the token is discarded again.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", invalid("email", "Email and password are required")
	}

	tok, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	if err := s.store.SaveToken(tok); err != nil {
		return nil, "", fmt.Errorf("save token: %w", err)
	}

	u, err := s.api.CurrentUser(ctx)
	if err != nil {
		return nil, "", errors.Join(err, s.discard())
	}
	if err := s.store.SaveUser(u); err != nil {
		return nil, "", errors.Join(fmt.Errorf("save user: %w", err), s.discard())
	}
	s.log.Info().Int64("user", u.ID).Str("role", string(u.Role)).Msg("logged in")
	return u, router.DashboardFor(u.Role), nil
}

type RegisterForm struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate checks the form in field order and reports the first problem.
func (f RegisterForm) Validate() error {
	if strings.TrimSpace(f.FullName) == "" {
		return invalid("full_name", "Full name is required")
	}
	if !bareAddress(strings.TrimSpace(f.Email)) {
		return invalid("email", "Please enter a valid email address")
	}
	if len(f.Password) < MinPasswordLen {
		return invalid("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLen))
	}
	if f.Password != f.ConfirmPassword {
		return invalid("confirm_password", "Passwords do not match")
	}
	return nil
}

// bareAddress accepts "user@host" only, not "Name <user@host>".
func bareAddress(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// Register creates a patient account. It does not log in.
func (s *Service) Register(ctx context.Context, f RegisterForm) (*model.User, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.api.Register(ctx, gateway.RegisterRequest{
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		FullName: strings.TrimSpace(f.FullName),
	})
}

func (s *Service) Logout() error {
	return s.store.RemoveToken()
}

// Refresh re-reads the profile from the service and updates the cache.
func (s *Service) Refresh(ctx context.Context) (*model.User, error) {
	if _, ok := s.store.Token(); !ok {
		return nil, ErrNotLoggedIn
	}
	u, err := s.api.CurrentUser(ctx)
	if err != nil {
		return nil, s.HandleUnauthorized(err)
	}
	if err := s.store.SaveUser(u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

func (s *Service) ProfileStatus(ctx context.Context) (*model.ProfileCompletion, error) {
	pc, err := s.api.ProfileCompletion(ctx)
	if err != nil {
		return nil, s.HandleUnauthorized(err)
	}
	return pc, nil
}

// CompleteProfile sends only the set fields and refreshes the cached user.
func (s *Service) CompleteProfile(ctx context.Context, p model.ProfileUpdate) (*model.User, error) {
	if p.Empty() {
		return nil, invalid("", "Nothing to update")
	}
	if p.Age != nil && (*p.Age <= 0 || *p.Age > 150) {
		return nil, invalid("age", "Please enter a valid age")
	}
	u, err := s.api.UpdateProfile(ctx, p)
	if err != nil {
		return nil, s.HandleUnauthorized(err)
	}
	if err := s.store.SaveUser(u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// HandleUnauthorized clears the session when err is a 401, so the next
// guarded view sends the user back to login. err is returned unchanged
// unless the token could not be removed.
func (s *Service) HandleUnauthorized(err error) error {
	if gateway.IsUnauthorized(err) {
		s.log.Info().Msg("session rejected by server, clearing")
		if derr := s.discard(); derr != nil {
			return errors.Join(err, derr)
		}
	}
	return err
}

// discard drops the stored token. A failure means the token is still on
// disk, so it is logged and returned.
func (s *Service) discard() error {
	if err := s.store.RemoveToken(); err != nil {
		s.log.Warn().Err(err).Msg("could not remove session token")
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
