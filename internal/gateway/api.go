package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"clinic-booking-client/internal/model"
)

// IdempotencyHeader carries the per-submission key on booking requests.
const IdempotencyHeader = "Idempotency-Key"

var ErrNoToken = errors.New("login response carried no token")

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse accepts either field name the service uses.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
	TokenType   string `json:"token_type,omitempty"`
}

func (t TokenResponse) Value() string {
	if t.AccessToken != "" {
		return t.AccessToken
	}
	return t.Token
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type CreateAppointmentRequest struct {
	DoctorID  int64  `json:"doctor_id"`
	StartTime string `json:"start_time"`
	// IdempotencyKey is sent as a header, not in the body. Empty means a
	// fresh key is generated for this call.
	IdempotencyKey string `json:"-"`
}

// Login exchanges credentials for a token. It does not touch the session;
// callers save the token themselves.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out TokenResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login", Credentials{Email: email, Password: password}, &out, nil); err != nil {
		return "", err
	}
	tok := out.Value()
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	var out model.User
	if err := c.call(ctx, http.MethodPost, "/auth/register", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Doctors(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := c.call(ctx, http.MethodGet, "/doctors", nil, &out, nil)
	return out, err
}

func (c *Client) MyAppointments(ctx context.Context) ([]model.Appointment, error) {
	var out []model.Appointment
	err := c.call(ctx, http.MethodGet, "/appointments/my", nil, &out, nil)
	return out, err
}

func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*model.Appointment, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	h := http.Header{}
	h.Set(IdempotencyHeader, key)

	var out model.Appointment
	if err := c.call(ctx, http.MethodPost, "/appointments", req, &out, h); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelAppointment moves an appointment to cancelled. The service answers 204.
func (c *Client) CancelAppointment(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/appointments/%d", id), nil, nil, nil)
}

func (c *Client) ProfileCompletion(ctx context.Context) (*model.ProfileCompletion, error) {
	var out model.ProfileCompletion
	if err := c.call(ctx, http.MethodGet, "/users/profile-completion", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, p model.ProfileUpdate) (*model.User, error) {
	var out model.User
	if err := c.call(ctx, http.MethodPut, "/users/profile", p, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) WaitingList(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := c.call(ctx, http.MethodGet, "/patients/waiting-list", nil, &out, nil)
	return out, err
}

func (c *Client) PriorityPatients(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := c.call(ctx, http.MethodGet, "/patients/priority", nil, &out, nil)
	return out, err
}
