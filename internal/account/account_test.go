package account

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-booking-client/internal/auth"
	"clinic-booking-client/internal/gateway"
	"clinic-booking-client/internal/handler"
	"clinic-booking-client/internal/model"
	"clinic-booking-client/internal/router"
	"clinic-booking-client/internal/session"
	"clinic-booking-client/internal/store"
)

// stubService starts the clinic API with one doctor and one patient.
func stubService(t *testing.T) (*gateway.Client, *session.Memory, *store.Store) {
	t.Helper()
	st := store.New(1)
	h, err := auth.HashPassword("Secret123!")
	require.NoError(t, err)
	require.NoError(t, st.AddDoctor(context.Background(), &model.User{Email: "dr@clinic.test", FullName: "Amara Chen"}, h))
	require.NoError(t, st.CreateUser(context.Background(), &model.User{Email: "pat@clinic.test", FullName: "Aylin Demir", Role: model.RolePatient}, h))

	srv := httptest.NewServer(handler.New(st, auth.NewIssuer("acct-secret", time.Hour), zerolog.Nop()).Routes(nil))
	t.Cleanup(srv.Close)

	sess := session.NewMemory()
	return gateway.New(srv.URL, sess), sess, st
}

func TestLoginPatientRedirectedFromDoctorDashboard(t *testing.T) {
	api, sess, _ := stubService(t)
	svc := New(api, sess, zerolog.Nop())

	u, landing, err := svc.Login(context.Background(), "pat@clinic.test", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, u.Role)
	assert.Equal(t, router.RoutePatientDashboard, landing)

	tok, ok := sess.Token()
	require.True(t, ok)
	assert.NotEmpty(t, tok)

	me, err := api.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, me.Role)

	d := router.NewGuard(sess).Check(model.RoleDoctor)
	assert.Equal(t, router.Redirecting, d.State)
	assert.Equal(t, "/user/dashboard", d.Redirect)
}

func TestLoginDoctorLanding(t *testing.T) {
	api, sess, _ := stubService(t)
	_, landing, err := New(api, sess, zerolog.Nop()).Login(context.Background(), "dr@clinic.test", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, "/doctor/dashboard", landing)
	assert.True(t, router.NewGuard(sess).Check(model.RoleDoctor).Authorized())
}

func TestLoginFailureLeavesSessionEmpty(t *testing.T) {
	api, sess, _ := stubService(t)
	svc := New(api, sess, zerolog.Nop())

	_, _, err := svc.Login(context.Background(), "pat@clinic.test", "wrong")
	require.Error(t, err)
	assert.True(t, gateway.IsUnauthorized(err))
	_, ok := sess.Token()
	assert.False(t, ok)

	_, _, err = svc.Login(context.Background(), " ", "x")
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

type fakeAPI struct {
	API
	token   string
	me      *model.User
	meErr   error
	updated *model.User
	calls   int
}

func (f *fakeAPI) Login(context.Context, string, string) (string, error) { f.calls++; return f.token, nil }
func (f *fakeAPI) CurrentUser(context.Context) (*model.User, error)     { return f.me, f.meErr }
func (f *fakeAPI) UpdateProfile(context.Context, model.ProfileUpdate) (*model.User, error) {
	f.calls++
	return f.updated, nil
}

func TestLoginDiscardsTokenWhenProfileFails(t *testing.T) {
	sess := session.NewMemory()
	api := &fakeAPI{token: "tok", meErr: &gateway.TransportError{Op: "GET /auth/me", Err: errors.New("boom")}}

	_, _, err := New(api, sess, zerolog.Nop()).Login(context.Background(), "a@b.com", "pw")
	assert.True(t, gateway.IsTransport(err))
	_, ok := sess.Token()
	assert.False(t, ok, "token must not outlive a failed login")
}

// stuckSession cannot forget its token.
type stuckSession struct {
	*session.Memory
}

func (stuckSession) RemoveToken() error { return errors.New("read-only session") }

func TestLoginReportsUndiscardedToken(t *testing.T) {
	sess := stuckSession{session.NewMemory()}
	api := &fakeAPI{token: "tok", meErr: &gateway.TransportError{Op: "GET /auth/me", Err: errors.New("boom")}}

	_, _, err := New(api, sess, zerolog.Nop()).Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
	assert.True(t, gateway.IsTransport(err))
	assert.Contains(t, err.Error(), "remove token: read-only session")
}

func TestUnauthorizedReportsUndiscardedToken(t *testing.T) {
	sess := stuckSession{session.NewMemory()}
	sess.SaveToken("stale")
	unauthorized := &gateway.HTTPError{Status: http.StatusUnauthorized, Message: "Could not validate credentials"}

	err := New(&fakeAPI{}, sess, zerolog.Nop()).HandleUnauthorized(unauthorized)
	assert.True(t, gateway.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "remove token")
}

func TestRegisterFormValidation(t *testing.T) {
	ok := RegisterForm{FullName: "Aylin Demir", Email: "aylin@example.com", Password: "secret1", ConfirmPassword: "secret1"}
	tests := []struct {
		name  string
		edit  func(*RegisterForm)
		field string
	}{
		{"valid", func(*RegisterForm) {}, ""},
		{"no name", func(f *RegisterForm) { f.FullName = "  " }, "full_name"},
		{"bad email", func(f *RegisterForm) { f.Email = "aylin-at-example" }, "email"},
		{"display name", func(f *RegisterForm) { f.Email = "Aylin <aylin@example.com>" }, "email"},
		{"short password", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "12345", "12345" }, "password"},
		{"mismatch", func(f *RegisterForm) { f.ConfirmPassword = "secret2" }, "confirm_password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ok
			tt.edit(&f)
			err := f.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestRegisterAgainstService(t *testing.T) {
	api, sess, _ := stubService(t)
	svc := New(api, sess, zerolog.Nop())
	form := RegisterForm{FullName: "Omar Haddad", Email: "omar@example.com", Password: "secret1", ConfirmPassword: "secret1"}

	u, err := svc.Register(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, u.Role)

	_, err = svc.Register(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, "This email is already registered", err.Error())
}

func TestInvalidRegisterSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	_, err := New(api, session.NewMemory(), zerolog.Nop()).Register(context.Background(), RegisterForm{})
	assert.Error(t, err)
	assert.Zero(t, api.calls)
}

func TestProfileFlow(t *testing.T) {
	api, sess, _ := stubService(t)
	svc := New(api, sess, zerolog.Nop())
	_, _, err := svc.Login(context.Background(), "pat@clinic.test", "Secret123!")
	require.NoError(t, err)

	pc, err := svc.ProfileStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, pc.IsComplete)
	assert.Contains(t, pc.MissingFields, "phone")

	phone, age := "5551234567", 41
	u, err := svc.CompleteProfile(context.Background(), model.ProfileUpdate{Phone: &phone, Age: &age})
	require.NoError(t, err)
	assert.Equal(t, phone, u.Phone)

	cached, _ := sess.User()
	assert.Equal(t, 41, cached.Age, "cached user refreshed")

	pc, err = svc.ProfileStatus(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, pc.MissingFields, "phone")
}

func TestCompleteProfileValidation(t *testing.T) {
	api := &fakeAPI{}
	svc := New(api, session.NewMemory(), zerolog.Nop())

	_, err := svc.CompleteProfile(context.Background(), model.ProfileUpdate{})
	assert.Error(t, err)
	bad := -1
	_, err = svc.CompleteProfile(context.Background(), model.ProfileUpdate{Age: &bad})
	assert.Error(t, err)
	assert.Zero(t, api.calls)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer srv.Close()

	sess := session.NewMemory()
	sess.SaveToken("stale")
	sess.SaveUser(&model.User{ID: 1, Role: model.RolePatient})
	svc := New(gateway.New(srv.URL, sess), sess, zerolog.Nop())

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Could not validate credentials", err.Error())
	_, ok := sess.Token()
	assert.False(t, ok)
	assert.Equal(t, router.RouteHome, router.NewGuard(sess).Check(model.RolePatient).Redirect)

	_, err = svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLogout(t *testing.T) {
	sess := session.NewMemory()
	sess.SaveToken("t")
	sess.SaveUser(&model.User{ID: 1})
	require.NoError(t, New(&fakeAPI{}, sess, zerolog.Nop()).Logout())
	_, ok := sess.User()
	assert.False(t, ok)
}
