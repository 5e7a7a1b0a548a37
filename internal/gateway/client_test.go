package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-booking-client/internal/model"
	"clinic-booking-client/internal/session"
)

func serve(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		reply(http.StatusOK, `{}`)(w, r)
	})

	store := session.NewMemory()
	c := New(srv.URL, store)

	_, err := c.Request(context.Background(), http.MethodGet, "/doctors", nil)
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Empty(t, got.Get("Authorization"), "no token, no auth header")

	require.NoError(t, store.SaveToken("abc.def.ghi"))
	_, err = c.Request(context.Background(), http.MethodGet, "/doctors", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc.def.ghi", got.Get("Authorization"))
}

func TestRequestSerializesBody(t *testing.T) {
	var body map[string]any
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/appointments", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&body)
		reply(http.StatusCreated, `{"id": 1}`)(w, r)
	})

	raw, err := New(srv.URL, nil).Request(context.Background(), http.MethodPost, "/appointments",
		map[string]any{"doctor_id": 7, "start_time": "2025-01-12T10:30:00"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 1}`, string(raw))
	assert.Equal(t, float64(7), body["doctor_id"])
	assert.Equal(t, "2025-01-12T10:30:00", body["start_time"])
}

func TestNotFoundDetailMessage(t *testing.T) {
	srv := serve(t, reply(http.StatusNotFound, `{"detail": "Doctor not found"}`))

	_, err := New(srv.URL, nil).Request(context.Background(), http.MethodPost, "/appointments", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, "Doctor not found", err.Error())

	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusNotFound, he.Status)
	assert.False(t, IsTransport(err))
}

func TestNoContentYieldsEmptyObject(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	raw, err := New(srv.URL, nil).Request(context.Background(), http.MethodDelete, "/appointments/4", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestErrorMessagePriority(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error wins", 400, `{"error": "from error", "detail": "from detail", "message": "from message"}`, "from error"},
		{"detail before message", 409, `{"detail": "from detail", "message": "from message"}`, "from detail"},
		{"message last", 400, `{"message": "from message"}`, "from message"},
		{"empty error skipped", 400, `{"error": "", "detail": "from detail"}`, "from detail"},
		{"null error skipped", 400, `{"error": null, "message": "from message"}`, "from message"},
		{"validation list", 422, `{"detail": [{"msg": "field required"}, {"msg": "value is not a valid email"}]}`, "field required; value is not a valid email"},
		{"no known field", 500, `{"trace": "x"}`, "HTTP 500: Internal Server Error"},
		{"not json", 502, `<html>bad gateway</html>`, "HTTP 502: Bad Gateway"},
		{"empty body", 403, ``, "HTTP 403: Forbidden"},
		{"json array body", 400, `["nope"]`, "HTTP 400: Bad Request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, reply(tt.status, tt.body))
			_, err := New(srv.URL, nil).Request(context.Background(), http.MethodGet, "/x", nil)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(reply(http.StatusOK, `{}`))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Request(context.Background(), http.MethodGet, "/doctors", nil)
	require.Error(t, err)
	assert.Equal(t, UnexpectedErrorMessage, err.Error())
	assert.True(t, IsTransport(err))

	var he *HTTPError
	assert.False(t, errors.As(err, &he), "transport failures must not look like HTTP failures")
}

func TestCancelledContextIsTransport(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL, nil).Request(ctx, http.MethodGet, "/doctors", nil)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInvalidSuccessBody(t *testing.T) {
	srv := serve(t, reply(http.StatusOK, `{"id":`))
	_, err := New(srv.URL, nil).Request(context.Background(), http.MethodGet, "/auth/me", nil)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestUnauthorized(t *testing.T) {
	srv := serve(t, reply(http.StatusUnauthorized, `{"detail": "Could not validate credentials"}`))
	_, err := New(srv.URL, nil).CurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Could not validate credentials", err.Error())
}

func TestLoginTokenFields(t *testing.T) {
	tests := []struct {
		name, body, want string
		err              error
	}{
		{"access_token", `{"access_token": "a1", "token_type": "bearer"}`, "a1", nil},
		{"token", `{"token": "t1"}`, "t1", nil},
		{"access_token preferred", `{"access_token": "a1", "token": "t1"}`, "a1", nil},
		{"missing", `{}`, "", ErrNoToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				var creds Credentials
				json.NewDecoder(r.Body).Decode(&creds)
				assert.Equal(t, "jane@example.com", creds.Email)
				reply(http.StatusOK, tt.body)(w, r)
			})
			tok, err := New(srv.URL, nil).Login(context.Background(), "jane@example.com", "Secret123!")
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.want, tok)
		})
	}
}

func TestCreateAppointmentSendsIdempotencyKey(t *testing.T) {
	var keys []string
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get(IdempotencyHeader))
		reply(http.StatusCreated, `{"id": 11, "doctor_id": 7, "patient_id": 3, "start_time": "2025-01-12T10:30:00", "status": "active"}`)(w, r)
	})
	c := New(srv.URL, nil)

	a, err := c.CreateAppointment(context.Background(), CreateAppointmentRequest{DoctorID: 7, StartTime: "2025-01-12T10:30:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), a.ID)
	assert.Equal(t, model.StatusActive, a.Status)
	assert.Equal(t, 10, a.StartTime.Hour())

	_, err = c.CreateAppointment(context.Background(), CreateAppointmentRequest{DoctorID: 7, StartTime: "2025-01-12T10:30:00", IdempotencyKey: "fixed"})
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, "fixed", keys[1])
}

func TestCancelAppointment(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/appointments/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, New(srv.URL, nil).CancelAppointment(context.Background(), 42))
}

func TestRateLimitHonoursContext(t *testing.T) {
	srv := serve(t, reply(http.StatusOK, `[]`))
	c := New(srv.URL, nil, WithRateLimit(0.001, 1))

	_, err := c.Doctors(context.Background())
	require.NoError(t, err)

	// burst spent: the next call must wait far longer than the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Doctors(ctx)
	assert.True(t, IsTransport(err))
}

func TestBaseURLTrailingSlash(t *testing.T) {
	var path string
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		reply(http.StatusOK, `[]`)(w, r)
	})
	_, err := New(srv.URL+"/", nil).MyAppointments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/appointments/my", path)
}
