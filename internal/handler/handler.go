// Package handler serves the clinic API over HTTP for local development and
// tests: auth, doctors, appointments, profile and patient lists.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"clinic-booking-client/internal/auth"
	"clinic-booking-client/internal/middleware"
	"clinic-booking-client/internal/model"
	"clinic-booking-client/internal/store"
)

type Handler struct {
	store  *store.Store
	issuer *auth.Issuer
	log    zerolog.Logger
}

func New(st *store.Store, iss *auth.Issuer, log zerolog.Logger) *Handler {
	return &Handler{store: st, issuer: iss, log: log}
}

// Routes builds the router. rl limits the login and register endpoints and
// may be nil.
func (h *Handler) Routes(rl *middleware.RateLimiter) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Logger(h.log))
	// mux skips middleware for these two
	r.NotFoundHandler = middleware.Logger(h.log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.Detail(w, http.StatusNotFound, "Not Found")
	}))
	r.MethodNotAllowedHandler = middleware.Logger(h.log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.Detail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}))

	open := r.NewRoute().Subrouter()
	if rl != nil {
		open.Use(middleware.RateLimit(rl))
	}
	open.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	open.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	r.HandleFunc("/doctors", h.Doctors).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(middleware.Auth(h.issuer))
	api.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
	api.HandleFunc("/appointments", h.CreateAppointment).Methods(http.MethodPost)
	api.HandleFunc("/appointments/my", h.MyAppointments).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id:[0-9]+}", h.CancelAppointment).Methods(http.MethodDelete)
	api.HandleFunc("/users/profile", h.UpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/users/profile-completion", h.ProfileCompletion).Methods(http.MethodGet)
	api.HandleFunc("/patients/waiting-list", h.WaitingList).Methods(http.MethodGet)
	api.HandleFunc("/patients/priority", h.PriorityPatients).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// invalid answers 422 with a list of field errors.
func invalid(w http.ResponseWriter, errs ...fieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": errs})
}

func fieldErr(field, msg string) fieldError {
	return fieldError{Loc: []string{"body", field}, Msg: msg, Type: "value_error"}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if err == nil {
		return true
	}
	invalid(w, fieldError{Loc: []string{"body"}, Msg: "Invalid JSON body", Type: "json_invalid"})
	return false
}

// current loads the authenticated caller. It writes 401 and returns nil
// when the token's user no longer exists.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) *model.User {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return nil
	}
	u, err := h.store.UserByID(r.Context(), uid)
	if errors.Is(err, store.ErrNotFound) {
		middleware.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return nil
	}
	if err != nil {
		h.internal(w, err)
		return nil
	}
	return u
}

func (h *Handler) internal(w http.ResponseWriter, err error) {
	h.log.Error().Err(err).Msg("internal error")
	middleware.Detail(w, http.StatusInternalServerError, "Internal Server Error")
}
