package handler

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"clinic-booking-client/internal/auth"
	"clinic-booking-client/internal/middleware"
	"clinic-booking-client/internal/model"
	"clinic-booking-client/internal/store"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a patient account. Doctors are added by operators.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	var errs []fieldError
	if strings.TrimSpace(req.FullName) == "" {
		errs = append(errs, fieldErr("full_name", "Full name is required"))
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != strings.TrimSpace(req.Email) {
		errs = append(errs, fieldErr("email", "value is not a valid email address"))
	}
	if len(req.Password) < 6 {
		errs = append(errs, fieldErr("password", "Password must be at least 6 characters"))
	}
	if len(errs) > 0 {
		invalid(w, errs...)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internal(w, err)
		return
	}

	u := &model.User{
		Email:    strings.TrimSpace(req.Email),
		FullName: strings.TrimSpace(req.FullName),
		Role:     model.RolePatient,
	}
	if err := h.store.CreateUser(r.Context(), u, hash); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			middleware.Detail(w, http.StatusBadRequest, store.ErrDuplicateEmail.Error())
			return
		}
		h.internal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	u, hash, err := h.store.UserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(hash, req.Password) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		middleware.Detail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	tok, err := h.issuer.MakeToken(u)
	if err != nil {
		h.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok, TokenType: "bearer"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	if u := h.current(w, r); u != nil {
		writeJSON(w, http.StatusOK, u)
	}
}
