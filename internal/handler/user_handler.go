package handler

import (
	"net/http"

	"clinic-booking-client/internal/middleware"
	"clinic-booking-client/internal/model"
	"clinic-booking-client/internal/store"
)

func (h *Handler) Doctors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(h.store.Doctors(r.Context())))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	u := h.current(w, r)
	if u == nil {
		return
	}
	var p model.ProfileUpdate
	if !decode(w, r, &p) {
		return
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > 150) {
		invalid(w, fieldErr("age", "Input should be between 0 and 150"))
		return
	}
	updated, err := h.store.UpdateProfile(r.Context(), u.ID, p)
	if err != nil {
		h.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) ProfileCompletion(w http.ResponseWriter, r *http.Request) {
	if u := h.current(w, r); u != nil {
		writeJSON(w, http.StatusOK, store.Completion(u))
	}
}

func (h *Handler) WaitingList(w http.ResponseWriter, r *http.Request) {
	if !h.doctorOnly(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(h.store.Patients(r.Context())))
}

func (h *Handler) PriorityPatients(w http.ResponseWriter, r *http.Request) {
	if !h.doctorOnly(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(h.store.PriorityPatients(r.Context())))
}

// patient lists are for doctors only
func (h *Handler) doctorOnly(w http.ResponseWriter, r *http.Request) bool {
	if middleware.Role(r.Context()) != model.RoleDoctor {
		middleware.Detail(w, http.StatusForbidden, "Only doctors can view patient lists")
		return false
	}
	return true
}

func nonNil(us []model.User) []model.User {
	if us == nil {
		return []model.User{}
	}
	return us
}
