package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"clinic-booking-client/internal/middleware"
	"clinic-booking-client/internal/model"
	"clinic-booking-client/internal/store"
)

type createAppointmentRequest struct {
	DoctorID  int64  `json:"doctor_id"`
	StartTime string `json:"start_time"`
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	u := h.current(w, r)
	if u == nil {
		return
	}
	if u.Role != model.RolePatient {
		middleware.Detail(w, http.StatusForbidden, "Only patients can create appointments")
		return
	}

	var req createAppointmentRequest
	if !decode(w, r, &req) {
		return
	}
	var errs []fieldError
	if req.DoctorID <= 0 {
		errs = append(errs, fieldErr("doctor_id", "Field required"))
	}
	start, err := model.ParseTimestamp(req.StartTime)
	if err != nil {
		errs = append(errs, fieldErr("start_time", "Input should be a valid datetime"))
	}
	if len(errs) > 0 {
		invalid(w, errs...)
		return
	}

	key := r.Header.Get("Idempotency-Key")
	apt, replayed, err := h.store.CreateAppointment(r.Context(), u, req.DoctorID, start.Time, key)
	switch {
	case errors.Is(err, store.ErrDoctorNotFound):
		middleware.Detail(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, store.ErrSlotFull):
		middleware.Detail(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.internal(w, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	h.log.Debug().Int64("appointment", apt.ID).Bool("replayed", replayed).Msg("booked")
	writeJSON(w, status, apt)
}

// MyAppointments lists a doctor's schedule or a patient's bookings.
func (h *Handler) MyAppointments(w http.ResponseWriter, r *http.Request) {
	if u := h.current(w, r); u != nil {
		writeJSON(w, http.StatusOK, h.store.ListForUser(r.Context(), u))
	}
}

func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	u := h.current(w, r)
	if u == nil {
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		middleware.Detail(w, http.StatusNotFound, "Appointment not found")
		return
	}

	err = h.store.CancelAppointment(r.Context(), u, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// someone else's appointment is reported the same as a missing one
		middleware.Detail(w, http.StatusNotFound, "Appointment not found")
	case errors.Is(err, model.ErrBadTransition):
		middleware.Detail(w, http.StatusConflict, "Appointment is already cancelled")
	case err != nil:
		h.internal(w, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
