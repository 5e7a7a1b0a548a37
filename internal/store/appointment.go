package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"clinic-booking-client/internal/model"
)

// CreateAppointment books doctorID at start for patient. A non-empty key
// already recorded for this patient returns the original appointment with
// replayed set and books nothing.
func (s *Store) CreateAppointment(ctx context.Context, patient *model.User, doctorID int64, start time.Time, key string) (apt *model.Appointment, replayed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.replay(patient.ID, key); ok {
		return s.view(prev), true, nil
	}

	doc, ok := s.users[doctorID]
	if !ok || doc.user.Role != model.RoleDoctor {
		return nil, false, ErrDoctorNotFound
	}

	// capacity check and insert happen under one lock
	if s.activeAt(doctorID, start) >= s.capacity {
		return nil, false, ErrSlotFull
	}

	s.nextAppt++
	a := &model.Appointment{
		ID:        s.nextAppt,
		DoctorID:  doctorID,
		PatientID: patient.ID,
		StartTime: model.Timestamp{Time: start},
		Status:    model.StatusActive,
	}
	s.appts[a.ID] = a
	s.record(patient.ID, key, a.ID)
	return s.view(a), false, nil
}

func (s *Store) activeAt(doctorID int64, start time.Time) int {
	n := 0
	for _, a := range s.appts {
		if a.DoctorID == doctorID && a.Active() && a.StartTime.Equal(start) {
			n++
		}
	}
	return n
}

// view copies a and embeds its doctor and patient. Caller holds s.mu.
func (s *Store) view(a *model.Appointment) *model.Appointment {
	out := *a
	if d, ok := s.users[a.DoctorID]; ok {
		u := d.user
		out.Doctor = &u
	}
	if p, ok := s.users[a.PatientID]; ok {
		u := p.user
		out.Patient = &u
	}
	return &out
}

// ListForUser returns a doctor's schedule or a patient's bookings, ordered
// by start time.
func (s *Store) ListForUser(ctx context.Context, u *model.User) []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Appointment{}
	for _, a := range s.appts {
		mine := a.PatientID == u.ID
		if u.Role == model.RoleDoctor {
			mine = a.DoctorID == u.ID
		}
		if mine {
			out = append(out, *s.view(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime.Time) {
			return out[i].StartTime.Before(out[j].StartTime.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.view(a), nil
}

// CancelAppointment cancels an appointment the user is party to. Someone
// else's appointment reads as not found.
func (s *Store) CancelAppointment(ctx context.Context, u *model.User, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appts[id]
	if !ok || (a.PatientID != u.ID && a.DoctorID != u.ID) {
		return ErrNotFound
	}
	if err := a.Cancel(); err != nil {
		return fmt.Errorf("appointment %d: %w", id, err)
	}
	return nil
}
