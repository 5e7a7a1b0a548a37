package model

import (
	"errors"
	"fmt"
)

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

type User struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	Role           Role   `json:"role"`
	Phone          string `json:"phone,omitempty"`
	Age            int    `json:"age,omitempty"`
	Gender         string `json:"gender,omitempty"`
	MedicalHistory string `json:"medical_history,omitempty"`
	Allergies      string `json:"allergies,omitempty"`
	Department     string `json:"department,omitempty"`
}

type AppointmentStatus string

const (
	StatusActive    AppointmentStatus = "active"
	StatusCancelled AppointmentStatus = "cancelled"
)

var ErrBadTransition = errors.New("invalid appointment status transition")

// CanTransition reports whether an appointment may move from s to next.
// Cancelled is terminal.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) bool {
	return s == StatusActive && next == StatusCancelled
}

type Appointment struct {
	ID              int64             `json:"id"`
	DoctorID        int64             `json:"doctor_id"`
	PatientID       int64             `json:"patient_id"`
	StartTime       Timestamp         `json:"start_time"`
	Status          AppointmentStatus `json:"status"`
	AppointmentType string            `json:"appointment_type,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Doctor          *User             `json:"doctor,omitempty"`
	Patient         *User             `json:"patient,omitempty"`
}

func (a *Appointment) Active() bool { return a.Status == StatusActive }

// Cancel moves an active appointment to cancelled. start_time is never
// touched; a reschedule is a cancel followed by a new booking.
func (a *Appointment) Cancel() error {
	if !a.Status.CanTransition(StatusCancelled) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, a.Status, StatusCancelled)
	}
	a.Status = StatusCancelled
	return nil
}

type ProfileCompletion struct {
	IsComplete           bool     `json:"is_complete"`
	CompletionPercentage int      `json:"completion_percentage"`
	MissingFields        []string `json:"missing_fields"`
	TotalFields          int      `json:"total_fields,omitempty"`
	CompletedFields      int      `json:"completed_fields,omitempty"`
}

// ProfileUpdate carries only the fields the caller wants changed; nil
// pointers are omitted from the request body.
type ProfileUpdate struct {
	FullName       *string `json:"full_name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Age            *int    `json:"age,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	MedicalHistory *string `json:"medical_history,omitempty"`
	Allergies      *string `json:"allergies,omitempty"`
}

func (p ProfileUpdate) Empty() bool {
	return p.FullName == nil && p.Phone == nil && p.Age == nil &&
		p.Gender == nil && p.MedicalHistory == nil && p.Allergies == nil
}

// Apply copies the set fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.MedicalHistory != nil {
		u.MedicalHistory = *p.MedicalHistory
	}
	if p.Allergies != nil {
		u.Allergies = *p.Allergies
	}
}
