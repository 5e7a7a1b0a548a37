// Package store is the stub service's in-memory state: users, appointments
// and the idempotency ledger. All methods are safe for concurrent use.
package store

import (
	"errors"
	"sync"

	"clinic-booking-client/internal/model"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("This email is already registered")
	ErrSlotFull       = errors.New("This doctor has another appointment at the selected time")
	ErrDoctorNotFound = errors.New("Doctor not found")
	ErrForbidden      = errors.New("forbidden")
)

type account struct {
	user model.User
	hash string
}

type Store struct {
	mu       sync.RWMutex
	capacity int

	nextUser int64
	nextAppt int64

	users   map[int64]*account
	byEmail map[string]int64
	appts   map[int64]*model.Appointment
	ledger  map[ledgerKey]ledgerEntry
}

// New returns an empty store allowing capacity active appointments per
// doctor and start time. capacity < 1 is treated as 1.
func New(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		users:    make(map[int64]*account),
		byEmail:  make(map[string]int64),
		appts:    make(map[int64]*model.Appointment),
		ledger:   make(map[ledgerKey]ledgerEntry),
	}
}

func (s *Store) Capacity() int { return s.capacity }
