package store

import (
	"time"

	"clinic-booking-client/internal/model"
)

// The ledger maps a patient's Idempotency-Key to the appointment it
// created, so a retried submission never books twice.
type ledgerKey struct {
	userID int64
	key    string
}

type ledgerEntry struct {
	apptID int64
	at     time.Time
}

// caller holds s.mu
func (s *Store) replay(userID int64, key string) (*model.Appointment, bool) {
	if key == "" {
		return nil, false
	}
	e, ok := s.ledger[ledgerKey{userID, key}]
	if !ok {
		return nil, false
	}
	a, ok := s.appts[e.apptID]
	return a, ok
}

func (s *Store) record(userID int64, key string, apptID int64) {
	if key == "" {
		return
	}
	s.ledger[ledgerKey{userID, key}] = ledgerEntry{apptID: apptID, at: time.Now()}
}

// PruneLedger drops keys recorded before cutoff.
func (s *Store) PruneLedger(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.ledger {
		if e.at.Before(cutoff) {
			delete(s.ledger, k)
			n++
		}
	}
	return n
}
