// Package slot derives bookable capacity views from appointment data.
// A Slot is never persisted; it is rebuilt from appointments (or demo
// fixtures) whenever a calendar is rendered.
package slot

import (
	"errors"
	"fmt"
	"math"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusWaiting   Status = "waiting"
)

func (s Status) Label() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusBooked:
		return "Booked"
	case StatusWaiting:
		return "Waiting List"
	}
	return string(s)
}

var (
	ErrInvalidCapacity = errors.New("slot capacity must be positive")
	ErrInvalidCounts   = errors.New("slot counts out of range")
)

// ComputeStatus is total: any non-empty waiting list reads as waiting, even
// when booked < capacity.
func ComputeStatus(capacity, booked, waitingList int) Status {
	switch {
	case waitingList > 0:
		return StatusWaiting
	case booked >= capacity:
		return StatusBooked
	default:
		return StatusAvailable
	}
}

// OccupancyPercent returns round(100 * booked / capacity).
func OccupancyPercent(capacity, booked int) (int, error) {
	if capacity <= 0 {
		return 0, ErrInvalidCapacity
	}
	return int(math.Round(100 * float64(booked) / float64(capacity))), nil
}

type Slot struct {
	Time        string
	Label       string
	Note        string
	Doctor      string
	Room        string
	Capacity    int
	Booked      int
	WaitingList int
}

// New validates the counts and returns a slot. It fails fast instead of
// producing a division artifact later.
func New(time, label string, capacity, booked, waitingList int) (Slot, error) {
	s := Slot{Time: time, Label: label, Capacity: capacity, Booked: booked, WaitingList: waitingList}
	if err := s.Validate(); err != nil {
		return Slot{}, err
	}
	return s, nil
}

func (s Slot) Validate() error {
	if s.Capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, s.Capacity)
	}
	if s.Booked < 0 || s.Booked > s.Capacity {
		return fmt.Errorf("%w: booked %d of %d", ErrInvalidCounts, s.Booked, s.Capacity)
	}
	if s.WaitingList < 0 {
		return fmt.Errorf("%w: waiting list %d", ErrInvalidCounts, s.WaitingList)
	}
	if s.WaitingList > 0 && s.Booked != s.Capacity {
		return fmt.Errorf("%w: waiting list %d with %d of %d booked", ErrInvalidCounts, s.WaitingList, s.Booked, s.Capacity)
	}
	return nil
}

func (s Slot) Status() Status {
	return ComputeStatus(s.Capacity, s.Booked, s.WaitingList)
}

// Occupancy is OccupancyPercent for a validated slot.
func (s Slot) Occupancy() int {
	p, _ := OccupancyPercent(s.Capacity, s.Booked)
	return p
}

func (s Slot) Remaining() int {
	if r := s.Capacity - s.Booked; r > 0 {
		return r
	}
	return 0
}

func (s Slot) Bookable() bool {
	return s.Status() == StatusAvailable
}
