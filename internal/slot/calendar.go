package slot

import (
	"fmt"
	"sort"
	"time"

	"clinic-booking-client/internal/model"
)

// Key identifies the bookable unit an appointment counts against.
type Key struct {
	DoctorID int64
	Start    time.Time
}

// Tally groups active appointments into slots of the given capacity.
// Cancelled appointments are ignored; active appointments beyond capacity
// are counted as waiting.
func Tally(appts []model.Appointment, capacity int) (map[Key]Slot, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	counts := make(map[Key]int)
	first := make(map[Key]model.Appointment)
	for _, a := range appts {
		if !a.Active() {
			continue
		}
		k := Key{DoctorID: a.DoctorID, Start: a.StartTime.UTC()}
		if _, seen := first[k]; !seen {
			first[k] = a
		}
		counts[k]++
	}

	out := make(map[Key]Slot, len(counts))
	for k, n := range counts {
		booked := min(n, capacity)
		s := Slot{
			Time:        k.Start.Format("15:04"),
			Label:       labelFor(first[k]),
			Capacity:    capacity,
			Booked:      booked,
			WaitingList: n - booked,
		}
		if n == 1 && first[k].Patient != nil {
			s.Note = first[k].Patient.FullName
		}
		if d := first[k].Doctor; d != nil {
			s.Doctor = d.FullName
		}
		out[k] = s
	}
	return out, nil
}

func labelFor(a model.Appointment) string {
	if a.AppointmentType != "" {
		return a.AppointmentType
	}
	return "Appointment"
}

type Row struct {
	ID       string
	Title    string
	Subtitle string
	Slots    []Slot
}

type Calendar struct {
	Times []string
	Rows  []Row
}

// Summary counts slots by status across the calendar.
func (c Calendar) Summary() map[Status]int {
	out := map[Status]int{StatusAvailable: 0, StatusBooked: 0, StatusWaiting: 0}
	for _, r := range c.Rows {
		for _, s := range r.Slots {
			out[s.Status()]++
		}
	}
	return out
}

// RoomName assigns rooms to doctors by position: Room A, Room B, ...
func RoomName(i int) string {
	if i < 26 {
		return fmt.Sprintf("Room %c", 'A'+i)
	}
	return fmt.Sprintf("Room %d", i+1)
}

// BuildCalendar lays out one row per doctor for the given day. Times are
// "HH:MM" wall-clock values; a time with no appointments yields an open slot.
func BuildCalendar(doctors []model.User, appts []model.Appointment, day time.Time, times []string, capacity int) (Calendar, error) {
	tally, err := Tally(appts, capacity)
	if err != nil {
		return Calendar{}, err
	}

	docs := append([]model.User(nil), doctors...)
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	cal := Calendar{Times: append([]string(nil), times...)}
	for i, d := range docs {
		room := RoomName(i)
		row := Row{
			ID:       fmt.Sprintf("doctor-%d", d.ID),
			Title:    room + " · " + d.FullName,
			Subtitle: d.Department,
		}
		for _, clock := range times {
			at, err := At(day, clock)
			if err != nil {
				return Calendar{}, err
			}
			s, ok := tally[Key{DoctorID: d.ID, Start: at}]
			if !ok {
				s = Slot{Time: clock, Label: "Open", Capacity: capacity}
			}
			s.Doctor = d.FullName
			s.Room = room
			row.Slots = append(row.Slots, s)
		}
		cal.Rows = append(cal.Rows, row)
	}
	return cal, nil
}

// At combines a calendar day with an "HH:MM" clock value in UTC.
func At(day time.Time, clock string) (time.Time, error) {
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad clock value %q: %w", clock, err)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, time.UTC), nil
}
