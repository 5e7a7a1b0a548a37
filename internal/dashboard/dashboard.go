// Package dashboard assembles the doctor and patient home views from the
// gateway's read endpoints.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"clinic-booking-client/internal/model"
	"clinic-booking-client/internal/slot"
)

type DoctorAPI interface {
	MyAppointments(ctx context.Context) ([]model.Appointment, error)
	WaitingList(ctx context.Context) ([]model.User, error)
	PriorityPatients(ctx context.Context) ([]model.User, error)
}

type PatientAPI interface {
	MyAppointments(ctx context.Context) ([]model.Appointment, error)
	ProfileCompletion(ctx context.Context) (*model.ProfileCompletion, error)
}

type WaitingEntry struct {
	Patient  model.User
	Priority bool
}

type DoctorView struct {
	Doctor   model.User
	Day      time.Time
	Today    []model.Appointment
	Upcoming []model.Appointment
	Waiting  []WaitingEntry
	Calendar slot.Calendar
}

// LoadDoctor builds the doctor's view for day. times are the "HH:MM"
// columns of the calendar.
func LoadDoctor(ctx context.Context, api DoctorAPI, me model.User, day time.Time, times []string, capacity int) (*DoctorView, error) {
	appts, err := api.MyAppointments(ctx)
	if err != nil {
		return nil, err
	}
	all, err := api.WaitingList(ctx)
	if err != nil {
		return nil, err
	}
	priority, err := api.PriorityPatients(ctx)
	if err != nil {
		return nil, err
	}

	cal, err := slot.BuildCalendar([]model.User{me}, appts, day, times, capacity)
	if err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}

	v := &DoctorView{Doctor: me, Day: day, Waiting: PrioritizeWaiting(priority, all), Calendar: cal}
	for _, a := range sortedActive(appts) {
		switch {
		case sameDay(a.StartTime.Time, day):
			v.Today = append(v.Today, a)
		case a.StartTime.After(day):
			v.Upcoming = append(v.Upcoming, a)
		}
	}
	return v, nil
}

// PrioritizeWaiting puts priority patients first, then everyone else, each
// patient once.
func PrioritizeWaiting(priority, all []model.User) []WaitingEntry {
	seen := make(map[int64]bool, len(all))
	out := make([]WaitingEntry, 0, len(all))
	for _, p := range priority {
		if !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, WaitingEntry{Patient: p, Priority: true})
		}
	}
	for _, p := range all {
		if !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, WaitingEntry{Patient: p})
		}
	}
	return out
}

type PatientView struct {
	Patient    model.User
	Upcoming   []model.Appointment
	Past       []model.Appointment
	Cancelled  []model.Appointment
	Completion *model.ProfileCompletion
}

func LoadPatient(ctx context.Context, api PatientAPI, me model.User, now time.Time) (*PatientView, error) {
	appts, err := api.MyAppointments(ctx)
	if err != nil {
		return nil, err
	}
	pc, err := api.ProfileCompletion(ctx)
	if err != nil {
		return nil, err
	}

	v := &PatientView{Patient: me, Completion: pc}
	sortByStart(appts)
	for _, a := range appts {
		switch {
		case !a.Active():
			v.Cancelled = append(v.Cancelled, a)
		case a.StartTime.Before(now):
			v.Past = append(v.Past, a)
		default:
			v.Upcoming = append(v.Upcoming, a)
		}
	}
	return v, nil
}

// Next is the earliest upcoming appointment.
func (v *PatientView) Next() (model.Appointment, bool) {
	if len(v.Upcoming) == 0 {
		return model.Appointment{}, false
	}
	return v.Upcoming[0], true
}

// NextVisit renders the next appointment as "Jan 12 · 10:30" with the
// doctor's name as the hint.
func (v *PatientView) NextVisit() (label, hint string) {
	a, ok := v.Next()
	if !ok {
		return "None scheduled", "Book an appointment"
	}
	label = a.StartTime.Format("Jan 2 · 15:04")
	if a.Doctor != nil {
		hint = "Dr. " + a.Doctor.FullName
	}
	return label, hint
}

func sortByStart(as []model.Appointment) {
	sort.SliceStable(as, func(i, j int) bool { return as[i].StartTime.Before(as[j].StartTime.Time) })
}

func sortedActive(as []model.Appointment) []model.Appointment {
	var out []model.Appointment
	for _, a := range as {
		if a.Active() {
			out = append(out, a)
		}
	}
	sortByStart(out)
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
