// Package booking drives the reservation steps: department, doctor, date,
// time, then submit. The remote service is the only authority on whether
// a slot can be taken; the workflow performs no local overlap check.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinic-booking-client/internal/gateway"
	"clinic-booking-client/internal/model"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// GeneralDepartment groups doctors with no department set.
	GeneralDepartment = "General"
)

var (
	ErrSubmitInFlight    = errors.New("a booking is already being submitted")
	ErrIncomplete        = errors.New("select a doctor, date and time first")
	ErrUnknownDepartment = errors.New("unknown department")
	ErrUnknownDoctor     = errors.New("doctor not in the selected department")
	ErrBadDate           = errors.New("date must look like 2025-01-12")
	ErrBadTime           = errors.New("time must look like 10:30")
)

type API interface {
	Doctors(ctx context.Context) ([]model.User, error)
	MyAppointments(ctx context.Context) ([]model.Appointment, error)
	CreateAppointment(ctx context.Context, req gateway.CreateAppointmentRequest) (*model.Appointment, error)
}

type Workflow struct {
	api API
	log zerolog.Logger

	submitting atomic.Bool
	closed     atomic.Bool

	mu         sync.Mutex
	doctors    []model.User
	appts      []model.Appointment
	department string
	doctor     *model.User
	date       string
	clock      string
	lastErr    string
}

func New(api API, log zerolog.Logger) *Workflow {
	return &Workflow{api: api, log: log}
}

// Load fetches the doctor list and the caller's appointments.
func (w *Workflow) Load(ctx context.Context) error {
	docs, err := w.api.Doctors(ctx)
	if err != nil {
		w.fail(err)
		return err
	}
	appts, err := w.api.MyAppointments(ctx)
	if err != nil {
		w.fail(err)
		return err
	}
	if w.closed.Load() {
		return nil
	}
	w.mu.Lock()
	w.doctors = docs
	w.appts = appts
	w.lastErr = ""
	w.mu.Unlock()
	return nil
}

func departmentOf(u model.User) string {
	if u.Department == "" {
		return GeneralDepartment
	}
	return u.Department
}

func (w *Workflow) Departments() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, d := range w.doctors {
		dep := departmentOf(d)
		if !seen[dep] {
			seen[dep] = true
			out = append(out, dep)
		}
	}
	sort.Strings(out)
	return out
}

// SelectDepartment narrows the doctor list and clears later choices.
func (w *Workflow) SelectDepartment(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, d := range w.doctors {
		if departmentOf(d) == name {
			w.department = name
			w.doctor = nil
			w.date, w.clock = "", ""
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownDepartment, name)
}

// DoctorsInDepartment lists the selected department's doctors, or every
// doctor when no department is selected.
func (w *Workflow) DoctorsInDepartment() []model.User {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inDepartment()
}

func (w *Workflow) inDepartment() []model.User {
	var out []model.User
	for _, d := range w.doctors {
		if w.department == "" || departmentOf(d) == w.department {
			out = append(out, d)
		}
	}
	return out
}

func (w *Workflow) SelectDoctor(id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, d := range w.inDepartment() {
		if d.ID == id {
			d := d
			w.doctor = &d
			if w.department == "" {
				w.department = departmentOf(d)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownDoctor, id)
}

func (w *Workflow) SelectDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrBadDate
	}
	w.mu.Lock()
	w.date = date
	w.mu.Unlock()
	return nil
}

func (w *Workflow) SelectTime(clock string) error {
	if _, err := time.Parse(TimeLayout, clock); err != nil || len(clock) != len(TimeLayout) {
		return ErrBadTime
	}
	w.mu.Lock()
	w.clock = clock
	w.mu.Unlock()
	return nil
}

// Selection is the current choice set.
type Selection struct {
	Department string
	Doctor     *model.User
	Date       string
	Time       string
}

func (w *Workflow) Selection() Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Selection{Department: w.department, Date: w.date, Time: w.clock}
	if w.doctor != nil {
		d := *w.doctor
		s.Doctor = &d
	}
	return s
}

// StartTime joins the chosen date and time, e.g. "2025-01-12T10:30:00".
func (w *Workflow) StartTime() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.startTime()
}

func (w *Workflow) startTime() (string, error) {
	if w.doctor == nil || w.date == "" || w.clock == "" {
		return "", ErrIncomplete
	}
	return w.date + "T" + w.clock + ":00", nil
}

// Submit books the current selection. Only one submission runs at a time;
// a second call while one is outstanding returns ErrSubmitInFlight without
// sending anything. On failure the gateway's message is kept verbatim and
// the appointment list is left alone. On success the list is re-fetched.
func (w *Workflow) Submit(ctx context.Context) (*model.Appointment, error) {
	if !w.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer w.submitting.Store(false)

	w.mu.Lock()
	start, err := w.startTime()
	var doctorID int64
	if w.doctor != nil {
		doctorID = w.doctor.ID
	}
	w.mu.Unlock()
	if err != nil {
		return nil, err
	}

	req := gateway.CreateAppointmentRequest{DoctorID: doctorID, StartTime: start, IdempotencyKey: uuid.NewString()}
	apt, err := w.api.CreateAppointment(ctx, req)
	if err != nil {
		w.log.Debug().Err(err).Int64("doctor", doctorID).Str("start", start).Msg("booking rejected")
		w.fail(err)
		return nil, err
	}

	appts, rerr := w.api.MyAppointments(ctx)
	if w.closed.Load() {
		return apt, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if rerr != nil {
		w.log.Warn().Err(rerr).Msg("refresh after booking failed")
		w.lastErr = rerr.Error()
		return apt, nil
	}
	w.appts = appts
	w.lastErr = ""
	w.date, w.clock = "", ""
	return apt, nil
}

func (w *Workflow) fail(err error) {
	if w.closed.Load() {
		return
	}
	w.mu.Lock()
	w.lastErr = err.Error()
	w.mu.Unlock()
}

func (w *Workflow) Appointments() []model.Appointment {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.Appointment(nil), w.appts...)
}

// Error is the last message to show the user, or "".
func (w *Workflow) Error() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

func (w *Workflow) Submitting() bool { return w.submitting.Load() }

// Close stops results of requests still outstanding from being applied.
func (w *Workflow) Close() { w.closed.Store(true) }

// CandidateDates lists the 14 bookable days starting at today.
func CandidateDates(today time.Time) []string {
	out := make([]string, 0, 14)
	for i := 0; i < 14; i++ {
		out = append(out, today.AddDate(0, 0, i).Format(DateLayout))
	}
	return out
}

// CandidateTimes lists half-hour starts from 09:00 to 16:30.
func CandidateTimes() []string {
	var out []string
	for h := 9; h < 17; h++ {
		for _, m := range []int{0, 30} {
			out = append(out, fmt.Sprintf("%02d:%02d", h, m))
		}
	}
	return out
}
