package store

import (
	"context"
	"sort"
	"strings"

	"clinic-booking-client/internal/model"
)

// urgent conditions that put a patient on the priority list
var urgentConditions = []string{"Chest Pain", "Severe Headache", "Fever"}

// CreateUser assigns u an id and stores it with its password hash.
func (s *Store) CreateUser(ctx context.Context, u *model.User, passwordHash string) error {
	email := strings.ToLower(strings.TrimSpace(u.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byEmail[email]; dup {
		return ErrDuplicateEmail
	}
	s.nextUser++
	u.ID = s.nextUser
	s.users[u.ID] = &account{user: *u, hash: passwordHash}
	s.byEmail[email] = u.ID
	return nil
}

// UserByEmail returns the user and its password hash.
func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, "", ErrNotFound
	}
	a := s.users[id]
	u := a.user
	return &u, a.hash, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := a.user
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id int64, p model.ProfileUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Apply(&a.user)
	u := a.user
	return &u, nil
}

func (s *Store) usersWithRole(r model.Role) []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.User
	for _, a := range s.users {
		if a.user.Role == r {
			out = append(out, a.user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Doctors(ctx context.Context) []model.User {
	return s.usersWithRole(model.RoleDoctor)
}

func (s *Store) Patients(ctx context.Context) []model.User {
	return s.usersWithRole(model.RolePatient)
}

// PriorityPatients are patients whose medical history mentions an urgent
// condition.
func (s *Store) PriorityPatients(ctx context.Context) []model.User {
	var out []model.User
	for _, p := range s.Patients(ctx) {
		if Urgent(p.MedicalHistory) {
			out = append(out, p)
		}
	}
	return out
}

func Urgent(history string) bool {
	for _, c := range urgentConditions {
		if strings.Contains(history, c) {
			return true
		}
	}
	return false
}

// Completion reports which profile fields are still missing. Patients also
// need medical history and allergies.
func Completion(u *model.User) model.ProfileCompletion {
	type field struct {
		name string
		set  bool
	}
	fields := []field{
		{"full_name", u.FullName != ""},
		{"phone", u.Phone != ""},
		{"age", u.Age != 0},
		{"gender", u.Gender != ""},
	}
	if u.Role == model.RolePatient {
		fields = append(fields,
			field{"medical_history", u.MedicalHistory != ""},
			field{"allergies", u.Allergies != ""},
		)
	}

	missing := []string{}
	for _, f := range fields {
		if !f.set {
			missing = append(missing, f.name)
		}
	}
	total := len(fields)
	done := total - len(missing)
	return model.ProfileCompletion{
		IsComplete:           len(missing) == 0,
		CompletionPercentage: done * 100 / total,
		MissingFields:        missing,
		TotalFields:          total,
		CompletedFields:      done,
	}
}
