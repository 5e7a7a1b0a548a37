package store

import (
	"context"
	"fmt"

	"clinic-booking-client/internal/model"
)

// Demo credentials created by SeedDemo.
const (
	DemoDoctorPassword  = "doctor123"
	DemoPatientPassword = "patient123"
)

var demoDoctors = []model.User{
	{Email: "chen@clinic.test", FullName: "Amara Chen", Department: "General Medicine"},
	{Email: "patel@clinic.test", FullName: "Ravi Patel", Department: "Cardiology"},
	{Email: "alvarez@clinic.test", FullName: "Lucia Alvarez", Department: "Dermatology"},
	{Email: "kim@clinic.test", FullName: "Daniel Kim", Department: "Orthopedics"},
	{Email: "johnson@clinic.test", FullName: "Grace Johnson", Department: "Pediatrics"},
	{Email: "martinez@clinic.test", FullName: "Pablo Martinez", Department: "Neurology"},
}

var demoPatients = []model.User{
	{Email: "aylin@clinic.test", FullName: "Aylin Demir", Phone: "5551230001", Age: 34, Gender: "female", MedicalHistory: "Chest Pain", Allergies: "None"},
	{Email: "omar@clinic.test", FullName: "Omar Haddad", Phone: "5551230002", Age: 58, Gender: "male", MedicalHistory: "Hypertension"},
	{Email: "lena@clinic.test", FullName: "Lena Vogel", Age: 27, MedicalHistory: "Severe Headache"},
}

// AddDoctor registers a doctor account. Doctors cannot sign up through the
// public register endpoint.
func (s *Store) AddDoctor(ctx context.Context, u *model.User, passwordHash string) error {
	u.Role = model.RoleDoctor
	return s.CreateUser(ctx, u, passwordHash)
}

// SeedDemo fills an empty store with demo doctors and patients.
func SeedDemo(ctx context.Context, st *Store, hash func(string) (string, error)) error {
	dh, err := hash(DemoDoctorPassword)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	ph, err := hash(DemoPatientPassword)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	for _, d := range demoDoctors {
		d := d
		if err := st.AddDoctor(ctx, &d, dh); err != nil {
			return fmt.Errorf("seed doctor %s: %w", d.Email, err)
		}
	}
	for _, p := range demoPatients {
		p := p
		p.Role = model.RolePatient
		if err := st.CreateUser(ctx, &p, ph); err != nil {
			return fmt.Errorf("seed patient %s: %w", p.Email, err)
		}
	}
	return nil
}
