package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	doctors  DoctorRepository
	patients PatientRepository
}

func NewService(doctors DoctorRepository, patients PatientRepository) *Service {
	return &Service{doctors: doctors, patients: patients}
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if d.Role == "" {
		d.Role = RoleDoctor
	}
	if !validRoles[d.Role] {
		return fmt.Errorf("invalid role: %s", d.Role)
	}
	d.Active = true
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// DoctorExists reports whether an active doctor with the given ID is
// registered. Deactivated doctors do not count.
func (s *Service) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return d != nil && d.Active, nil
}

// HasRole reports whether the doctor holds the given role.
func (s *Service) HasRole(ctx context.Context, id uuid.UUID, role Role) (bool, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return d != nil && d.Role == role, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.Role != "" && !validRoles[d.Role] {
		return fmt.Errorf("invalid role: %s", d.Role)
	}
	return s.doctors.Update(ctx, d)
}

// DeactivateDoctor marks a doctor inactive instead of deleting the row, so
// historical bookings keep a valid reference.
func (s *Service) DeactivateDoctor(ctx context.Context, id uuid.UUID) error {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("doctor %s not found", id)
	}
	d.Active = false
	return s.doctors.Update(ctx, d)
}

func (s *Service) ListDoctors(ctx context.Context, activeOnly bool, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, activeOnly, limit, offset)
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}
