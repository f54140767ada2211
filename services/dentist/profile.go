package dentist

import (
	"context"
	"fmt"
	"strings"

	"clinicops/models"
	"clinicops/services/access"
	"clinicops/services/scheduling"
	"clinicops/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Create registers a dentist. Missing policy fields fall back to the clinic default.
func (s *DefaultDentistService) Create(ctx context.Context, caller access.Decision, d models.Dentist) (*models.Dentist, error) {
	if err := caller.Require(access.ManageDentists); err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.FirstName) == "" || strings.TrimSpace(d.LastName) == "" {
		return nil, utils.NewValidationError("name", "first and last name are required")
	}
	if strings.TrimSpace(d.LicenseNumber) == "" {
		return nil, utils.NewValidationError("licenseNumber", "is required")
	}
	if d.Policy == (models.SchedulingPolicy{}) {
		d.Policy = models.DefaultSchedulingPolicy
	}
	if err := scheduling.ValidatePolicy(d.Policy); err != nil {
		return nil, err
	}
	if err := scheduling.ValidateWeeklyHours(d.WeeklyHours); err != nil {
		return nil, err
	}

	seq, err := s.Sequences.Next(ctx, "dentists")
	if err != nil {
		utils.GetLogger().Error("Failed to allocate dentist ID", zap.Error(err))
		return nil, fmt.Errorf("failed to create dentist")
	}

	now := s.now()
	d.ID = fmt.Sprintf("DEN%04d", seq)
	d.Active = true
	d.CreatedAt = now
	d.UpdatedAt = now
	for i := range d.Credentials {
		d.Credentials[i].ID = uuid.NewString()
	}
	for i := range d.TimeOff {
		d.TimeOff[i].ID = uuid.NewString()
		d.TimeOff[i].RequestedAt = now
	}

	if err := s.Repo.Create(ctx, &d); err != nil {
		utils.GetLogger().Error("Failed to create dentist", zap.Error(err))
		return nil, fmt.Errorf("failed to create dentist: %w", err)
	}
	utils.GetLogger().Info("Dentist created", zap.String("dentistID", d.ID))
	return &d, nil
}

func (s *DefaultDentistService) Get(ctx context.Context, id string) (*models.Dentist, error) {
	d, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dentist %s: %w", id, err)
	}
	return d, nil
}

func (s *DefaultDentistService) List(ctx context.Context, filter models.DentistFilter, page utils.Pagination) (models.Page[models.Dentist], error) {
	dentists, total, err := s.Repo.List(ctx, filter, page)
	if err != nil {
		return models.Page[models.Dentist]{}, err
	}
	return utils.NewPage(dentists, page, total), nil
}

// canEdit allows dentist managers and the dentist themself.
func canEdit(caller access.Decision, id string) error {
	if caller.Can(access.ManageDentists) || caller.OwnsDentist(id) {
		return nil
	}
	return access.ErrForbidden
}

// mutate loads the dentist, applies fn and saves the result. scheduleChanged notifies the
// observer after a successful save.
func (s *DefaultDentistService) mutate(ctx context.Context, id string, scheduleChanged bool, fn func(d *models.Dentist) error) (*models.Dentist, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	d.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update dentist %s: %w", id, err)
	}
	if scheduleChanged && s.Observer != nil {
		s.Observer.ScheduleChanged(ctx, id)
	}
	return d, nil
}

func (s *DefaultDentistService) Update(ctx context.Context, caller access.Decision, id string, upd models.DentistUpdate) (*models.Dentist, error) {
	if err := canEdit(caller, id); err != nil {
		return nil, err
	}
	// Only managers may switch a dentist on or off.
	if upd.Active != nil && !caller.Can(access.ManageDentists) {
		return nil, access.ErrForbidden
	}
	return s.mutate(ctx, id, upd.Active != nil, func(d *models.Dentist) error {
		if upd.FirstName != nil {
			d.FirstName = *upd.FirstName
		}
		if upd.LastName != nil {
			d.LastName = *upd.LastName
		}
		if upd.Email != nil {
			d.Email = *upd.Email
		}
		if upd.Phone != nil {
			d.Phone = *upd.Phone
		}
		if upd.Specialization != nil {
			d.Specialization = *upd.Specialization
		}
		if upd.ConsultationFee != nil {
			if *upd.ConsultationFee < 0 {
				return utils.NewValidationError("consultationFee", "cannot be negative")
			}
			d.ConsultationFee = *upd.ConsultationFee
		}
		if upd.Active != nil {
			d.Active = *upd.Active
		}
		return nil
	})
}

// AddCredential appends a credential with a fresh ID.
func (s *DefaultDentistService) AddCredential(ctx context.Context, caller access.Decision, id string, cred models.Credential) (*models.Dentist, error) {
	if err := canEdit(caller, id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cred.Title) == "" || strings.TrimSpace(cred.Institution) == "" {
		return nil, utils.NewValidationError("credential", "title and institution are required")
	}
	cred.ID = uuid.NewString()
	return s.mutate(ctx, id, false, func(d *models.Dentist) error {
		d.Credentials = append(d.Credentials, cred)
		return nil
	})
}
