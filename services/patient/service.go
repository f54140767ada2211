package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clinicops/models"
	"clinicops/services/access"
	"clinicops/utils"

	"go.uber.org/zap"
)

func validate(p models.Patient, now time.Time) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return utils.NewValidationError("firstName", "is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return utils.NewValidationError("lastName", "is required")
	}
	if strings.TrimSpace(p.Phone) == "" {
		return utils.NewValidationError("phone", "is required")
	}
	dob, err := time.Parse(models.DateLayout, p.DateOfBirth)
	if err != nil {
		return utils.NewValidationError("dateOfBirth", "must be a date (YYYY-MM-DD)")
	}
	if dob.After(now) {
		return utils.NewValidationError("dateOfBirth", "cannot be in the future")
	}
	return nil
}

// Create registers a patient profile. Staff with patients:manage may create any profile; a
// patient account without a profile may create its own, which is then linked to the account.
func (s *DefaultPatientService) Create(ctx context.Context, caller access.Decision, p models.Patient) (*models.PatientView, error) {
	selfOnboarding := caller.Role == models.RolePatient && caller.ProfileID == ""
	if !selfOnboarding {
		if err := caller.Require(access.ManagePatients); err != nil {
			return nil, err
		}
	}
	if err := validate(p, s.now()); err != nil {
		return nil, err
	}
	if selfOnboarding && s.Users != nil {
		// The caller's decision may predate an earlier onboarding; the account record is
		// authoritative.
		u, err := s.Users.GetByID(ctx, caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", caller.UserID, err)
		}
		if u.ProfileID != "" {
			return nil, utils.NewValidationError("profile", "account already has a patient profile")
		}
	}

	seq, err := s.Sequences.Next(ctx, "patients")
	if err != nil {
		utils.GetLogger().Error("Failed to allocate patient ID", zap.Error(err))
		return nil, fmt.Errorf("failed to create patient")
	}

	now := s.now()
	p.ID = fmt.Sprintf("PAT%06d", seq)
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now
	if selfOnboarding {
		p.UserID = caller.UserID
	}
	if err := s.Repo.Create(ctx, &p); err != nil {
		utils.GetLogger().Error("Failed to create patient", zap.Error(err))
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	if selfOnboarding && s.Users != nil {
		if err := s.linkAccount(ctx, caller.UserID, p.ID); err != nil {
			utils.GetLogger().Error("Failed to link patient profile to account",
				zap.String("userID", caller.UserID), zap.String("patientID", p.ID), zap.Error(err))
		}
	}

	utils.GetLogger().Info("Patient created", zap.String("patientID", p.ID))
	view := models.NewPatientView(p, now)
	return &view, nil
}

func (s *DefaultPatientService) linkAccount(ctx context.Context, userID, patientID string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.ProfileID = patientID
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}
	if s.AuthCache != nil {
		if err := utils.EvictAuthEntry(ctx, s.AuthCache, userID); err != nil {
			utils.GetLogger().Warn("Failed to evict auth cache after linking profile",
				zap.String("userID", userID), zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultPatientService) load(ctx context.Context, id string) (*models.Patient, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("patient %s: %w", id, err)
	}
	return p, nil
}

func (s *DefaultPatientService) Get(ctx context.Context, caller access.Decision, id string) (*models.PatientView, error) {
	if !caller.CanSeePatient(id) {
		return nil, access.ErrForbidden
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := models.NewPatientView(*p, s.now())
	return &view, nil
}

func (s *DefaultPatientService) List(
	ctx context.Context,
	caller access.Decision,
	filter models.PatientFilter,
	page utils.Pagination,
) (models.Page[models.PatientView], error) {
	if err := caller.Require(access.ViewAllPatients); err != nil {
		return models.Page[models.PatientView]{}, err
	}
	patients, total, err := s.Repo.List(ctx, filter, page)
	if err != nil {
		return models.Page[models.PatientView]{}, err
	}
	now := s.now()
	views := make([]models.PatientView, 0, len(patients))
	for _, p := range patients {
		views = append(views, models.NewPatientView(p, now))
	}
	return utils.NewPage(views, page, total), nil
}

// Update applies a partial edit. Patients may edit their own profile.
func (s *DefaultPatientService) Update(ctx context.Context, caller access.Decision, id string, upd models.PatientUpdate) (*models.PatientView, error) {
	if !caller.Can(access.ManagePatients) && !caller.OwnsPatient(id) {
		return nil, access.ErrForbidden
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(p, upd)
	if err := validate(*p, s.now()); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update patient %s: %w", id, err)
	}
	view := models.NewPatientView(*p, p.UpdatedAt)
	return &view, nil
}

func applyUpdate(p *models.Patient, upd models.PatientUpdate) {
	if upd.FirstName != nil {
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		p.LastName = *upd.LastName
	}
	if upd.DateOfBirth != nil {
		p.DateOfBirth = *upd.DateOfBirth
	}
	if upd.Gender != nil {
		p.Gender = *upd.Gender
	}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	if upd.Email != nil {
		p.Email = *upd.Email
	}
	if upd.Address != nil {
		p.Address = *upd.Address
	}
	if upd.EmergencyContact != nil {
		p.EmergencyContact = upd.EmergencyContact
	}
	if upd.MedicalHistory != nil {
		p.MedicalHistory = *upd.MedicalHistory
	}
	if upd.Allergies != nil {
		p.Allergies = *upd.Allergies
	}
	if upd.Insurance != nil {
		p.Insurance = upd.Insurance
	}
}

// Deactivate hides a patient from booking without deleting history.
func (s *DefaultPatientService) Deactivate(ctx context.Context, caller access.Decision, id string) error {
	if err := caller.Require(access.ManagePatients); err != nil {
		return err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !p.Active {
		return nil
	}
	p.Active = false
	p.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to deactivate patient %s: %w", id, err)
	}
	utils.GetLogger().Info("Patient deactivated", zap.String("patientID", id))
	return nil
}
