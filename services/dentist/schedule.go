package dentist

import (
	"context"
	"fmt"

	"clinicops/database"
	"clinicops/models"
	"clinicops/services/access"
	"clinicops/services/scheduling"
	"clinicops/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SetWeeklyHours replaces the whole weekly rule list.
func (s *DefaultDentistService) SetWeeklyHours(ctx context.Context, caller access.Decision, id string, rules []models.WeeklyHoursRule) (*models.Dentist, error) {
	if err := canEdit(caller, id); err != nil {
		return nil, err
	}
	if err := scheduling.ValidateWeeklyHours(rules); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, true, func(d *models.Dentist) error {
		d.WeeklyHours = append([]models.WeeklyHoursRule(nil), rules...)
		return nil
	})
}

func (s *DefaultDentistService) UpdatePolicy(ctx context.Context, caller access.Decision, id string, policy models.SchedulingPolicy) (*models.Dentist, error) {
	if err := canEdit(caller, id); err != nil {
		return nil, err
	}
	if err := scheduling.ValidatePolicy(policy); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, true, func(d *models.Dentist) error {
		d.Policy = policy
		return nil
	})
}

// RequestTimeOff records an unapproved absence. It does not affect availability until approved.
func (s *DefaultDentistService) RequestTimeOff(ctx context.Context, caller access.Decision, id string, req models.TimeOffRequest) (*models.AbsenceInterval, error) {
	if err := canEdit(caller, id); err != nil {
		return nil, err
	}
	start, err := scheduling.ParseDate(req.StartDate)
	if err != nil {
		return nil, utils.NewValidationError("startDate", err.Error())
	}
	end, err := scheduling.ParseDate(req.EndDate)
	if err != nil {
		return nil, utils.NewValidationError("endDate", err.Error())
	}
	if end.Before(start) {
		return nil, utils.NewValidationError("endDate", "must not be before startDate")
	}

	absence := models.AbsenceInterval{
		ID:          uuid.NewString(),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Reason:      req.Reason,
		RequestedAt: s.now(),
	}
	if _, err := s.mutate(ctx, id, false, func(d *models.Dentist) error {
		d.TimeOff = append(d.TimeOff, absence)
		return nil
	}); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Time off requested",
		zap.String("dentistID", id), zap.String("timeOffID", absence.ID),
		zap.String("start", req.StartDate), zap.String("end", req.EndDate))
	return &absence, nil
}

// ApproveTimeOff marks the addressed absence approved; from then on it blocks availability.
func (s *DefaultDentistService) ApproveTimeOff(ctx context.Context, caller access.Decision, id, timeOffID string) (*models.AbsenceInterval, error) {
	if err := caller.Require(access.ApproveTimeOff); err != nil {
		return nil, err
	}
	var approved models.AbsenceInterval
	_, err := s.mutate(ctx, id, true, func(d *models.Dentist) error {
		i := d.TimeOffByID(timeOffID)
		if i < 0 {
			return fmt.Errorf("time off %s: %w", timeOffID, database.ErrNotFound)
		}
		d.TimeOff[i].Approved = true
		d.TimeOff[i].ApprovedBy = caller.UserID
		d.TimeOff[i].ApprovedAt = s.now()
		approved = d.TimeOff[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &approved, nil
}

// RemoveTimeOff deletes the addressed absence. Withdrawing an approved absence needs the
// same capability as approving one.
func (s *DefaultDentistService) RemoveTimeOff(ctx context.Context, caller access.Decision, id, timeOffID string) error {
	if err := canEdit(caller, id); err != nil {
		return err
	}
	_, err := s.mutate(ctx, id, true, func(d *models.Dentist) error {
		i := d.TimeOffByID(timeOffID)
		if i < 0 {
			return fmt.Errorf("time off %s: %w", timeOffID, database.ErrNotFound)
		}
		if d.TimeOff[i].Approved && !caller.Can(access.ApproveTimeOff) {
			return access.ErrForbidden
		}
		d.TimeOff = append(d.TimeOff[:i], d.TimeOff[i+1:]...)
		return nil
	})
	return err
}
