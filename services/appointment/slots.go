package appointment

import (
	"context"
	"encoding/json"
	"fmt"

	"clinicops/services/scheduling"
	"clinicops/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func slotCacheKey(dentistID, date string) string {
	return fmt.Sprintf("%s%s:%s", utils.SlotCachePrefix, dentistID, date)
}

// GetAvailableSlots returns the dentist's open slot starts for date.
func (s *DefaultAppointmentService) GetAvailableSlots(ctx context.Context, dentistID, date string, onlyFree bool) ([]string, error) {
	day, err := scheduling.ParseDate(date)
	if err != nil {
		return nil, scheduling.NewError(scheduling.InvalidInterval, "%s", err.Error())
	}
	dentist, err := s.Dentists.GetByID(ctx, dentistID)
	if err != nil {
		return nil, fmt.Errorf("dentist %s: %w", dentistID, err)
	}
	if !dentist.Active {
		return []string{}, nil
	}

	slots, ok := s.cachedSlots(ctx, dentistID, date)
	if !ok {
		slots = scheduling.ComputeOpenSlots(dentist.WeeklyHours, dentist.TimeOff, dentist.Policy, day)
		s.storeSlots(ctx, dentistID, date, slots)
	}
	if !onlyFree {
		return slots, nil
	}

	existing, err := s.Appointments.ListByDentistAndDate(ctx, dentistID, date)
	if err != nil {
		return nil, err
	}
	return scheduling.FilterFree(slots, dentist.Policy, existing, dentistID, date), nil
}

func (s *DefaultAppointmentService) cachedSlots(ctx context.Context, dentistID, date string) ([]string, bool) {
	if s.Cache == nil {
		return nil, false
	}
	raw, err := s.Cache.Get(ctx, slotCacheKey(dentistID, date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.GetLogger().Warn("Slot cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var slots []string
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (s *DefaultAppointmentService) storeSlots(ctx context.Context, dentistID, date string, slots []string) {
	if s.Cache == nil || s.Settings.SlotCacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, slotCacheKey(dentistID, date), raw, s.Settings.SlotCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("Slot cache write failed", zap.Error(err))
	}
}

func (s *DefaultAppointmentService) invalidateSlots(ctx context.Context, dentistID, date string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, slotCacheKey(dentistID, date)).Err(); err != nil {
		utils.GetLogger().Warn("Slot cache invalidation failed", zap.String("dentistID", dentistID), zap.Error(err))
	}
}

// ScheduleChanged drops every cached date of a dentist after hours, policy or time off change.
func (s *DefaultAppointmentService) ScheduleChanged(ctx context.Context, dentistID string) {
	if s.Cache == nil {
		return
	}
	iter := s.Cache.Scan(ctx, 0, slotCacheKey(dentistID, "*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		utils.GetLogger().Warn("Slot cache scan failed", zap.String("dentistID", dentistID), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.Cache.Del(ctx, keys...).Err(); err != nil {
		utils.GetLogger().Warn("Slot cache invalidation failed", zap.String("dentistID", dentistID), zap.Error(err))
	}
}
