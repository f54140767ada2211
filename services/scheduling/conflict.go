package scheduling

import (
	"clinicops/models"
)

// Overlaps reports whether the half-open windows [s1, e1) and [s2, e2) intersect.
// Touching windows do not overlap.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && e1 > s2
}

// FindConflict returns the first blocking appointment of dentistID on date that overlaps
// [startTime, endTime). The appointment with ID excludeID is ignored, so an appointment can
// be checked against its own day. Cancelled and no-show appointments never conflict.
func FindConflict(
	existing []models.Appointment,
	dentistID, date, startTime, endTime, excludeID string,
) (models.Appointment, bool) {
	want, err := parseSpan(startTime, endTime)
	if err != nil {
		return models.Appointment{}, false
	}

	for _, a := range existing {
		if a.DentistID != dentistID || a.Date != date {
			continue
		}
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if !a.Status.Blocking() {
			continue
		}
		have, err := parseSpan(a.StartTime, a.EndTime)
		if err != nil {
			continue
		}
		if Overlaps(want.start, want.end, have.start, have.end) {
			return a, true
		}
	}
	return models.Appointment{}, false
}

// HasConflict reports whether any blocking appointment overlaps the candidate window.
func HasConflict(
	existing []models.Appointment,
	dentistID, date, startTime, endTime, excludeID string,
) bool {
	_, found := FindConflict(existing, dentistID, date, startTime, endTime, excludeID)
	return found
}

// FilterFree drops every slot start whose [start, start+slotDuration) window conflicts with
// an existing appointment.
func FilterFree(
	slots []string,
	policy models.SchedulingPolicy,
	existing []models.Appointment,
	dentistID, date string,
) []string {
	free := make([]string, 0, len(slots))
	for _, s := range slots {
		start, err := ParseClock(s)
		if err != nil {
			continue
		}
		end := FormatClock(start + policy.SlotDurationMinutes)
		if !HasConflict(existing, dentistID, date, s, end, "") {
			free = append(free, s)
		}
	}
	return free
}
