// Package scheduling holds the pure scheduling core: slot generation, availability,
// conflict detection and the appointment lifecycle. Nothing here performs I/O or logs.
package scheduling

import (
	"time"

	"clinicops/models"
)

// matchingRule returns the first active rule for the weekday, in list order.
func matchingRule(rules []models.WeeklyHoursRule, weekday time.Weekday) (models.WeeklyHoursRule, bool) {
	for _, r := range rules {
		if r.Active && r.DayOfWeek == int(weekday) {
			return r, true
		}
	}
	return models.WeeklyHoursRule{}, false
}

// onApprovedAbsence reports whether date falls inside any approved absence.
func onApprovedAbsence(absences []models.AbsenceInterval, date time.Time) bool {
	for _, a := range absences {
		if a.Approved && dateWithin(date, a.StartDate, a.EndDate) {
			return true
		}
	}
	return false
}

// ComputeOpenSlots lists the bookable start times ("HH:MM") for date. Slots are spaced by
// SlotDurationMinutes + BufferMinutes from the rule's opening time and each slot ends at or
// before closing. Existing bookings are not considered; see FilterFree.
func ComputeOpenSlots(
	rules []models.WeeklyHoursRule,
	absences []models.AbsenceInterval,
	policy models.SchedulingPolicy,
	date time.Time,
) []string {
	slots := []string{}

	rule, ok := matchingRule(rules, date.Weekday())
	if !ok {
		return slots
	}
	if onApprovedAbsence(absences, date) {
		return slots
	}

	hours, err := parseSpan(rule.StartTime, rule.EndTime)
	if err != nil {
		return slots
	}
	if policy.SlotDurationMinutes <= 0 || policy.BufferMinutes < 0 {
		return slots
	}

	step := policy.SlotDurationMinutes + policy.BufferMinutes
	for start := hours.start; start+policy.SlotDurationMinutes <= hours.end; start += step {
		slots = append(slots, FormatClock(start))
	}
	return slots
}

// unavailableReason explains why [startTime, endTime) on date is not within working
// hours. An empty string means the dentist is available.
func unavailableReason(
	rules []models.WeeklyHoursRule,
	absences []models.AbsenceInterval,
	date time.Time,
	startTime, endTime string,
) string {
	rule, ok := matchingRule(rules, date.Weekday())
	if !ok {
		return "dentist does not work on " + date.Weekday().String()
	}
	if onApprovedAbsence(absences, date) {
		return "dentist is on approved time off on " + date.Format(models.DateLayout)
	}
	hours, err := parseSpan(rule.StartTime, rule.EndTime)
	if err != nil {
		return "dentist working hours are misconfigured"
	}
	want, err := parseSpan(startTime, endTime)
	if err != nil {
		return err.Error()
	}
	if want.start < hours.start || want.end > hours.end {
		return "requested time is outside working hours " + rule.StartTime + "-" + rule.EndTime
	}
	return ""
}

// IsAvailableAt reports whether the dentist works during [startTime, endTime) on date: an
// active rule exists for the weekday, the window lies within the rule's hours, and no
// approved absence covers the date.
func IsAvailableAt(
	rules []models.WeeklyHoursRule,
	absences []models.AbsenceInterval,
	date time.Time,
	startTime, endTime string,
) bool {
	return unavailableReason(rules, absences, date, startTime, endTime) == ""
}
