package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPatientAge(t *testing.T) {
	p := Patient{DateOfBirth: "1990-06-15"}

	assert.Equal(t, 34, p.Age(time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)), "day before birthday")
	assert.Equal(t, 35, p.Age(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 35, p.Age(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, Patient{DateOfBirth: "15/06/1990"}.Age(time.Now()))
}

func TestAddressFull(t *testing.T) {
	tests := []struct {
		addr Address
		want string
	}{
		{Address{Street: "12 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"}, "12 Main St, Springfield, IL 62701, US"},
		{Address{City: "Springfield", ZipCode: "62701"}, "Springfield, 62701"},
		{Address{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.addr.Full())
	}
}

func TestStatusBlockingAndColor(t *testing.T) {
	blocking := map[AppointmentStatus]bool{
		StatusScheduled: true,
		StatusConfirmed: true,
		StatusCompleted: true,
		StatusCancelled: false,
		StatusNoShow:    false,
	}
	colors := map[string]bool{}
	for status, want := range blocking {
		assert.Equal(t, want, status.Blocking(), status)
		colors[status.Color()] = true
	}
	assert.Len(t, colors, len(blocking), "each status has its own colour")
}

func TestAppointmentUpdateTouchesSchedule(t *testing.T) {
	notes := "x"
	date := "2025-06-02"
	assert.False(t, AppointmentUpdate{Notes: &notes}.TouchesSchedule())
	assert.True(t, AppointmentUpdate{Date: &date}.TouchesSchedule())
}

func TestDentistTimeOffByID(t *testing.T) {
	d := Dentist{TimeOff: []AbsenceInterval{{ID: "a"}, {ID: "b"}}}
	assert.Equal(t, 1, d.TimeOffByID("b"))
	assert.Equal(t, -1, d.TimeOffByID("c"))
	assert.Equal(t, "Dr. Jane Doe", Dentist{FirstName: "Jane", LastName: "Doe"}.FullName())
}
