package appointmentRepo

import (
	"testing"

	"clinicops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, buildFilter(models.AppointmentFilter{}))
	assert.Equal(t,
		bson.M{"dentistId": "DEN0001", "date": "2025-06-02", "status": models.StatusConfirmed},
		buildFilter(models.AppointmentFilter{DentistID: "DEN0001", Date: "2025-06-02", Status: models.StatusConfirmed}),
	)
	assert.Equal(t, bson.M{"patientId": "PAT000001"}, buildFilter(models.AppointmentFilter{PatientID: "PAT000001"}))
}

func TestActiveSlotIndexStandsAlone(t *testing.T) {
	idx := activeSlotIndex()
	require.NotNil(t, idx.Options)
	require.NotNil(t, idx.Options.Name)
	assert.Equal(t, "uniq_active_slot", *idx.Options.Name)
	require.NotNil(t, idx.Options.Unique)
	assert.True(t, *idx.Options.Unique)
	assert.Equal(t,
		bson.M{"status": bson.M{"$in": bson.A{models.StatusScheduled, models.StatusConfirmed, models.StatusCompleted}}},
		idx.Options.PartialFilterExpression)

	for _, m := range lookupIndexes() {
		if m.Options != nil && m.Options.Name != nil {
			assert.NotEqual(t, "uniq_active_slot", *m.Options.Name)
		}
		if m.Options != nil {
			assert.Nil(t, m.Options.PartialFilterExpression, "lookup indexes must not depend on partial filters")
		}
	}
}
