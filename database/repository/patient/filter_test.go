package patientRepo

import (
	"testing"

	"clinicops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFilter(t *testing.T) {
	active := true
	filter := buildFilter(models.PatientFilter{Name: "o'br.en", Active: &active})

	assert.Equal(t, true, filter["active"])
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	rx := or[0].(bson.M)["firstName"].(primitive.Regex)
	assert.Equal(t, `o'br\.en`, rx.Pattern)
	assert.Equal(t, "i", rx.Options)

	assert.Empty(t, buildFilter(models.PatientFilter{}))
}
