package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicenter/booking-api/internal/model"
)

func TestRequiredDuration(t *testing.T) {
	assert.Equal(t, 60, model.PatientClassNew.RequiredDuration())
	assert.Equal(t, 30, model.PatientClassReturning.RequiredDuration())
}

func TestHasInsuranceOnFile(t *testing.T) {
	assert.False(t, (&model.Patient{}).HasInsuranceOnFile())
	assert.False(t, (&model.Patient{InsuranceCarrier: "  "}).HasInsuranceOnFile())
	assert.False(t, (&model.Patient{InsuranceCarrier: "TBD"}).HasInsuranceOnFile())
	assert.False(t, (&model.Patient{InsuranceCarrier: "tbd"}).HasInsuranceOnFile())
	assert.True(t, (&model.Patient{InsuranceCarrier: "Blue Cross"}).HasInsuranceOnFile())
}

func TestSlotStartsAt(t *testing.T) {
	s := &model.Slot{Date: "2030-01-07", StartTime: "09:30"}
	got, err := s.StartsAt()
	require.NoError(t, err)
	want := time.Date(2030, 1, 7, 9, 30, 0, 0, time.Local)
	assert.True(t, got.Equal(want))

	_, err = (&model.Slot{Date: "07/01/2030", StartTime: "09:30"}).StartsAt()
	assert.Error(t, err)
}
