package forms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/wizard"
)

var testCatalog = CheckInCatalog{
	Services: []models.Service{
		{ID: "1", Name: "Suite", Type: models.ServiceHotel, Price: 500},
		{ID: "2", Name: "Estándar", Type: models.ServiceHotel, Price: 350},
		{ID: "3", Name: "Guardería", Type: models.ServiceDaycare, Price: 200},
	},
	Dogs: []models.Dog{
		{ID: "7", Name: "Kukulkán", Breed: "xoloitzcuintli"},
		{ID: "8", Name: "Luna", Breed: "beagle"},
	},
	AddOns: models.DefaultAddOns,
}

type fakeReservations struct {
	got models.ReservationInput
	err error
}

func (f *fakeReservations) CreateReservation(_ context.Context, in models.ReservationInput) (*models.Reservation, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Reservation{ID: "99", DogID: models.ID("7"), Status: models.ReservationPending}, nil
}

type setting struct {
	field string
	value any
}

func stay(from, to int) wizard.DateRange {
	return wizard.DateRange{
		From: time.Date(2025, time.March, from, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, time.March, to, 0, 0, 0, 0, time.UTC),
	}
}

func TestCheckInHotelTotal(t *testing.T) {
	c := NewCheckIn(testCatalog)
	require.NoError(t, c.SetField(FieldServiceType, "HOTEL"))
	require.NoError(t, c.SetField(FieldSelectedServiceID, "1"))
	require.NoError(t, c.Toggle(FieldAdditionalServices, "swimming"))

	assert.Equal(t, 525.0, c.View().Derived[DerivedTotal])
}

func TestCheckInStepOneRules(t *testing.T) {
	tests := []struct {
		name       string
		values     []setting
		wantValid  bool
		wantErrors map[string]string
	}{
		{
			name:       "nothing selected",
			wantErrors: map[string]string{FieldServiceType: "Por favor selecciona un tipo de servicio"},
		},
		{
			name:   "hotel needs a service and dates",
			values: []setting{{FieldServiceType, "HOTEL"}},
			wantErrors: map[string]string{
				FieldSelectedServiceID: "Por favor selecciona un servicio",
				FieldStayDates:         "Selecciona las fechas de entrada y salida",
			},
		},
		{
			name:      "hotel complete",
			values:    []setting{{FieldServiceType, "HOTEL"}, {FieldSelectedServiceID, "2"}, {FieldStayDates, stay(1, 4)}},
			wantValid: true,
		},
		{
			name:       "service from another category",
			values:     []setting{{FieldServiceType, "HOTEL"}, {FieldSelectedServiceID, "3"}, {FieldStayDates, stay(1, 4)}},
			wantErrors: map[string]string{FieldSelectedServiceID: "Por favor selecciona un servicio"},
		},
		{
			name:       "category not offered",
			values:     []setting{{FieldServiceType, "GROOMING"}},
			wantErrors: map[string]string{FieldServiceType: "Por favor selecciona un tipo de servicio"},
		},
		{
			name:      "single daycare service needs no selection",
			values:    []setting{{FieldServiceType, "DAYCARE"}},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCheckIn(testCatalog)
			for _, kv := range tt.values {
				require.NoError(t, c.SetField(kv.field, kv.value))
			}
			assert.Equal(t, tt.wantValid, c.ValidateStep(0))
			assert.Equal(t, tt.wantValid, c.Advance())
			if !tt.wantValid {
				assert.Equal(t, tt.wantErrors, c.View().Errors)
			}
		})
	}
}

func TestCheckInAutoSelectsOnlyService(t *testing.T) {
	c := NewCheckIn(testCatalog)
	require.NoError(t, c.SetField(FieldServiceType, "DAYCARE"))
	assert.Equal(t, 200.0, c.View().Derived[DerivedTotal])

	require.True(t, c.Advance())
	v := c.View()
	assert.Equal(t, "3", v.Values[FieldSelectedServiceID])
	assert.Equal(t, "Confirmar Reservación", v.StepName)
}

func TestCheckInSubmit(t *testing.T) {
	c := NewCheckIn(testCatalog)
	require.NoError(t, c.SetField(FieldServiceType, "HOTEL"))
	require.NoError(t, c.SetField(FieldSelectedServiceID, "1"))
	require.NoError(t, c.SetField(FieldStayDates, stay(2, 5)))
	require.NoError(t, c.Toggle(FieldAdditionalServices, "swimming"))
	require.True(t, c.Advance())

	require.NoError(t, c.SetField(FieldDogID, "42"))
	_, err := c.Submit(context.Background(), SubmitCheckIn(&fakeReservations{}, testCatalog, "5"))
	require.ErrorIs(t, err, wizard.ErrInvalid)
	assert.Equal(t, "Por favor selecciona un perro", c.View().Error(FieldDogID))

	require.NoError(t, c.SetField(FieldDogID, "7"))
	api := &fakeReservations{}
	res, err := c.Submit(context.Background(), SubmitCheckIn(api, testCatalog, "5"))
	require.NoError(t, err)
	assert.Equal(t, models.ID("99"), res.(*models.Reservation).ID)

	checkOut := "2025-03-05"
	assert.Equal(t, models.ReservationInput{
		DogID:     7,
		ServiceID: 1,
		CompanyID: 5,
		CheckIn:   "2025-03-02",
		CheckOut:  &checkOut,
		AddOns:    []string{"swimming"},
		Total:     525,
	}, api.got)
	assert.Equal(t, 0, c.View().Step)
}

func TestCheckInSubmitFailureKeepsForm(t *testing.T) {
	c := NewCheckIn(testCatalog)
	require.NoError(t, c.SetField(FieldServiceType, "DAYCARE"))
	require.True(t, c.Advance())
	require.NoError(t, c.SetField(FieldDogID, "8"))

	boom := errors.New("backend down")
	_, err := c.Submit(context.Background(), SubmitCheckIn(&fakeReservations{err: boom}, testCatalog, "5"))
	require.ErrorIs(t, err, boom)

	v := c.View()
	assert.Equal(t, 1, v.Step)
	assert.Equal(t, "8", v.Values[FieldDogID])
}

func TestCheckInReservationNeedsService(t *testing.T) {
	c := NewCheckIn(testCatalog)
	c.Read(func(s wizard.State) {
		_, err := CheckInReservation(s, testCatalog, "5")
		assert.ErrorIs(t, err, ErrNoService)
	})
}
