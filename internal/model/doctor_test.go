package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestToDoctorViewModel(t *testing.T) {
	tests := []struct {
		name string
		in   Account
		want string
	}{
		{"doctor with specialty", Account{ID: "d1", Name: "Dr. A", Role: RoleDoctor, Specialty: strPtr("Cardiology")}, "Cardiology"},
		{"doctor without specialty", Account{ID: "d2", Name: "Dr. B", Role: RoleDoctor}, UnspecifiedSpecialty},
		{"patient with specialty field", Account{ID: "p1", Name: "P", Role: RolePatient, Specialty: strPtr("Cardiology")}, UnspecifiedSpecialty},
		{"admin", Account{ID: "a1", Name: "Admin", Role: RoleAdmin}, UnspecifiedSpecialty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ToDoctorViewModel(tt.in)
			assert.Equal(t, tt.want, d.Specialty)
			assert.Equal(t, tt.in.ID, d.ID)
			assert.Equal(t, tt.in.Name, d.Name)
		})
	}
}

func TestToDoctorViewModelKeepsImage(t *testing.T) {
	d := ToDoctorViewModel(Account{ID: "d1", Name: "Dr. A", Role: RoleDoctor, Image: "https://img/1.png"})
	assert.Equal(t, "https://img/1.png", d.Image)
}

func TestToDoctorViewModelsPreservesOrder(t *testing.T) {
	in := []Account{
		{ID: "3", Name: "C", Role: RoleDoctor},
		{ID: "1", Name: "A", Role: RoleDoctor, Specialty: strPtr("Neuro")},
		{ID: "2", Name: "B", Role: RolePatient},
	}
	out := ToDoctorViewModels(in)
	if assert.Len(t, out, 3) {
		assert.Equal(t, "3", out[0].ID)
		assert.Equal(t, "1", out[1].ID)
		assert.Equal(t, "Neuro", out[1].Specialty)
		assert.Equal(t, "2", out[2].ID)
	}
	assert.Empty(t, ToDoctorViewModels(nil))
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusCancelled.IsValid())
	assert.False(t, Status("done").IsValid())
}
