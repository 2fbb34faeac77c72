package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("patient")
	require.NoError(t, err)
	require.Equal(t, RolePatient, r)

	r, err = ParseRole(" Doctor ")
	require.NoError(t, err)
	require.Equal(t, RoleDoctor, r)

	_, err = ParseRole("nurse")
	require.EqualError(t, err, `"nurse" is not a valid choice`)
}

func TestRoleHelpers(t *testing.T) {
	require.True(t, Role("PATIENT").Matches("patient"))
	require.False(t, RolePatient.Matches("doctor"))
	require.Equal(t, "Doctor", RoleDoctor.Title())
	require.Equal(t, "/api/patient/dashboard/", RolePatient.DashboardPath())
	require.False(t, Role("admin").Valid())
}

func TestFullNameTrims(t *testing.T) {
	require.Equal(t, "Jane", (&User{FirstName: "Jane"}).FullName())
	require.Equal(t, "Doe", (&User{LastName: "Doe"}).FullName())
	require.Equal(t, "Jane Doe", (&User{FirstName: "Jane", LastName: "Doe"}).FullName())
}

func TestNewRoleProfileSelectsVariant(t *testing.T) {
	now := time.Now().UTC()

	p, err := NewRoleProfile(RolePatient, "u1", now)
	require.NoError(t, err)
	require.IsType(t, &PatientProfile{}, p)
	require.Equal(t, "u1", p.Base().UserID)
	require.NotEmpty(t, p.Base().ID)

	d, err := NewRoleProfile(Role("Doctor"), "u2", now)
	require.NoError(t, err)
	require.IsType(t, &DoctorProfile{}, d)
	require.Equal(t, RoleDoctor, d.Role())

	_, err = NewRoleProfile(Role("admin"), "u3", now)
	require.Error(t, err)
}

func TestNewUserProjection(t *testing.T) {
	pic := "profile_pictures/jane-1a2b3c4d.png"
	u := &User{
		ID:             "id-1",
		Username:       "jane",
		FirstName:      "Jane",
		HashedPassword: "secret-hash",
		Role:           RolePatient,
		ProfilePicture: &pic,
		Address:        &Address{Line1: "1 Main St", City: "Pune", State: "MH", Pincode: "411001"},
	}

	p := NewUserProjection(u, func(rel string) string { return "/media/" + rel })
	require.Equal(t, "Jane", p.FullName)
	require.Equal(t, "/media/profile_pictures/jane-1a2b3c4d.png", *p.ProfilePicture)
	require.Equal(t, "411001", p.Address.Pincode)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-hash")
	require.Contains(t, string(raw), `"user_type":"patient"`)

	bare := NewUserProjection(&User{Username: "x"}, nil)
	require.Nil(t, bare.ProfilePicture)
	raw, err = json.Marshal(bare)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"profile_picture":null`)
}

func TestUserOrderingValid(t *testing.T) {
	require.True(t, OrderUsernameDesc.Valid())
	require.True(t, DefaultUserOrdering.Valid())
	require.False(t, UserOrdering("email").Valid())
}
