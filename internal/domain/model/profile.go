package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RoleProfile is the role-specific record owned by a user. Exactly one variant exists per user.
type RoleProfile interface {
	Role() Role
	Base() *ProfileBase
	isRoleProfile()
}

type ProfileBase struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PatientProfile struct {
	ProfileBase
}

func (*PatientProfile) Role() Role           { return RolePatient }
func (p *PatientProfile) Base() *ProfileBase { return &p.ProfileBase }
func (*PatientProfile) isRoleProfile()       {}

type DoctorProfile struct {
	ProfileBase
}

func (*DoctorProfile) Role() Role           { return RoleDoctor }
func (d *DoctorProfile) Base() *ProfileBase { return &d.ProfileBase }
func (*DoctorProfile) isRoleProfile()       {}

// NewRoleProfile picks the profile variant from the role tag.
func NewRoleProfile(role Role, userID string, now time.Time) (RoleProfile, error) {
	base := ProfileBase{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	switch {
	case role.Matches(string(RolePatient)):
		return &PatientProfile{ProfileBase: base}, nil
	case role.Matches(string(RoleDoctor)):
		return &DoctorProfile{ProfileBase: base}, nil
	default:
		return nil, fmt.Errorf("no profile for role %q", role)
	}
}
