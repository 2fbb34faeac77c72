package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the account kind. It is fixed at signup.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

var Roles = []Role{RolePatient, RoleDoctor}

// ParseRole accepts the canonical lowercase values and tolerates case and surrounding whitespace drift.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if r.Matches(s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%q is not a valid choice", s)
}

// Matches compares case-insensitively after trimming.
func (r Role) Matches(other string) bool {
	return strings.EqualFold(strings.TrimSpace(string(r)), strings.TrimSpace(other))
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Title is the display form used in dashboard messages ("Patient").
func (r Role) Title() string {
	s := strings.ToLower(strings.TrimSpace(string(r)))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (r Role) DashboardPath() string {
	return "/api/" + strings.ToLower(strings.TrimSpace(string(r))) + "/dashboard/"
}

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Role           Role      `json:"user_type"`
	IsActive       bool      `json:"is_active"`
	ProfilePicture *string   `json:"profile_picture,omitempty"` // relative to the media root
	Address        *Address  `json:"address,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FullName joins first and last name without stray whitespace.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type Address struct {
	ID        string    `json:"-"`
	UserID    string    `json:"-"`
	Line1     string    `json:"line1"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
