package model

import "time"

// UserProjection is the read-only view of a user returned by signup, login, dashboards and listings.
type UserProjection struct {
	ID             string             `json:"id"`
	Username       string             `json:"username"`
	Email          string             `json:"email"`
	FirstName      string             `json:"first_name"`
	LastName       string             `json:"last_name"`
	FullName       string             `json:"full_name"`
	ProfilePicture *string            `json:"profile_picture"`
	UserType       Role               `json:"user_type"`
	Address        *AddressProjection `json:"address"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type AddressProjection struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// NewUserProjection builds the view of u. mediaURL turns a stored picture path into a public URL and may be nil.
func NewUserProjection(u *User, mediaURL func(string) string) *UserProjection {
	p := &UserProjection{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		UserType:  u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.ProfilePicture != nil && *u.ProfilePicture != "" {
		pic := *u.ProfilePicture
		if mediaURL != nil {
			pic = mediaURL(pic)
		}
		p.ProfilePicture = &pic
	}
	if u.Address != nil {
		p.Address = &AddressProjection{
			Line1:   u.Address.Line1,
			City:    u.Address.City,
			State:   u.Address.State,
			Pincode: u.Address.Pincode,
		}
	}
	return p
}
