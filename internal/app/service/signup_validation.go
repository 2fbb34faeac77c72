package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"medportal/internal/common"
	"medportal/internal/common/security"
	"medportal/internal/domain/model"
	"medportal/internal/platform/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	msgRequired         = "This field is required."
	msgPasswordMismatch = "Password fields didn't match."
	msgEmailTaken       = "A user with this email already exists."
	msgUsernameTaken    = "A user with this username already exists."
	msgInvalidEmail     = "Enter a valid email address."
	msgInvalidUsername  = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgInvalidPincode   = "Pincode must be 5-10 digits"
	msgInvalidImage     = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgImageTooLarge    = "The submitted file is too large. Maximum size is 5 MB."
)

var (
	required        = validation.Required.Error(msgRequired)
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	pincodePattern  = regexp.MustCompile(`^[0-9]{5,10}$`)
)

func maxLength(n int) validation.Rule {
	return validation.RuneLength(0, n).Error(fmt.Sprintf("Ensure this field has no more than %d characters.", n))
}

// normalize trims the text fields the way form input is cleaned. Passwords are left untouched.
func (r *SignupRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.UserType = strings.TrimSpace(r.UserType)
	if r.Address != nil {
		r.Address.Line1 = strings.TrimSpace(r.Address.Line1)
		r.Address.City = strings.TrimSpace(r.Address.City)
		r.Address.State = strings.TrimSpace(r.Address.State)
		r.Address.Pincode = strings.TrimSpace(r.Address.Pincode)
	}
}

// validateSignup runs every signup check in a fixed order before anything is written and
// returns all violations at once. On success it returns the parsed role.
func (s *AuthService) validateSignup(ctx context.Context, req *SignupRequest) (model.Role, error) {
	verr := common.NewValidationError()

	if req.Password != "" {
		for _, msg := range s.policy.Check(req.Password, security.PasswordUserAttributes{
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		}) {
			verr.Add("password", msg)
		}
	}

	if req.Password != "" && req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		verr.Add("password", msgPasswordMismatch)
	}

	if req.Email != "" {
		taken, err := s.users.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return "", fmt.Errorf("checking email uniqueness: %w", err)
		}
		if taken {
			verr.Add("email", msgEmailTaken)
		}
	}

	if req.Username != "" {
		taken, err := s.users.ExistsByUsername(ctx, req.Username)
		if err != nil {
			return "", fmt.Errorf("checking username uniqueness: %w", err)
		}
		if taken {
			verr.Add("username", msgUsernameTaken)
		}
	}

	verr.Check("first_name", req.FirstName, required, maxLength(150))
	verr.Check("last_name", req.LastName, required, maxLength(150))
	verr.Check("email", req.Email, required, maxLength(254), is.EmailFormat.Error(msgInvalidEmail))
	verr.Check("username", req.Username, required, maxLength(150), validation.Match(usernamePattern).Error(msgInvalidUsername))
	verr.Check("password", req.Password, required)
	verr.Check("confirm_password", req.ConfirmPassword, required)

	var role model.Role
	if verr.Check("user_type", req.UserType, required) {
		parsed, err := model.ParseRole(req.UserType)
		if err != nil {
			verr.Add("user_type", fmt.Sprintf("%q is not a valid choice.", req.UserType))
		}
		role = parsed
	}

	if req.Address == nil {
		verr.Add("address", msgRequired)
	} else {
		verr.Check("address.line1", req.Address.Line1, required, maxLength(255))
		verr.Check("address.city", req.Address.City, required, maxLength(100))
		verr.Check("address.state", req.Address.State, required, maxLength(100))
		verr.Check("address.pincode", req.Address.Pincode, required, validation.Match(pincodePattern).Error(msgInvalidPincode))
	}

	if pic := req.ProfilePicture; pic != nil {
		if len(pic.Data) > storage.MaxImageBytes {
			verr.Add("profile_picture", msgImageTooLarge)
		} else if _, err := storage.ImageExtension(pic.Data); err != nil {
			verr.Add("profile_picture", msgInvalidImage)
		}
	}

	return role, verr.OrNil()
}
