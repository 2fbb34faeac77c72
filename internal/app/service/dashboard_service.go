package service

import (
	"context"
	"fmt"

	"medportal/internal/common"
	"medportal/internal/domain/model"
)

type DashboardService struct {
	media MediaStore
}

func NewDashboardService(media MediaStore) *DashboardService {
	return &DashboardService{media: media}
}

// View returns the caller's projection when their role matches required. Role comparison ignores case.
func (s *DashboardService) View(ctx context.Context, user *model.User, required model.Role) (*model.UserProjection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &common.NotAuthenticatedError{Detail: msgNotAuthenticated}
	}
	if !required.Matches(string(user.Role)) {
		return nil, &common.AuthorizationError{
			Message:     fmt.Sprintf("Access denied. %s access required.", required.Title()),
			CurrentRole: string(user.Role),
			Username:    user.Username,
		}
	}
	return model.NewUserProjection(user, mediaURL(s.media)), nil
}
