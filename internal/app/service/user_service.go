package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"medportal/internal/common"
	"medportal/internal/domain/model"
	"medportal/internal/domain/repository"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	dateLayout = "2006-01-02"
)

type UserService struct {
	users repository.UserRepository
	media MediaStore
}

func NewUserService(users repository.UserRepository, media MediaStore) *UserService {
	return &UserService{users: users, media: media}
}

// ListUsersRequest carries raw query parameters; List parses and validates them.
type ListUsersRequest struct {
	UserType      string
	IsActive      string
	CreatedAfter  string
	CreatedBefore string
	Search        string
	Ordering      string
	Page          string
	PageSize      string
}

type UserPage struct {
	Count    int                     `json:"count"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
	Results  []*model.UserProjection `json:"results"`
}

func (s *UserService) List(ctx context.Context, req ListUsersRequest) (*UserPage, error) {
	filter, page, pageSize, err := parseListRequest(req)
	if err != nil {
		return nil, err
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	results := make([]*model.UserProjection, 0, len(users))
	for i := range users {
		results = append(results, model.NewUserProjection(&users[i], mediaURL(s.media)))
	}
	return &UserPage{Count: total, Page: page, PageSize: pageSize, Results: results}, nil
}

func parseListRequest(req ListUsersRequest) (model.UserFilter, int, int, error) {
	verr := common.NewValidationError()
	filter := model.UserFilter{Search: strings.TrimSpace(req.Search)}

	if v := strings.TrimSpace(req.UserType); v != "" {
		role, err := model.ParseRole(v)
		if err != nil {
			verr.Add("user_type", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", v))
		} else {
			filter.Role = &role
		}
	}

	if v := strings.TrimSpace(req.IsActive); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			verr.Add("is_active", "Enter a valid boolean.")
		} else {
			filter.IsActive = &active
		}
	}

	if v := strings.TrimSpace(req.CreatedAfter); v != "" {
		day, err := time.Parse(dateLayout, v)
		if err != nil {
			verr.Add("created_after", "Enter a valid date.")
		} else {
			filter.CreatedAfter = &day
		}
	}

	if v := strings.TrimSpace(req.CreatedBefore); v != "" {
		day, err := time.Parse(dateLayout, v)
		if err != nil {
			verr.Add("created_before", "Enter a valid date.")
		} else {
			end := day.AddDate(0, 0, 1)
			filter.CreatedBefore = &end
		}
	}

	// Unknown orderings fall back to the default.
	filter.Ordering = model.UserOrdering(strings.TrimSpace(req.Ordering))
	if !filter.Ordering.Valid() {
		filter.Ordering = model.DefaultUserOrdering
	}

	pageSize := DefaultPageSize
	if n, err := strconv.Atoi(strings.TrimSpace(req.PageSize)); err == nil && n > 0 {
		pageSize = min(n, MaxPageSize)
	}

	// The offset must fit in an int; larger pages are rejected rather than wrapped negative.
	page := 1
	if v := strings.TrimSpace(req.Page); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n-1 > math.MaxInt/pageSize {
			verr.Add("page", "A valid positive integer is required.")
		} else {
			page = n
		}
	}

	if err := verr.OrNil(); err != nil {
		return model.UserFilter{}, 0, 0, err
	}

	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize
	return filter, page, pageSize, nil
}
