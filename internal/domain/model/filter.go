package model

import "time"

type UserOrdering string

const (
	OrderCreatedAtAsc  UserOrdering = "created_at"
	OrderCreatedAtDesc UserOrdering = "-created_at"
	OrderUsernameAsc   UserOrdering = "username"
	OrderUsernameDesc  UserOrdering = "-username"

	DefaultUserOrdering = OrderCreatedAtDesc
)

func (o UserOrdering) Valid() bool {
	switch o {
	case OrderCreatedAtAsc, OrderCreatedAtDesc, OrderUsernameAsc, OrderUsernameDesc:
		return true
	}
	return false
}

// UserFilter narrows a user listing. Nil pointers and empty strings mean "no constraint".
// CreatedBefore is exclusive; callers pass the start of the following day for an inclusive date.
type UserFilter struct {
	Role          *Role
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Search        string
	Ordering      UserOrdering
	Limit         int
	Offset        int
}
