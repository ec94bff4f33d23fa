package util

import "errors"

var (
	ErrPeriodNotFound  = errors.New("selected period not found")
	ErrFeedUnavailable = errors.New("grade feed unavailable")
	ErrFeedRejected    = errors.New("grade feed rejected the session")
	ErrAccountMissing  = errors.New("no school account bound to this user")
	ErrInvalidWeek     = errors.New("invalid week number")
	ErrInvalidUser     = errors.New("invalid user id")
)
