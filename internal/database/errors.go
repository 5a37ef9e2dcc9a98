package database

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUniversityNotFound   = errors.New("university not found")
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
