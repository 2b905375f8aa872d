package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrGuildNotFound   = errors.New("guild not found")
	ErrMemberNotFound  = errors.New("guild member not found")
	ErrFollowNotFound  = errors.New("follow not found")
	ErrFollowExists    = errors.New("follow already exists")
	ErrPremiumNotFound = errors.New("premium grant not found")
	ErrSettingNotFound = errors.New("setting not found")
)
