package repository

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrDuplicate    = errors.New("record already exists")
	ErrEmailExists  = errors.New("email already exists")
)
