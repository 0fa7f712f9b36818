package repository

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrFranchiseNotFound = errors.New("franchise not found")
	ErrStoreNotFound     = errors.New("store not found")
	ErrMalformedToken    = errors.New("malformed token")
)
