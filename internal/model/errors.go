package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user already exists")
	ErrWrongPassword = errors.New("wrong password")

	// Cache errors
	ErrCacheNotFound = errors.New("cache not found")

	// Find record errors
	ErrFindNotFound = errors.New("find record not found")
	ErrFindExists   = errors.New("find record already exists")

	// State machine errors
	ErrOutOfOrder = errors.New("operation out of order")
)
