package service

import (
	"errors"
	"fmt"

	"warkop-pos/internal/repository"
	"warkop-pos/pkg/validator"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = repository.ErrNotFound
	ErrInsufficientStock = repository.ErrInsufficientStock
	ErrInvalidTransition = errors.New("invalid order transition")

	ErrRateLimited     = errors.New("too many code requests, try again later")
	ErrOTPInvalid      = errors.New("invalid code")
	ErrOTPExpired      = errors.New("code expired")
	ErrSessionNotFound = errors.New("login session not found")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
	ErrUsernameExists     = errors.New("username already exists")
)

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, validator.Message(errs))
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
