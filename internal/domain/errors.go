package domain

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInsufficientFee   = errors.New("insufficient fee")
	ErrNotOperational    = errors.New("not operational")
	ErrNotFound          = errors.New("not found")
	ErrInvalidStatus     = errors.New("invalid status code")
)
