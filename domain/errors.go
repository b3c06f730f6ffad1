package domain

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrUpstream            = errors.New("payment gateway error")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrProductUnavailable  = errors.New("product not available")
)
