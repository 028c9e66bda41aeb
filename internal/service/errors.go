package service

import "errors"

var (
	ErrShuttingDown = errors.New("service is shutting down")
	ErrInvalidEvent = errors.New("invalid audit event")
)
