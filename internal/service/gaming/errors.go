package gaming

import "errors"

var (
	ErrConfirmationNotFound    = errors.New("confirmation not found")
	ErrConfirmationSettled     = errors.New("confirmation already settled")
	ErrConfirmationNotApproved = errors.New("confirmation not approved")
	ErrConfirmationAmount      = errors.New("bet exceeds the confirmed amount")
	ErrConfirmationExpired     = errors.New("confirmation expired")
)
