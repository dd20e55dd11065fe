package domain

import "errors"

var (
	ErrInvalidTimeFormat   = errors.New("invalid date/time format")
	ErrPastOrImmediate     = errors.New("cannot schedule a meeting in the past or immediately")
	ErrNoParticipants      = errors.New("mention at least one user or include a topic")
	ErrNothingToConfirm    = errors.New("no active meetings to confirm")
	ErrAlreadyAcknowledged = errors.New("reminder already acknowledged")
	ErrInvalidReference    = errors.New("invalid meeting reference")
	ErrNoScheduleForUser   = errors.New("no schedule configured for user")
	ErrStoreCorrupt        = errors.New("store is corrupt")
)
