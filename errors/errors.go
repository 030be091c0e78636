package errors

import "fmt"

var (
	ErrUnknownConnection   = fmt.Errorf("unknown connection")
	ErrDuplicateConnection = fmt.Errorf("connection already registered")
	ErrInvalidUsername     = fmt.Errorf("invalid username")
	ErrAlreadyNamed        = fmt.Errorf("connection already has a username")
	ErrAnonymousConnection = fmt.Errorf("connection has no username yet")
	ErrUnknownSender       = fmt.Errorf("unknown sender")
	ErrEmptyBody           = fmt.Errorf("empty message body")
	ErrInvalidPayload      = fmt.Errorf("invalid event payload")
	ErrEmptyWords          = fmt.Errorf("no words have been found")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
)
