package bus

import "errors"

var (
	ErrHandlerPanic = errors.New("event handler panicked")
	ErrPayloadType  = errors.New("unexpected event payload type")
)
