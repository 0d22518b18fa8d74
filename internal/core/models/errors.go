package models

import "errors"

var (
	ErrUnknownLayer     = errors.New("unknown layer")
	ErrUnknownComponent = errors.New("unknown component kind")
)
