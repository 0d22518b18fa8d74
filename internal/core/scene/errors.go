package scene

import "errors"

var (
	ErrInvalidSceneID = errors.New("invalid scene id")
	ErrClosed         = errors.New("scene manager closed")
)
