package world

import "errors"

var ErrUnknownScene = errors.New("unknown scene")
