package components

import "errors"

var ErrUnnamedEntity = errors.New("persisted entity has no name")
