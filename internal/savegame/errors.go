package savegame

import "errors"

var (
	ErrStorageUnavailable = errors.New("save storage unavailable")
	ErrSnapshot           = errors.New("scene snapshot failed")
)
