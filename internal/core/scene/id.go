package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseID splits "id[:level]". A missing level is level 0.
func ParseID(s string) (id string, level int, err error) {
	id, rest, found := strings.Cut(s, ":")
	if !found || rest == "" {
		return id, 0, nil
	}
	level, err = strconv.Atoi(rest)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidSceneID, s)
	}
	return id, level, nil
}

// FormatID is the inverse of ParseID.
func FormatID(id string, level int) string {
	if level == 0 {
		return id
	}
	return id + ":" + strconv.Itoa(level)
}
