package env

import (
	"os"
	"strconv"
)

func Debug() bool {
	return os.Getenv("DEBUG") != ""
}

// DeadZone returns the pointer travel, in local units, required before a press on a
// handle turns into a gesture. Overridden with DRAGBLOCK_DEAD_ZONE.
func DeadZone() (float64, bool) {
	if s := os.Getenv("DRAGBLOCK_DEAD_ZONE"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && f >= 0 {
			return f, true
		}
	}
	return 0, false
}
