//go:build unix && !linux && !darwin

package platform

import (
	"syscall"
	"time"
)

// Stat_t time fields are named differently across the BSDs; only the
// portable modification time is reported there.
func accessTime(*syscall.Stat_t) (time.Time, bool) { return time.Time{}, false }

func birthTime(string, *syscall.Stat_t) (time.Time, bool) { return time.Time{}, false }
