//go:build darwin

package platform

import (
	"syscall"
	"time"
)

func accessTime(st *syscall.Stat_t) (time.Time, bool) {
	return timespec(st.Atimespec.Sec, st.Atimespec.Nsec), true
}

func birthTime(_ string, st *syscall.Stat_t) (time.Time, bool) {
	if st.Birthtimespec.Sec == 0 && st.Birthtimespec.Nsec == 0 {
		return time.Time{}, false
	}
	return timespec(st.Birthtimespec.Sec, st.Birthtimespec.Nsec), true
}
