//go:build linux

package platform

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

func accessTime(st *syscall.Stat_t) (time.Time, bool) {
	return timespec(int64(st.Atim.Sec), int64(st.Atim.Nsec)), true //nolint:unconvert // 32-bit arches
}

// birthTime asks statx(2) for the creation time; older kernels and some
// filesystems do not report it.
func birthTime(path string, _ *syscall.Stat_t) (time.Time, bool) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}, false
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, false
	}
	return timespec(stx.Btime.Sec, int64(stx.Btime.Nsec)), true
}
