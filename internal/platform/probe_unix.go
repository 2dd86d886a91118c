//go:build unix

package platform

import (
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/moby/sys/mountinfo"

	"github.com/bamsammich/fsindex/internal/record"
)

func (*local) Flavor() Flavor { return POSIX }

// HiddenAttr is always false on POSIX; hidden means a leading dot.
func (*local) HiddenAttr(string) (bool, error) { return false, nil }

func (*local) ReparseOther(string, fs.FileInfo) bool { return false }

func (*local) DeviceID(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	st, err := statT(path, info)
	if err != nil {
		return 0, err
	}
	return uint64(st.Dev), nil //nolint:unconvert,gosec // dev_t width differs per OS
}

// Owner resolves the user name of the owning uid, falling back to the
// numeric uid when the account database has no entry.
func (l *local) Owner(path string, info fs.FileInfo) (string, error) {
	st, err := statT(path, info)
	if err != nil {
		return "", err
	}
	uid := strconv.FormatUint(uint64(st.Uid), 10)
	return l.owners.lookup(uid, func() (string, error) {
		u, err := user.LookupId(uid)
		if err != nil {
			return uid, nil //nolint:nilerr // numeric uid is the generic owner name
		}
		return u.Username, nil
	})
}

func (*local) FileID(path string, info fs.FileInfo) (string, error) {
	st, err := statT(path, info)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(dev=%x,ino=%d)", uint64(st.Dev), uint64(st.Ino)), nil //nolint:unconvert,gosec // widths differ per OS
}

func (*local) Times(path string, info fs.FileInfo) Times {
	t := Times{Modified: record.Some(info.ModTime())}
	st, err := statT(path, info)
	if err != nil {
		return t
	}
	if at, ok := accessTime(st); ok {
		t.Accessed = record.Some(at)
	}
	if bt, ok := birthTime(path, st); ok {
		t.Created = record.Some(bt)
	}
	return t
}

// Store returns the mount source and filesystem type of the mount that
// contains path.
func (*local) Store(path string) (StoreInfo, error) {
	mounts, err := mountinfo.GetMounts(mountinfo.ParentsFilter(path))
	if err != nil {
		return StoreInfo{}, fmt.Errorf("read mount table: %w", err)
	}
	var best *mountinfo.Info
	for _, m := range mounts {
		if best == nil || len(m.Mountpoint) > len(best.Mountpoint) {
			best = m
		}
	}
	if best == nil {
		return StoreInfo{}, fmt.Errorf("no mount entry for %s", path)
	}
	name := best.Source
	if strings.TrimSpace(name) == "" {
		name = best.Mountpoint
	}
	return StoreInfo{Name: name, Type: best.FSType}, nil
}

func statT(path string, info fs.FileInfo) (*syscall.Stat_t, error) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("stat %s: %w", path, ErrUnsupported)
	}
	return st, nil
}

func timespec(sec, nsec int64) time.Time {
	return time.Unix(sec, nsec)
}
