// Package platform reads raw node attributes from the host filesystem.
//
// Everything OS-specific lives behind Probe so the classification and
// extraction logic in the engine can run against a fake in tests.
package platform

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bamsammich/fsindex/internal/record"
)

// Flavor selects which link rules apply on the host.
type Flavor int

const (
	// POSIX detects mount points by device id changes.
	POSIX Flavor = iota
	// Windows detects junctions through reparse points.
	Windows
)

func (f Flavor) String() string {
	if f == Windows {
		return "windows"
	}
	return "posix"
}

// ErrUnsupported is returned when the host cannot supply an attribute.
var ErrUnsupported = errors.New("attribute not supported on this platform")

// Times holds the three node timestamps; any of them may be absent.
type Times struct {
	Created  record.Opt[time.Time]
	Accessed record.Opt[time.Time]
	Modified record.Opt[time.Time]
}

// StoreInfo describes the filesystem store backing a path.
type StoreInfo struct {
	Name string
	Type string
}

func (s StoreInfo) String() string {
	return s.Name + " (" + s.Type + ")"
}

// Probe is the platform attribute capability used by the engine.
//
// Lstat does not follow links; Stat and the attribute readers that take an
// fs.FileInfo expect the link-following info unless stated otherwise.
type Probe interface {
	Flavor() Flavor
	Lstat(path string) (fs.FileInfo, error)
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	Readlink(path string) (string, error)
	RealPath(path string) (string, error)

	// HiddenAttr reports the platform hidden/system attribute. Dotfile
	// naming is handled by the caller.
	HiddenAttr(path string) (bool, error)
	// ReparseOther reports a non-symlink reparse point. lstat is the
	// non-following info for path.
	ReparseOther(path string, lstat fs.FileInfo) bool
	DeviceID(path string) (uint64, error)
	Owner(path string, info fs.FileInfo) (string, error)
	FileID(path string, info fs.FileInfo) (string, error)
	Times(path string, info fs.FileInfo) Times
	Store(path string) (StoreInfo, error)
}

// local is the host implementation; OS-specific methods live in the
// build-tagged probe_*.go files.
type local struct {
	owners ownerCache
}

// Native returns the probe for the running OS.
//
//nolint:ireturn // factory returns interface by design
func Native() Probe {
	return &local{}
}

func (*local) Lstat(path string) (fs.FileInfo, error)     { return os.Lstat(path) }
func (*local) Stat(path string) (fs.FileInfo, error)      { return os.Stat(path) }
func (*local) ReadDir(path string) ([]fs.DirEntry, error) { return os.ReadDir(path) }
func (*local) Readlink(path string) (string, error)       { return os.Readlink(path) }

func (*local) RealPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}
