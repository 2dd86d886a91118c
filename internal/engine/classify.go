package engine

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bamsammich/fsindex/internal/platform"
	"github.com/bamsammich/fsindex/internal/record"
)

// Classification is what the walker needs to know about a node before
// deciding whether to record it and whether to descend.
type Classification struct {
	IsDir    bool // follows links
	Hidden   bool
	LinkType record.LinkType
}

// Classifier decides hidden status and link type using the platform probe.
type Classifier struct {
	probe platform.Probe
}

// NewClassifier returns a classifier backed by p.
func NewClassifier(p platform.Probe) *Classifier {
	return &Classifier{probe: p}
}

// Classify inspects path without following it. The only error is a failed
// lstat; every other attribute degrades to its negative answer.
//
// The scan root is compared against its parent like any other directory,
// so a root that is itself a mount point is recorded and not descended.
func (c *Classifier) Classify(path string) (Classification, error) {
	lstat, err := c.probe.Lstat(path)
	if err != nil {
		return Classification{}, err
	}

	isLink := lstat.Mode()&fs.ModeSymlink != 0
	cl := Classification{
		IsDir:  lstat.IsDir(),
		Hidden: c.hidden(path),
	}
	if isLink {
		// A dangling link is a file node; its size read fails later.
		if target, err := c.probe.Stat(path); err == nil {
			cl.IsDir = target.IsDir()
		}
	}

	switch {
	case isLink:
		cl.LinkType = record.Symlink
	case cl.IsDir && c.boundary(path, lstat, isLink):
		if c.probe.Flavor() == platform.Windows {
			cl.LinkType = record.Junction
		} else {
			cl.LinkType = record.MountPoint
		}
	default:
		cl.LinkType = record.None
	}
	return cl, nil
}

// DotHidden reports whether the leaf name of path starts with a dot. It
// needs no filesystem access.
func DotHidden(path string) bool {
	name, _, ok := record.SplitPath(path)
	return ok && strings.HasPrefix(name, ".")
}

func (c *Classifier) hidden(path string) bool {
	if DotHidden(path) {
		return true
	}
	attr, err := c.probe.HiddenAttr(path)
	return err == nil && attr
}

// boundary reports a junction (Windows) or a device change against the
// parent directory (POSIX).
func (c *Classifier) boundary(path string, lstat fs.FileInfo, isLink bool) bool {
	if c.probe.Flavor() == platform.Windows {
		return isLink || c.probe.ReparseOther(path, lstat)
	}
	parent := filepath.Dir(path)
	if parent == path {
		return false
	}
	dev, err := c.probe.DeviceID(path)
	if err != nil {
		return false
	}
	parentDev, err := c.probe.DeviceID(parent)
	if err != nil {
		return false
	}
	return dev != parentDev
}
