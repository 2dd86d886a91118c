package record

import (
	"path/filepath"
	"strings"
	"time"
)

// LinkType classifies how a node relates to other parts of the filesystem.
type LinkType int

const (
	None LinkType = iota
	Symlink
	MountPoint
	Junction
)

var linkTypeNames = [...]string{
	None:       "NONE",
	Symlink:    "SYMLINK",
	MountPoint: "MOUNTPOINT",
	Junction:   "JUNCTION",
}

func (t LinkType) String() string {
	if t >= 0 && int(t) < len(linkTypeNames) {
		return linkTypeNames[t]
	}
	return "UNKNOWN"
}

// IsBoundary reports whether the walk must not descend through a directory
// of this link type.
func (t LinkType) IsBoundary() bool {
	return t != None
}

// Storage-boundary sentinels for best-effort fields.
const (
	UnknownOwner          = "Unknown"
	UnknownTarget         = "Unknown target"
	UnknownJunctionTarget = "Unknown junction target"
	UnknownMountPoint     = "Unknown mount point"
)

// FileRecord is the normalized metadata for one filesystem node. It is a
// value type; once built it is never mutated.
type FileRecord struct {
	Name             string
	ParentPath       string
	FullPath         string
	Owner            Opt[string]
	Extension        string
	FileID           Opt[string]
	LinkTarget       Opt[string]
	CreationTime     Opt[time.Time]
	LastAccessTime   Opt[time.Time]
	LastModifiedTime Opt[time.Time]
	Size             int64
	Depth            int
	LinkType         LinkType
	IsDirectory      bool
	IsHidden         bool
}

// StoredOwner returns the owner as persisted: "Unknown" when absent.
func (r FileRecord) StoredOwner() string {
	return r.Owner.Or(UnknownOwner)
}

// StoredFileID returns the file id as persisted: empty when absent.
func (r FileRecord) StoredFileID() string {
	return r.FileID.Or("")
}

// StoredLinkTarget returns the link target as persisted. It is empty exactly
// when LinkType is None; unresolved targets of real links get a sentinel.
func (r FileRecord) StoredLinkTarget() string {
	switch r.LinkType {
	case None:
		return ""
	case Junction:
		return nonEmpty(r.LinkTarget, UnknownJunctionTarget)
	case MountPoint:
		return nonEmpty(r.LinkTarget, UnknownMountPoint)
	default:
		return nonEmpty(r.LinkTarget, UnknownTarget)
	}
}

func nonEmpty(o Opt[string], fallback string) string {
	if v, ok := o.Get(); ok && v != "" {
		return v
	}
	return fallback
}

// Extension returns the substring after the last dot of name. Directories,
// names without an interior dot, dotfiles like ".bashrc" and names ending in
// a dot have no extension.
func Extension(name string, isDir bool) string {
	if isDir {
		return ""
	}
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i+1:]
}

// SplitPath returns the leaf name and parent directory of an absolute path.
// Paths without a leaf component ("/", `C:\`) yield the full path as name,
// an empty parent and ok=false.
func SplitPath(abs string) (name, parent string, ok bool) {
	vol := filepath.VolumeName(abs)
	rest := strings.TrimRight(abs[len(vol):], string(filepath.Separator)+"/")
	if rest == "" {
		return abs, "", false
	}
	clean := vol + rest
	return filepath.Base(clean), filepath.Dir(clean), true
}
