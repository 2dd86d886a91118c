// Package event describes the diagnostics raised while walking a tree.
package event

import (
	"fmt"
	"path/filepath"
	"time"
)

// Type identifies the kind of diagnostic.
type Type int

const (
	// SymlinkDir is a directory symlink that was recorded but not followed.
	SymlinkDir Type = iota + 1
	// BoundaryDir is a mount point or junction that was recorded but not entered.
	BoundaryDir
	// SymlinkFile is a file symlink; the node is still recorded.
	SymlinkFile
	// AccessDenied is a node that could not be visited or listed.
	AccessDenied
	// DirRestricted is a directory whose attributes could not be read.
	DirRestricted
	// FileRestricted is a file whose attributes could not be read.
	FileRestricted
)

var typeNames = [...]string{
	SymlinkDir:     "SymlinkDir",
	BoundaryDir:    "BoundaryDir",
	SymlinkFile:    "SymlinkFile",
	AccessDenied:   "AccessDenied",
	DirRestricted:  "DirRestricted",
	FileRestricted: "FileRestricted",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Skip reports whether the diagnostic marks a node that was not recorded.
func (t Type) Skip() bool {
	switch t {
	case AccessDenied, DirRestricted, FileRestricted:
		return true
	default:
		return false
	}
}

// Event is a single diagnostic from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // absolute path
	Err       error
}

// New stamps a diagnostic with the current time.
func New(t Type, path string, err error) Event {
	return Event{Type: t, Timestamp: time.Now(), Path: path, Err: err}
}

// Message renders the access log line for the event. Link diagnostics name
// the full path; failures name the leaf and the cause.
func (e Event) Message() string {
	switch e.Type {
	case SymlinkDir:
		return "Skipping symbolic link: " + e.Path
	case BoundaryDir:
		return "Skipping mount point/junction: " + e.Path
	case SymlinkFile:
		return "Skipping symbolic link file: " + e.Path
	case AccessDenied:
		return fmt.Sprintf("Access denied to: %s - %v", leaf(e.Path), e.Err)
	case DirRestricted:
		return fmt.Sprintf("Skipping directory due to access restrictions: %s - %v", leaf(e.Path), e.Err)
	case FileRestricted:
		return fmt.Sprintf("Skipping file due to access restrictions: %s - %v", leaf(e.Path), e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Path)
	}
}

func leaf(path string) string {
	base := filepath.Base(path)
	if base == string(filepath.Separator) || base == "." {
		return path
	}
	return base
}
