package engine

import (
	"fmt"
	"path/filepath"

	"github.com/bamsammich/fsindex/internal/platform"
	"github.com/bamsammich/fsindex/internal/record"
)

// Extractor builds records from a classified node. Only the link-following
// stat is mandatory; every other attribute is best effort.
type Extractor struct {
	probe platform.Probe
}

// NewExtractor returns an extractor backed by p.
func NewExtractor(p platform.Probe) *Extractor {
	return &Extractor{probe: p}
}

// Extract reads the attributes of path. An error means the node could not
// be stat'ed and must not be recorded.
func (e *Extractor) Extract(path string, depth int, c Classification) (record.FileRecord, error) {
	info, err := e.probe.Stat(path)
	if err != nil {
		return record.FileRecord{}, fmt.Errorf("stat: %w", err)
	}

	name, parent, _ := record.SplitPath(path)
	rec := record.FileRecord{
		Name:        name,
		ParentPath:  parent,
		FullPath:    path,
		Extension:   record.Extension(name, c.IsDir),
		IsDirectory: c.IsDir,
		IsHidden:    c.Hidden,
		Depth:       depth,
		LinkType:    c.LinkType,
	}
	if !c.IsDir {
		rec.Size = info.Size()
	}

	if owner, err := e.probe.Owner(path, info); err == nil {
		rec.Owner = record.Some(owner)
	}
	if id, err := e.probe.FileID(path, info); err == nil {
		rec.FileID = record.Some(id)
	}

	t := e.probe.Times(path, info)
	rec.CreationTime = t.Created
	rec.LastAccessTime = t.Accessed
	rec.LastModifiedTime = t.Modified

	rec.LinkTarget = e.linkTarget(path, c.LinkType)
	return rec, nil
}

func (e *Extractor) linkTarget(path string, lt record.LinkType) record.Opt[string] {
	switch lt {
	case record.Symlink:
		if target, err := e.probe.Readlink(path); err == nil {
			return record.Some(target)
		}
	case record.Junction:
		if resolved, err := e.probe.RealPath(path); err == nil && filepath.Clean(resolved) != filepath.Clean(path) {
			return record.Some(resolved)
		}
		return e.store(path)
	case record.MountPoint:
		return e.store(path)
	case record.None:
	}
	return record.Absent[string]()
}

func (e *Extractor) store(path string) record.Opt[string] {
	s, err := e.probe.Store(path)
	if err != nil {
		return record.Absent[string]()
	}
	return record.Some(s.String())
}
