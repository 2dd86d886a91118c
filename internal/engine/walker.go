package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/bamsammich/fsindex/internal/event"
	"github.com/bamsammich/fsindex/internal/filter"
	"github.com/bamsammich/fsindex/internal/platform"
	"github.com/bamsammich/fsindex/internal/record"
	"github.com/bamsammich/fsindex/internal/stats"
)

// Action tells the caller how to proceed after visiting a node.
type Action int

const (
	// Continue with the next sibling.
	Continue Action = iota
	// SkipSubtree means the node's descendants were not visited; siblings
	// are still walked.
	SkipSubtree
	// Terminate stops the whole walk.
	Terminate
)

var actionNames = [...]string{
	Continue:    "continue",
	SkipSubtree: "skip-subtree",
	Terminate:   "terminate",
}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// walker is a single-threaded pre-order traversal. Depth travels as an
// argument; the only shared state is the stats collector.
type walker struct {
	root       string
	maxDepth   int
	skipHidden bool
	filter     *filter.Chain

	probe      platform.Probe
	classifier *Classifier
	extractor  *Extractor

	sink  RecordSink
	diags ErrorSink
	stats *stats.Collector

	err error // first sink failure
}

func (w *walker) run(ctx context.Context) Action {
	return w.visit(ctx, w.root, 0)
}

func (w *walker) visit(ctx context.Context, path string, depth int) Action {
	if ctx.Err() != nil {
		return Terminate
	}

	// Nothing is recorded at or below the boundary depth, including the
	// boundary directory itself.
	if depth >= w.maxDepth {
		w.stats.AddSkipped(1)
		return SkipSubtree
	}

	// Dot names are skipped before lstat so an unreadable hidden node
	// produces no diagnostic.
	if w.skipHidden && DotHidden(path) {
		w.skip(path, depth, "hidden")
		return SkipSubtree
	}

	c, err := w.classifier.Classify(path)
	if err != nil {
		w.report(event.AccessDenied, path, err)
		return Continue
	}

	if w.skipHidden && c.Hidden {
		w.skip(path, depth, "hidden")
		return SkipSubtree
	}
	if depth > 0 && w.excluded(path, c.IsDir) {
		w.skip(path, depth, "excluded")
		return SkipSubtree
	}

	if c.IsDir {
		return w.visitDir(ctx, path, depth, c)
	}
	return w.visitFile(path, depth, c)
}

func (w *walker) visitDir(ctx context.Context, path string, depth int, c Classification) Action {
	rec, err := w.extractor.Extract(path, depth, c)
	if err != nil {
		w.report(event.DirRestricted, path, err)
		return SkipSubtree
	}

	if c.LinkType.IsBoundary() {
		if c.LinkType == record.Symlink {
			w.report(event.SymlinkDir, path, nil)
		} else {
			w.report(event.BoundaryDir, path, nil)
		}
		if !w.emit(rec) {
			return Terminate
		}
		return SkipSubtree
	}

	entries, err := w.probe.ReadDir(path)
	if err != nil {
		w.report(event.AccessDenied, path, err)
		return Continue
	}
	if !w.emit(rec) {
		return Terminate
	}

	for _, entry := range entries {
		if w.visit(ctx, filepath.Join(path, entry.Name()), depth+1) == Terminate {
			return Terminate
		}
	}
	return Continue
}

func (w *walker) visitFile(path string, depth int, c Classification) Action {
	rec, err := w.extractor.Extract(path, depth, c)
	if err != nil {
		w.report(event.FileRestricted, path, err)
		return Continue
	}
	if c.LinkType == record.Symlink {
		w.report(event.SymlinkFile, path, nil)
	}
	if !w.emit(rec) {
		return Terminate
	}
	return Continue
}

func (w *walker) emit(rec record.FileRecord) bool {
	if err := w.sink.Add(rec); err != nil {
		w.err = fmt.Errorf("add record %s: %w", rec.FullPath, err)
		return false
	}
	w.stats.AddNode(rec.IsDirectory, rec.Size)
	return true
}

func (w *walker) report(t event.Type, path string, err error) {
	ev := event.New(t, path, err)
	w.diags.LogError(ev.Message())
	w.stats.AddErrors(1)
	slog.Debug("diagnostic", "type", t.String(), "path", path, "recorded", !t.Skip(), "error", err)
}

func (w *walker) skip(path string, depth int, reason string) {
	w.stats.AddSkipped(1)
	slog.Debug("skipped", "path", path, "depth", depth, "reason", reason)
}

func (w *walker) excluded(path string, isDir bool) bool {
	if w.filter == nil || w.filter.Empty() {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return !w.filter.Match(filepath.ToSlash(rel), isDir)
}
