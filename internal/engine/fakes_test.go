package engine_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/fsindex/internal/platform"
	"github.com/bamsammich/fsindex/internal/record"
)

var errBoom = errors.New("boom")

// fakeProbe wraps the native probe and overrides the answers a test needs.
type fakeProbe struct {
	platform.Probe

	flavor   platform.Flavor
	hidden   map[string]bool
	reparse  map[string]bool
	devices  map[string]uint64
	realPath map[string]string
	lstatErr map[string]error
	statErr  map[string]error
	listErr  map[string]error
	noOwner  bool
	store    platform.StoreInfo
	storeErr error
}

func newFakeProbe() *fakeProbe {
	return &fakeProbe{
		Probe:    platform.Native(),
		flavor:   platform.POSIX,
		hidden:   map[string]bool{},
		reparse:  map[string]bool{},
		devices:  map[string]uint64{},
		realPath: map[string]string{},
		lstatErr: map[string]error{},
		statErr:  map[string]error{},
		listErr:  map[string]error{},
		store:    platform.StoreInfo{Name: "/dev/fake0", Type: "fakefs"},
	}
}

func (p *fakeProbe) Flavor() platform.Flavor { return p.flavor }

func (p *fakeProbe) HiddenAttr(path string) (bool, error) { return p.hidden[path], nil }

func (p *fakeProbe) ReparseOther(path string, _ fs.FileInfo) bool { return p.reparse[path] }

// DeviceID reports 1 unless a path or one of its ancestors is overridden.
func (p *fakeProbe) DeviceID(path string) (uint64, error) {
	for cur := path; ; cur = filepath.Dir(cur) {
		if dev, ok := p.devices[cur]; ok {
			return dev, nil
		}
		if filepath.Dir(cur) == cur {
			return 1, nil
		}
	}
}

func (p *fakeProbe) Lstat(path string) (fs.FileInfo, error) {
	if err := p.lstatErr[path]; err != nil {
		return nil, err
	}
	return p.Probe.Lstat(path)
}

func (p *fakeProbe) Stat(path string) (fs.FileInfo, error) {
	if err := p.statErr[path]; err != nil {
		return nil, err
	}
	return p.Probe.Stat(path)
}

func (p *fakeProbe) ReadDir(path string) ([]fs.DirEntry, error) {
	if err := p.listErr[path]; err != nil {
		return nil, err
	}
	return p.Probe.ReadDir(path)
}

func (p *fakeProbe) RealPath(path string) (string, error) {
	if resolved, ok := p.realPath[path]; ok {
		return resolved, nil
	}
	return path, nil
}

func (p *fakeProbe) Owner(path string, info fs.FileInfo) (string, error) {
	if p.noOwner {
		return "", errBoom
	}
	return p.Probe.Owner(path, info)
}

func (p *fakeProbe) Store(string) (platform.StoreInfo, error) {
	if p.storeErr != nil {
		return platform.StoreInfo{}, p.storeErr
	}
	return p.store, nil
}

// memSink keeps records in memory. onAdd, when set, runs after each
// successful Add.
type memSink struct {
	mu        sync.Mutex
	recs      []record.FileRecord
	commits   int
	failAfter int // Add fails once this many records are held; 0 disables
	onAdd     func(n int)
}

func (s *memSink) Add(rec record.FileRecord) error {
	s.mu.Lock()
	if s.failAfter > 0 && len(s.recs) >= s.failAfter {
		s.mu.Unlock()
		return errBoom
	}
	s.recs = append(s.recs, rec)
	n := len(s.recs)
	s.mu.Unlock()
	if s.onAdd != nil {
		s.onAdd(n)
	}
	return nil
}

func (s *memSink) Commit(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
	return nil
}

func (s *memSink) records() []record.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]record.FileRecord(nil), s.recs...)
}

type memLog struct {
	mu          sync.Mutex
	lines       []string
	closes      int
	interrupted bool
}

func (l *memLog) LogError(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, msg)
}

func (l *memLog) Close(interrupted bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closes++
	l.interrupted = interrupted
	return nil
}

func (l *memLog) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

type stubReporter struct {
	mu      sync.Mutex
	ran     bool
	stopped bool
}

func (r *stubReporter) Run(ctx context.Context, stop <-chan struct{}) {
	r.mu.Lock()
	r.ran = true
	r.mu.Unlock()
	select {
	case <-stop:
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
	case <-ctx.Done():
	}
}

// mkTree creates files (content = name) and directories (trailing slash)
// under root.
func mkTree(t *testing.T, root string, entries ...string) {
	t.Helper()
	for _, e := range entries {
		p := filepath.Join(root, filepath.FromSlash(e))
		if e[len(e)-1] == '/' {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(filepath.Base(p)), 0o644))
	}
}

// rels maps records to slash-separated paths relative to root; the root
// itself is ".".
func rels(t *testing.T, root string, recs []record.FileRecord) []string {
	t.Helper()
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		rel, err := filepath.Rel(root, r.FullPath)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func byRel(t *testing.T, root string, recs []record.FileRecord) map[string]record.FileRecord {
	t.Helper()
	out := make(map[string]record.FileRecord, len(recs))
	for i, rel := range rels(t, root, recs) {
		out[rel] = recs[i]
	}
	return out
}

func symlinkOrSkip(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}
