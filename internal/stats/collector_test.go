package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	const goroutines = 100
	const opsPerGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range opsPerGoroutine {
				c.AddNode(true, 0)
				c.AddNode(false, 256)
				c.AddSkipped(1)
				c.AddErrors(1)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	expected := int64(goroutines * opsPerGoroutine)
	assert.Equal(t, 2*expected, s.Nodes)
	assert.Equal(t, expected, s.Dirs)
	assert.Equal(t, expected, s.Files())
	assert.Equal(t, expected, s.Skipped)
	assert.Equal(t, expected, s.Errors)
	assert.Equal(t, expected*256, s.Bytes)
}

func TestDirectorySizeNotCounted(t *testing.T) {
	c := NewCollector()
	c.AddNode(true, 4096)
	assert.Equal(t, int64(0), c.Snapshot().Bytes)
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{
		Nodes:   10,
		Dirs:    3,
		Skipped: 2,
		Errors:  1,
		Bytes:   4096,
	}
	expected := "nodes=10 dirs=3 files=7 skipped=2 errors=1 bytes=4096"
	assert.Equal(t, expected, s.String())
}

func TestRate(t *testing.T) {
	s := Snapshot{Nodes: 500}
	assert.InDelta(t, 250.0, s.Rate(2*time.Second), 0.001)
	assert.Equal(t, 0.0, s.Rate(0))
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, FormatBytes(tt.input))
		})
	}
}

func TestNewCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.startTime.IsZero())
	assert.InDelta(t, 0, c.Elapsed().Seconds(), 1)
}

func TestSnapshotIncludesElapsed(t *testing.T) {
	c := NewCollector()
	time.Sleep(10 * time.Millisecond)
	s := c.Snapshot()
	assert.Greater(t, s.Elapsed, time.Duration(0))
}
