package shutdown

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTripWaitsForCompletion(t *testing.T) {
	var out lockedBuffer
	var exits atomic.Int32
	c := New(&out, WithGrace(5*time.Second), WithExit(func(int) { exits.Add(1) }))
	ctx := c.Arm(context.Background())
	defer c.Disarm()

	done := make(chan struct{})
	c.Track(done)
	go func() {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		close(done)
	}()

	c.Trip()

	require.Error(t, ctx.Err())
	assert.True(t, c.Tripped())
	assert.Equal(t, int32(0), exits.Load())
	assert.Contains(t, out.String(), "=== INTERRUPTED BY USER (Ctrl-C) ===")
	assert.Contains(t, out.String(), "Stopping filesystem scan gracefully...")
	assert.NotContains(t, out.String(), "Timeout waiting")
}

func TestTripTimeoutExits(t *testing.T) {
	var out lockedBuffer
	var code atomic.Int32
	c := New(&out, WithGrace(20*time.Millisecond), WithExit(func(n int) { code.Store(int32(n)) }))
	c.Arm(context.Background())
	defer c.Disarm()

	c.Track(make(chan struct{}))
	c.Trip()

	assert.Equal(t, int32(ExitInterrupted), code.Load())
	assert.Contains(t, out.String(), "Timeout waiting for graceful shutdown, partial results may be incomplete.")
}

func TestTripIdempotent(t *testing.T) {
	var out lockedBuffer
	var exits atomic.Int32
	c := New(&out, WithGrace(time.Second), WithExit(func(int) { exits.Add(1) }))
	c.Arm(context.Background())
	defer c.Disarm()

	done := make(chan struct{})
	close(done)
	c.Track(done)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Trip()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, strings.Count(out.String(), "=== INTERRUPTED BY USER (Ctrl-C) ==="))
	assert.Equal(t, int32(0), exits.Load())
}

func TestDisarmReleasesPendingTrip(t *testing.T) {
	var out lockedBuffer
	var exits atomic.Int32
	c := New(&out, WithGrace(5*time.Second), WithExit(func(int) { exits.Add(1) }))
	c.Arm(context.Background())

	returned := make(chan struct{})
	go func() {
		defer close(returned)
		c.Trip()
	}()

	require.Eventually(t, c.Tripped, time.Second, time.Millisecond)
	c.Disarm()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("trip still waiting after disarm")
	}
	assert.Equal(t, int32(0), exits.Load())
}

func TestDisarmWithoutTrip(t *testing.T) {
	c := New(&bytes.Buffer{})
	ctx := c.Arm(context.Background())
	c.Disarm()
	c.Disarm()

	assert.False(t, c.Tripped())
	assert.Error(t, ctx.Err())
}

func TestWithGraceIgnoresNonPositive(t *testing.T) {
	c := New(&bytes.Buffer{}, WithGrace(0))
	assert.Equal(t, DefaultGrace, c.grace)
}
