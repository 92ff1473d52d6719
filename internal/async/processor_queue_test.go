package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/core"
)

type fakeProc struct {
	mu      sync.Mutex
	paths   []string
	forced  int
	active  int32
	maxSeen int32
	delay   time.Duration
	err     error
}

func (f *fakeProc) ProcessFile(ctx context.Context, path string, force bool) (*core.FileResult, error) {
	n := atomic.AddInt32(&f.active, 1)
	for {
		m := atomic.LoadInt32(&f.maxSeen)
		if n <= m || atomic.CompareAndSwapInt32(&f.maxSeen, m, n) {
			break
		}
	}
	time.Sleep(f.delay)
	atomic.AddInt32(&f.active, -1)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if force {
		f.forced++
	}
	if f.err != nil {
		return nil, f.err
	}
	return &core.FileResult{DocumentID: core.DocumentIDFromPath(path), Status: constants.DocumentStatusDone}, nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestProcessorQueue_ProcessesAllJobsBeforeShutdownReturns(t *testing.T) {
	p := &fakeProc{delay: 5 * time.Millisecond}
	q := NewProcessorQueue(p, quiet(), WithWorkers(3), WithQueueSize(2), WithProcessTimeout(time.Second))

	for _, path := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf", "f.pdf"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: path, Force: path == "a.pdf"}))
	}
	q.Shutdown(context.Background())

	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf", "f.pdf"}, p.paths)
	assert.Equal(t, 1, p.forced)
	assert.LessOrEqual(t, atomic.LoadInt32(&p.maxSeen), int32(3))
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProc{}, quiet(), WithWorkers(1))
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "late.pdf"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestProcessorQueue_FailuresDoNotStopWorkers(t *testing.T) {
	p := &fakeProc{err: errors.New("text-extraction-error")}
	q := NewProcessorQueue(p, quiet(), WithWorkers(1))

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "x.pdf"}))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "y.pdf"}))
	q.Shutdown(context.Background())

	assert.Equal(t, []string{"x.pdf", "y.pdf"}, p.paths)
}

func TestProcessorQueue_BackpressureHonoursContext(t *testing.T) {
	block := make(chan struct{})
	proc := &blockingProc{release: block, started: make(chan struct{})}
	q := NewProcessorQueue(proc, quiet(), WithWorkers(1), WithQueueSize(1))
	defer func() {
		close(block)
		q.Shutdown(context.Background())
	}()

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "1.pdf"}))
	<-proc.started
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "2.pdf"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{Path: "3.pdf"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type blockingProc struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingProc) ProcessFile(context.Context, string, bool) (*core.FileResult, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return &core.FileResult{}, nil
}
