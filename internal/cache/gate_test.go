package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	ids   []string
	err   error
	calls int
}

func (f *fakeSource) ListCompleted(context.Context) ([]string, error) {
	f.calls++
	return f.ids, f.err
}

type fakeRecorder struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (f *fakeRecorder) Record(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return f.err
}

func TestGate_LoadOncePerSession(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{ids: []string{"CADRI-001", "CADRI-002"}}
	g := NewGate()

	require.NoError(t, g.Load(ctx, src))
	require.NoError(t, g.Load(ctx, src))

	assert.Equal(t, 1, src.calls)
	assert.True(t, g.Seen("CADRI-001"))
	assert.True(t, g.Seen("CADRI-002"))
	assert.False(t, g.Seen("CADRI-003"))
	assert.Equal(t, 2, g.Len())
}

func TestGate_LoadErrorAllowsRetry(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{err: errors.New("db down")}
	g := NewGate()

	err := g.Load(ctx, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	src.err = nil
	src.ids = []string{"X"}
	require.NoError(t, g.Load(ctx, src))
	assert.True(t, g.Seen("X"))
	assert.Equal(t, 2, src.calls)
}

func TestGate_MarkWritesThrough(t *testing.T) {
	rec := &fakeRecorder{}
	g := NewGate(WithRecorder(rec))

	require.NoError(t, g.Mark(context.Background(), "CADRI-9"))
	assert.True(t, g.Seen("CADRI-9"))
	assert.Equal(t, []string{"CADRI-9"}, rec.ids)
}

func TestGate_MarkRecorderFailureStillMarks(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("redis gone")}
	g := NewGate(WithRecorder(rec))

	err := g.Mark(context.Background(), "CADRI-9")
	require.Error(t, err)
	assert.True(t, g.Seen("CADRI-9"))
}

func TestGate_ConcurrentMark(t *testing.T) {
	g := NewGate()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = g.Mark(context.Background(), fmt.Sprintf("doc-%d", i%10))
			_ = g.Seen("doc-0")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, g.Len())
}

func TestSources_Merge(t *testing.T) {
	s := Sources{&fakeSource{ids: []string{"a"}}, &fakeSource{ids: []string{"b", "c"}}}
	ids, err := s.ListCompleted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	s = append(s, &fakeSource{err: errors.New("boom")})
	_, err = s.ListCompleted(context.Background())
	assert.Error(t, err)
}
