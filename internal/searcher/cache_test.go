package searcher

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/ids"
)

func newTestReader(segIDs ...ids.SegmentID) *IndexReader {
	return &IndexReader{SegmentIDs: segIDs}
}

func TestAcquireReusesSameGenerationWithoutReloading(t *testing.T) {
	c := NewCache()
	loads := int32(0)
	load := func(context.Context) (*IndexReader, error) {
		atomic.AddInt32(&loads, 1)
		return newTestReader(1, 2), nil
	}

	h1, err := c.Acquire(context.Background(), 1, []ids.SegmentID{1, 2}, load)
	require.NoError(t, err)
	h1.Release()

	h2, err := c.Acquire(context.Background(), 1, []ids.SegmentID{1, 2}, load)
	require.NoError(t, err)
	h2.Release()

	require.EqualValues(t, 1, atomic.LoadInt32(&loads))
}

func TestAcquireReloadsOnGenerationChange(t *testing.T) {
	c := NewCache()
	gen := []ids.SegmentID{1, 2}
	load := func(context.Context) (*IndexReader, error) {
		return newTestReader(gen...), nil
	}

	h1, err := c.Acquire(context.Background(), 1, gen, load)
	require.NoError(t, err)

	gen = []ids.SegmentID{1, 2, 3}
	h2, err := c.Acquire(context.Background(), 1, gen, load)
	require.NoError(t, err)
	require.NotSame(t, h1.Reader, h2.Reader)

	// The superseded reader is marked stale but stays alive while h1
	// still holds it.
	require.EqualValues(t, 1, atomic.LoadInt32(&h1.Reader.stale))
	require.EqualValues(t, 1, atomic.LoadInt32(&h1.Reader.refCount))
	h1.Release()
	h2.Release()
}

func TestAcquireBlockedReturnsNotFound(t *testing.T) {
	c := NewCache()
	load := func(context.Context) (*IndexReader, error) { return newTestReader(1), nil }

	h, err := c.Acquire(context.Background(), 5, []ids.SegmentID{1}, load)
	require.NoError(t, err)
	h.Release()

	require.NoError(t, c.Delete(context.Background(), 5))

	_, err = c.Acquire(context.Background(), 5, []ids.SegmentID{1}, load)
	require.Error(t, err)
}

func TestDeleteWaitsForStrongReferencesToDrain(t *testing.T) {
	c := NewCache()
	c.DeletePoll = time.Millisecond
	load := func(context.Context) (*IndexReader, error) { return newTestReader(1), nil }

	h, err := c.Acquire(context.Background(), 9, []ids.SegmentID{1}, load)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	deleteDone := make(chan struct{})
	go func() {
		defer wg.Done()
		_ = c.Delete(context.Background(), 9)
		close(deleteDone)
	}()

	select {
	case <-deleteDone:
		t.Fatal("Delete returned before the held handle was released")
	case <-time.After(20 * time.Millisecond):
	}

	h.Release()
	wg.Wait()
}

func TestConcurrentAcquiresLoadExactlyOnce(t *testing.T) {
	c := NewCache()
	loads := int32(0)
	load := func(context.Context) (*IndexReader, error) {
		atomic.AddInt32(&loads, 1)
		time.Sleep(5 * time.Millisecond)
		return newTestReader(1), nil
	}

	var wg sync.WaitGroup
	handles := make([]*Handle, 10)
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := c.Acquire(context.Background(), 3, []ids.SegmentID{1}, load)
			require.NoError(t, err)
			handles[i] = h
		}()
	}
	wg.Wait()
	for _, h := range handles {
		h.Release()
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&loads))
}
