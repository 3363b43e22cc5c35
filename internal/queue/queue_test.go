package queue

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/touchpanel/internal/types"
)

func touchAt(kind types.EventKind, i int) types.Event {
	return types.NewTouch(kind, int32(i), int32(i*2), 0, 0, uint32(i))
}

func TestNewInvalid(t *testing.T) {
	t.Parallel()

	for _, c := range []int{0, -1} {
		q, err := New(c)
		assert.Nil(t, q)
		assert.True(t, errors.IsNotValid(err), "capacity=%d err=%v", c, err)
	}
}

func TestCapacity(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 3, 4, 32} {
		q := MustNew(n)
		for i := 0; i < n; i++ {
			require.True(t, q.TrySend(touchAt(types.EventTouchMove, i)), "n=%d i=%d", n, i)
		}
		assert.Equal(t, n, q.Count())
		assert.False(t, q.TrySend(touchAt(types.EventTouchMove, n)), "n=%d overflow", n)

		var e types.Event
		require.True(t, q.TryReceive(&e))
		assert.Equal(t, int32(0), e.Touch.X)
		assert.True(t, q.TrySend(touchAt(types.EventTouchMove, n+1)))
		assert.Equal(t, uint64(1), q.Stat().Dropped)
	}
}

func TestDropNewestScenario(t *testing.T) {
	t.Parallel()

	q := MustNew(4)
	sent := []types.Event{
		types.NewTouch(types.EventTouchDown, 10, 100, 300, 3000, 1),
		types.NewTouch(types.EventTouchMove, 40, 100, 600, 3000, 2),
		types.NewTouch(types.EventTouchMove, 90, 100, 1100, 3000, 3),
		types.NewTouch(types.EventTouchUp, 90, 100, 1100, 3000, 4),
	}
	for _, e := range sent {
		require.True(t, q.TrySend(e))
	}
	swipe := types.NewSwipe(types.DirectionRight, 10, 100, 90, 100, 3)
	assert.False(t, q.TrySend(swipe))

	got := make([]types.Event, 0, 4)
	var e types.Event
	for q.TryReceive(&e) {
		got = append(got, e)
	}
	assert.Equal(t, sent, got)
	assert.Equal(t, 0, q.Count())
	assert.False(t, q.TryReceive(&e))

	st := q.Stat()
	assert.Equal(t, uint64(4), st.Sent)
	assert.Equal(t, uint64(4), st.Received)
	assert.Equal(t, uint64(1), st.Dropped)
	assert.GreaterOrEqual(t, int64(st.SinceLastDrop), int64(0))
	assert.Less(t, int64(st.SinceLastDrop), int64(time.Minute))
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	q := MustNew(2)
	var e types.Event
	assert.False(t, q.TryReceive(&e))
	assert.Equal(t, types.EventInvalid, e.Kind)
	st := q.Stat()
	assert.Equal(t, time.Duration(0), st.SinceLastDrop)
}

func TestSingleSlot(t *testing.T) {
	t.Parallel()

	q := MustNew(1)
	assert.Equal(t, 1, q.Cap())
	var e types.Event
	for i := 0; i < 10; i++ {
		require.True(t, q.TrySend(touchAt(types.EventTouchDown, i)), "i=%d", i)
		assert.False(t, q.TrySend(touchAt(types.EventTouchUp, i+100)), "i=%d second send must drop", i)
		assert.Equal(t, 1, q.Count())
		require.True(t, q.TryReceive(&e))
		assert.Equal(t, types.EventTouchDown, e.Kind)
		assert.Equal(t, int32(i), e.Touch.X)
		assert.False(t, q.TryReceive(&e))
		assert.Equal(t, 0, q.Count())
	}
	st := q.Stat()
	assert.Equal(t, uint64(10), st.Sent)
	assert.Equal(t, uint64(10), st.Received)
	assert.Equal(t, uint64(10), st.Dropped)
}

func TestWrapAround(t *testing.T) {
	t.Parallel()

	q := MustNew(3)
	var e types.Event
	for i := 0; i < 100; i++ {
		require.True(t, q.TrySend(touchAt(types.EventTouchMove, i)))
		require.True(t, q.TrySend(touchAt(types.EventTouchMove, i+1000)))
		require.True(t, q.TryReceive(&e))
		require.Equal(t, int32(i), e.Touch.X)
		require.True(t, q.TryReceive(&e))
		require.Equal(t, int32(i+1000), e.Touch.X)
	}
	assert.Equal(t, 0, q.Count())
}

func TestSendTimeout(t *testing.T) {
	t.Parallel()

	q := MustNew(1)
	require.True(t, q.TrySend(touchAt(types.EventTouchDown, 1)))

	begin := time.Now()
	assert.False(t, q.SendTimeout(touchAt(types.EventTouchUp, 2), 20*time.Millisecond))
	assert.GreaterOrEqual(t, int64(time.Since(begin)), int64(20*time.Millisecond))

	go func() {
		time.Sleep(10 * time.Millisecond)
		var e types.Event
		q.TryReceive(&e)
	}()
	assert.True(t, q.SendTimeout(touchAt(types.EventTouchUp, 3), 5*time.Second))
	var e types.Event
	require.True(t, q.TryReceive(&e))
	assert.Equal(t, int32(3), e.Touch.X)
}

// One producer, one consumer, no loss with large enough queue, strict order.
func TestConcurrentOrder(t *testing.T) {
	t.Parallel()

	const total = 20000
	q := MustNew(64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < total; {
			if q.TrySend(touchAt(types.EventTouchMove, i)) {
				i++
			} else {
				runtime.Gosched()
			}
		}
	}()

	next := 0
	var e types.Event
	for next < total {
		if q.TryReceive(&e) {
			require.Equal(t, int32(next), e.Touch.X)
			require.Equal(t, int32(next*2), e.Touch.Y)
			next++
		} else {
			runtime.Gosched()
		}
	}
	<-done
	assert.Equal(t, uint64(total), q.Stat().Received)
}

// Touch goroutine and navigation requests from consumer side share producer end.
func TestConcurrentProducers(t *testing.T) {
	t.Parallel()

	const perProducer = 5000
	q := MustNew(16)
	wg := sync.WaitGroup{}
	for p := 0; p < 2; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; {
				if q.TrySend(touchAt(types.EventTouchMove, p*perProducer+i)) {
					i++
				} else {
					runtime.Gosched()
				}
			}
		}(p)
	}

	lastSeen := [2]int32{-1, -1}
	var e types.Event
	for got := 0; got < 2*perProducer; {
		if !q.TryReceive(&e) {
			runtime.Gosched()
			continue
		}
		got++
		p := e.Touch.X / perProducer
		require.Greater(t, e.Touch.X, lastSeen[p], "per producer order")
		lastSeen[p] = e.Touch.X
	}
	wg.Wait()
}
