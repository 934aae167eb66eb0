package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain[T any](ch <-chan T) []T {
	var out []T
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, v)
		default:
			return out
		}
	}
}

func TestHub_DeliversInOrder(t *testing.T) {
	h := NewHub[int](8)
	a := h.Subscribe()
	b := h.Subscribe()

	for i := 1; i <= 5; i++ {
		h.Publish(i)
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, drain(a.C()))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, drain(b.C()))
}

func TestHub_DropsOldestWhenFull(t *testing.T) {
	h := NewHub[int](3)
	s := h.Subscribe()

	for i := 1; i <= 10; i++ {
		h.Publish(i)
	}

	assert.Equal(t, []int{8, 9, 10}, drain(s.C()), "the latest values survive in order")
}

func TestHub_CancelClosesChannel(t *testing.T) {
	h := NewHub[string](0)
	s := h.Subscribe()
	require.Equal(t, 1, h.Len())

	s.Cancel()
	s.Cancel()
	require.Equal(t, 0, h.Len())

	_, ok := <-s.C()
	assert.False(t, ok)

	h.Publish("ignored")
}

func TestHub_Close(t *testing.T) {
	h := NewHub[int](4)
	s := h.Subscribe()
	h.Publish(1)
	h.Close()
	h.Close()

	assert.Equal(t, []int{1}, drain(s.C()))
	_, ok := <-s.C()
	assert.False(t, ok)

	late := h.Subscribe()
	_, ok = <-late.C()
	assert.False(t, ok, "subscribing to a closed hub yields a closed channel")

	s.Cancel()
	h.Publish(2)
}

func TestHub_ConcurrentPublishersKeepPerSubscriberOrder(t *testing.T) {
	h := NewHub[int](1000)
	s := h.Subscribe()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.Publish(base + i)
			}
		}(g * 1000)
	}
	wg.Wait()

	got := drain(s.C())
	require.Len(t, got, 400)

	last := map[int]int{}
	for _, v := range got {
		g := v / 1000
		if prev, ok := last[g]; ok {
			assert.Greater(t, v, prev, "values of one publisher stay ordered")
		}
		last[g] = v
	}
}

func TestHub_SubscriberGoroutine(t *testing.T) {
	h := NewHub[int](16)
	s := h.Subscribe()

	done := make(chan []int)
	go func() {
		var got []int
		for v := range s.C() {
			got = append(got, v)
		}
		done <- got
	}()

	h.Publish(1)
	h.Publish(2)
	h.Close()

	select {
	case got := <-done:
		assert.Equal(t, []int{1, 2}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not finish")
	}
}
