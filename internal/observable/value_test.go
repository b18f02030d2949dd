package observable

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestValue_SeededAndReplaced(t *testing.T) {
	t.Parallel()

	v := NewValue([]int{})
	assert.Empty(t, v.Get())

	v.Publish([]int{1, 2})
	assert.Equal(t, []int{1, 2}, v.Get())

	v.Publish([]int{})
	assert.Empty(t, v.Get())
}

func TestValue_NotifiesCurrentSubscribersInOrder(t *testing.T) {
	t.Parallel()

	v := NewValue(0)
	var calls []string
	v.Subscribe(func(i int) { calls = append(calls, "a") })
	v.Subscribe(func(i int) { calls = append(calls, "b") })

	v.Publish(7)

	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestValue_LateSubscriberMissesEarlierPublish(t *testing.T) {
	t.Parallel()

	v := NewValue(0)
	v.Publish(1)

	var received []int
	v.Subscribe(func(i int) { received = append(received, i) })
	assert.Empty(t, received)

	v.Publish(2)
	assert.Equal(t, []int{2}, received)
}

func TestValue_Unsubscribe(t *testing.T) {
	t.Parallel()

	v := NewValue("")
	count := 0
	unsubscribe := v.Subscribe(func(string) { count++ })
	other := v.Subscribe(func(string) {})
	require.Equal(t, 2, v.Subscribers())

	v.Publish("x")
	unsubscribe()
	unsubscribe()
	v.Publish("y")

	assert.Equal(t, 1, count)
	assert.Equal(t, 1, v.Subscribers())

	other()
	assert.Zero(t, v.Subscribers())
}

func TestValue_UnsubscribeDuringPublish(t *testing.T) {
	t.Parallel()

	v := NewValue(0)
	var unsubscribe func()
	calls := 0
	unsubscribe = v.Subscribe(func(int) {
		calls++
		unsubscribe()
	})

	v.Publish(1)
	v.Publish(2)

	assert.Equal(t, 1, calls)
}

func TestValue_NilSubscriber(t *testing.T) {
	t.Parallel()

	v := NewValue(0)
	unsubscribe := v.Subscribe(nil)
	unsubscribe()

	assert.NotPanics(t, func() { v.Publish(1) })
	assert.Zero(t, v.Subscribers())
}

func TestValue_ConcurrentPublishAndSubscribe(t *testing.T) {
	t.Parallel()

	v := NewValue(0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			v.Publish(i)
		}(i)
		go func() {
			defer wg.Done()
			unsubscribe := v.Subscribe(func(int) {})
			_ = v.Get()
			unsubscribe()
		}()
	}
	wg.Wait()

	assert.Zero(t, v.Subscribers())
}

func TestEventLoop_RunsOnLoopAndWaits(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewEventLoop()
	v := NewValue(0)
	seen := 0
	v.Subscribe(func(i int) { seen = i })

	loop.Execute(func() { v.Publish(5) })
	assert.Equal(t, 5, seen)

	loop.Close()
	loop.Close()

	loop.Execute(func() { v.Publish(6) })
	assert.Equal(t, 5, v.Get())
}

func TestEventLoop_PanicReachesCaller(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewEventLoop()
	defer loop.Close()

	assert.PanicsWithValue(t, "boom", func() {
		loop.Execute(func() { panic("boom") })
	})

	ran := false
	loop.Execute(func() { ran = true })
	assert.True(t, ran)
}

func TestImmediate(t *testing.T) {
	t.Parallel()

	ran := false
	Immediate.Execute(func() { ran = true })
	assert.True(t, ran)
}
