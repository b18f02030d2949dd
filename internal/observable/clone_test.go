package observable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloned_GetReturnsIndependentCopies(t *testing.T) {
	t.Parallel()

	v := NewValue([]string{"a", "b"})
	view := Cloned(View[[]string](v))

	first := view.Get()
	first[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, view.Get())
	assert.Equal(t, []string{"a", "b"}, v.Get())
}

func TestCloned_EmptyStaysNonNil(t *testing.T) {
	t.Parallel()

	view := Cloned(View[[]int](NewValue([]int{})))

	got := view.Get()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCloned_EverySubscriberGetsItsOwnCopy(t *testing.T) {
	t.Parallel()

	v := NewValue([]int{})
	view := Cloned(View[[]int](v))

	view.Subscribe(func(values []int) {
		values[0] = -1
	})
	var seen [][]int
	unsubscribe := view.Subscribe(func(values []int) {
		seen = append(seen, values)
	})

	v.Publish([]int{1, 2, 3})
	unsubscribe()
	v.Publish([]int{4})

	require.Len(t, seen, 1)
	assert.Equal(t, []int{1, 2, 3}, seen[0])
	assert.Equal(t, []int{4}, v.Get())
}

func TestCloned_NilSubscriber(t *testing.T) {
	t.Parallel()

	view := Cloned(View[[]int](NewValue([]int{})))

	unsubscribe := view.Subscribe(nil)
	require.NotNil(t, unsubscribe)
	unsubscribe()
}
