package observable

import "slices"

// Cloned wraps a slice View so that every Get and every notification hands
// out its own copy. A consumer modifying what it received never changes the
// published value or what other subscribers see.
func Cloned[S ~[]E, E any](view View[S]) View[S] {
	return clonedView[S, E]{view: view}
}

type clonedView[S ~[]E, E any] struct {
	view View[S]
}

func (c clonedView[S, E]) Get() S {
	return slices.Clone(c.view.Get())
}

func (c clonedView[S, E]) Subscribe(fn func(S)) func() {
	if fn == nil {
		return func() {}
	}
	return c.view.Subscribe(func(value S) {
		fn(slices.Clone(value))
	})
}
