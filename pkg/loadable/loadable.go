// Package loadable implements the one-shot load lifecycle shared by
// portal items and feature layers: not loaded -> loading -> loaded or
// failed, with done listeners delivered on the Fyne UI thread.
package loadable

import (
	"sync"

	"fyne.io/fyne/v2"
)

type Status int

const (
	NotLoaded Status = iota
	Loading
	Loaded
	FailedToLoad
)

func (s Status) String() string {
	switch s {
	case NotLoaded:
		return "not loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case FailedToLoad:
		return "failed to load"
	}
	return "unknown"
}

// Base holds load state for an asynchronously loaded resource. The
// zero value is ready to use. Embed it and drive it with Begin/Finish.
type Base struct {
	mu        sync.Mutex
	status    Status
	loadErr   error
	listeners []func()
}

// Status reports the current load status. Safe from any goroutine.
func (b *Base) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// LoadError returns the terminal load error, or nil.
func (b *Base) LoadError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadErr
}

// OnDone registers fn to run on the UI thread once loading reaches a
// terminal state. Registering after completion fires fn immediately
// (still via the UI thread). Each listener fires exactly once.
func (b *Base) OnDone(fn func()) {
	b.mu.Lock()
	if b.status == Loaded || b.status == FailedToLoad {
		b.mu.Unlock()
		fyne.Do(fn)
		return
	}
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// Begin transitions NotLoaded to Loading. It returns false when the
// load was already started or finished; the terminal state is reached
// at most once.
func (b *Base) Begin() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status != NotLoaded {
		return false
	}
	b.status = Loading
	return true
}

// Finish moves to the terminal state for err and fires the done
// listeners on the UI thread.
func (b *Base) Finish(err error) {
	b.mu.Lock()
	if b.status == Loaded || b.status == FailedToLoad {
		b.mu.Unlock()
		return
	}
	if err != nil {
		b.status = FailedToLoad
		b.loadErr = err
	} else {
		b.status = Loaded
	}
	listeners := b.listeners
	b.listeners = nil
	b.mu.Unlock()

	for _, fn := range listeners {
		fyne.Do(fn)
	}
}
