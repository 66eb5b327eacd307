package scripting

import (
	"sync"

	"github.com/psavery/tomviz/internal/dataset"
)

// Handle is the capsule through which a script touches a native data object.
// The host owns the underlying object; the script may only use the handle for
// the duration of the transform call. The executor invalidates every handle
// once the call returns, so a script that stashes one away gets
// ErrHandleExpired instead of a dangling pointer.
type Handle struct {
	mu       sync.Mutex
	obj      dataset.DataObject
	expired  bool
	canceled func() bool
	progress func(float64)
}

// NewHandle wraps a data object for one transform call.
func NewHandle(obj dataset.DataObject) *Handle {
	return &Handle{obj: obj}
}

// SetCancelPoll installs the poll the script's canceled() accessor reads.
// Cooperative cancellation only works for scripts that actually poll.
func (h *Handle) SetCancelPoll(fn func() bool) { h.canceled = fn }

// SetProgress installs the sink for the script's progress(v) calls.
func (h *Handle) SetProgress(fn func(float64)) { h.progress = fn }

// Object returns the wrapped data object, or ErrHandleExpired once the
// owning call has finished.
func (h *Handle) Object() (dataset.DataObject, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.expired {
		return nil, ErrHandleExpired
	}
	return h.obj, nil
}

// Invalidate severs the handle from its data object.
func (h *Handle) Invalidate() {
	h.mu.Lock()
	h.expired = true
	h.mu.Unlock()
}

// Valid reports whether the handle still resolves to its data object.
func (h *Handle) Valid() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.expired
}

// Canceled reports whether a cancel was requested. Always false when no poll
// is installed.
func (h *Handle) Canceled() bool {
	if h.canceled == nil {
		return false
	}
	return h.canceled()
}

// Progress forwards a completion fraction to the host, if it cares.
func (h *Handle) Progress(v float64) {
	if h.progress != nil {
		h.progress(v)
	}
}
