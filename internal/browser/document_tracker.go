package browser

import "github.com/go-rod/rod/lib/proto"

// documentTracker follows the main frame of one navigation, including client-side redirects
// such as location.replace that commit a new loader. Events of earlier navigations on the same
// page are ignored until the first event of the started loader arrives; CDP delivers a
// session's events in order, so nothing stale can follow it.
type documentTracker struct {
	frameID   proto.PageFrameID
	event     string
	started   proto.NetworkLoaderID
	seen      bool
	committed proto.NetworkLoaderID
	documents map[proto.NetworkLoaderID]*proto.NetworkResponse
}

func newDocumentTracker(frameID proto.PageFrameID, event string) *documentTracker {
	return &documentTracker{
		frameID:   frameID,
		event:     event,
		documents: map[proto.NetworkLoaderID]*proto.NetworkResponse{},
	}
}

func (t *documentTracker) start(loader proto.NetworkLoaderID) {
	t.started = loader
	t.committed = loader
}

func (t *documentTracker) observe(loader proto.NetworkLoaderID) {
	if loader != "" && loader == t.started {
		t.seen = true
	}
}

func (t *documentTracker) onResponse(e *proto.NetworkResponseReceived) {
	if t.started == "" || e.FrameID != t.frameID || e.Type != proto.NetworkResourceTypeDocument {
		return
	}
	t.observe(e.LoaderID)
	if t.seen {
		t.documents[e.LoaderID] = e.Response
	}
}

func (t *documentTracker) onFrameNavigated(e *proto.PageFrameNavigated) {
	if t.started == "" || e.Frame == nil || e.Frame.ID != t.frameID {
		return
	}
	t.observe(e.Frame.LoaderID)
	if t.seen {
		t.committed = e.Frame.LoaderID
	}
}

// onLifecycle ends the wait once the awaited event fires for the loader currently committed
// in the frame.
func (t *documentTracker) onLifecycle(e *proto.PageLifecycleEvent) bool {
	if t.started == "" || e.FrameID != t.frameID {
		return false
	}
	t.observe(e.LoaderID)
	return t.seen && e.LoaderID == t.committed && string(e.Name) == t.event
}

// mainResponse is the document response of the committed loader, or of the started one when
// the committed document produced none.
func (t *documentTracker) mainResponse() *proto.NetworkResponse {
	if r := t.documents[t.committed]; r != nil {
		return r
	}
	return t.documents[t.started]
}
