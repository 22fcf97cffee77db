package browser

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
)

const testFrame proto.PageFrameID = "frame-1"

func documentEvent(loader proto.NetworkLoaderID, status int) *proto.NetworkResponseReceived {
	return &proto.NetworkResponseReceived{
		FrameID:  testFrame,
		LoaderID: loader,
		Type:     proto.NetworkResourceTypeDocument,
		Response: &proto.NetworkResponse{URL: "https://example.com/" + string(loader), Status: status},
	}
}

func lifecycle(loader proto.NetworkLoaderID, name string) *proto.PageLifecycleEvent {
	return &proto.PageLifecycleEvent{FrameID: testFrame, LoaderID: loader, Name: proto.PageLifecycleEventName(name)}
}

func navigated(loader proto.NetworkLoaderID) *proto.PageFrameNavigated {
	return &proto.PageFrameNavigated{Frame: &proto.PageFrame{ID: testFrame, LoaderID: loader}}
}

func TestDocumentTracker_SimpleLoad(t *testing.T) {
	tr := newDocumentTracker(testFrame, "networkIdle")
	tr.start("L1")

	tr.onResponse(documentEvent("L1", 200))
	tr.onFrameNavigated(navigated("L1"))
	assert.False(t, tr.onLifecycle(lifecycle("L1", "DOMContentLoaded")))
	assert.True(t, tr.onLifecycle(lifecycle("L1", "networkIdle")))

	main := tr.mainResponse()
	if assert.NotNil(t, main) {
		assert.Equal(t, 200, main.Status)
	}
}

func TestDocumentTracker_IgnoresEventsBeforeStart(t *testing.T) {
	tr := newDocumentTracker(testFrame, "load")

	tr.onResponse(documentEvent("L1", 200))
	assert.False(t, tr.onLifecycle(lifecycle("L1", "load")))
	assert.Nil(t, tr.mainResponse())
}

func TestDocumentTracker_IgnoresStaleLoaderUntilStartedSeen(t *testing.T) {
	tr := newDocumentTracker(testFrame, "load")
	tr.start("L2")

	// Late events of the previous attempt on the same page.
	tr.onFrameNavigated(navigated("L1"))
	tr.onResponse(documentEvent("L1", 500))
	assert.False(t, tr.onLifecycle(lifecycle("L1", "load")))

	tr.onResponse(documentEvent("L2", 200))
	assert.True(t, tr.onLifecycle(lifecycle("L2", "load")))
	assert.Equal(t, 200, tr.mainResponse().Status)
}

func TestDocumentTracker_FollowsClientSideRedirect(t *testing.T) {
	tr := newDocumentTracker(testFrame, "networkIdle")
	tr.start("L1")

	tr.onResponse(documentEvent("L1", 200))
	tr.onFrameNavigated(navigated("L1"))
	assert.False(t, tr.onLifecycle(lifecycle("L1", "DOMContentLoaded")))

	// location.replace commits a new loader before the first one goes idle.
	tr.onResponse(documentEvent("L2", 203))
	tr.onFrameNavigated(navigated("L2"))
	assert.False(t, tr.onLifecycle(lifecycle("L1", "networkIdle")))
	assert.True(t, tr.onLifecycle(lifecycle("L2", "networkIdle")))

	assert.Equal(t, 203, tr.mainResponse().Status)
}

func TestDocumentTracker_FallsBackToStartedResponse(t *testing.T) {
	tr := newDocumentTracker(testFrame, "load")
	tr.start("L1")

	tr.onResponse(documentEvent("L1", 200))
	tr.onFrameNavigated(navigated("L2"))

	assert.Equal(t, 200, tr.mainResponse().Status)
}

func TestDocumentTracker_IgnoresOtherFramesAndResources(t *testing.T) {
	tr := newDocumentTracker(testFrame, "load")
	tr.start("L1")

	child := documentEvent("L1", 404)
	child.FrameID = "frame-2"
	tr.onResponse(child)

	script := documentEvent("L1", 500)
	script.Type = proto.NetworkResourceTypeScript
	tr.onResponse(script)

	other := lifecycle("L1", "load")
	other.FrameID = "frame-2"
	assert.False(t, tr.onLifecycle(other))

	assert.Nil(t, tr.mainResponse())
}
