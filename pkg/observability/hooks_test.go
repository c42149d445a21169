package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Build hooks
	b := NoopBuildHooks{}
	b.OnBuildStart(ctx, "stack", 1)
	b.OnBuildComplete(ctx, "stack", 100, time.Second, nil)

	// Frame hooks
	f := NoopFrameHooks{}
	f.OnFrameScheduled(ctx, "r1", 1000)
	f.OnFrameCompleted(ctx, "r1", 1000, time.Millisecond)
	f.OnPoolResize(ctx, "r1", 0, 1000)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "elements")
	c.OnCacheMiss(ctx, "elements")
	c.OnCacheSet(ctx, "elements", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/v1/frame")
	h.OnResponse(ctx, "GET", "/v1/frame", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Build() should return NoopBuildHooks by default")
	}
	if _, ok := Frame().(NoopFrameHooks); !ok {
		t.Error("Frame() should return NoopFrameHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customBuild := &testBuildHooks{}
	SetBuildHooks(customBuild)
	if Build() != customBuild {
		t.Error("SetBuildHooks should set custom hooks")
	}

	customFrame := &testFrameHooks{}
	SetFrameHooks(customFrame)
	if Frame() != customFrame {
		t.Error("SetFrameHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Reset() should restore NoopBuildHooks")
	}
	if _, ok := Frame().(NoopFrameHooks); !ok {
		t.Error("Reset() should restore NoopFrameHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testBuildHooks{}
	SetBuildHooks(custom)

	// Setting nil should be ignored
	SetBuildHooks(nil)

	if Build() != custom {
		t.Error("SetBuildHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testBuildHooks struct{ NoopBuildHooks }
type testFrameHooks struct{ NoopFrameHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
