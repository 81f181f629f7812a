package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a goroutine.
type trackingContext struct {
	gid uint64

	// currentListener is what's currently tracking dependencies.
	// nil means reads don't create subscriptions.
	currentListener Listener

	// batchDepth tracks nested Batch() calls.
	batchDepth int

	// pendingUpdates accumulates listeners to notify when the batch completes.
	pendingUpdates []Listener
}

func (ctx *trackingContext) idle() bool {
	return ctx.currentListener == nil && ctx.batchDepth == 0 && len(ctx.pendingUpdates) == 0
}

// trackingContexts stores per-goroutine tracking contexts. A context lives
// only while its goroutine has a listener or an open batch.
var trackingContexts sync.Map

// getGoroutineID returns the current goroutine's ID, parsed from the
// "goroutine <id> " header of its stack.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ { // Skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine,
// creating it on first use.
func getTrackingContext() *trackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{gid: gid}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// peekTrackingContext returns the current goroutine's context, or nil if it
// has none. Reads use it so they never allocate one.
func peekTrackingContext() *trackingContext {
	if ctx, ok := trackingContexts.Load(getGoroutineID()); ok {
		return ctx.(*trackingContext)
	}
	return nil
}

// releaseIfIdle drops ctx once nothing on its goroutine refers to it.
func releaseIfIdle(ctx *trackingContext) {
	if ctx.idle() {
		trackingContexts.Delete(ctx.gid)
	}
}

func getCurrentListener() Listener {
	if ctx := peekTrackingContext(); ctx != nil {
		return ctx.currentListener
	}
	return nil
}

// setCurrentListener sets the current listener and returns the previous one.
func setCurrentListener(l Listener) Listener {
	ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	releaseIfIdle(ctx)
	return old
}

func getBatchDepth() int {
	if ctx := peekTrackingContext(); ctx != nil {
		return ctx.batchDepth
	}
	return 0
}

func incrementBatchDepth() {
	getTrackingContext().batchDepth++
}

// decrementBatchDepth returns true when the outermost batch completes.
func decrementBatchDepth() bool {
	ctx := getTrackingContext()
	ctx.batchDepth--
	return ctx.batchDepth == 0
}

func queuePendingUpdate(l Listener) {
	ctx := getTrackingContext()
	ctx.pendingUpdates = append(ctx.pendingUpdates, l)
}

// drainPendingUpdates empties the pending queue. The context is released
// when that leaves it idle.
func drainPendingUpdates() []Listener {
	ctx := getTrackingContext()
	updates := ctx.pendingUpdates
	ctx.pendingUpdates = nil
	releaseIfIdle(ctx)
	return updates
}

// WithListener runs fn with l as the current listener, so every Signal.Get
// inside fn subscribes l.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}
