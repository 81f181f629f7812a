// Package reactive provides the signal primitives that back observable
// objects in querysync.
//
// Signal[T] is a reactive value container:
//
//	search := reactive.NewSignal("")
//	search.Set("?color=blue") // notifies subscribers
//	old, changed := search.Swap("?color=red")
//
// Listeners subscribe either explicitly or by reading a signal with Get
// inside WithListener:
//
//	l := reactive.ListenerFunc(func() { fmt.Println("dirty") })
//	reactive.WithListener(l, func() { _ = search.Get() })
//
// # Batching
//
// Batch groups updates so each listener is notified once when the outermost
// batch completes:
//
//	reactive.Batch(func() {
//	    pathname.Set("/app")
//	    search.Set("?tab=2")
//	})
//
// Batch depth and pending notifications are tracked per goroutine.
package reactive
