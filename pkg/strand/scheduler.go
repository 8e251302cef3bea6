package strand

import (
	"time"

	interrors "github.com/strand-ui/strand/internal/errors"
)

// maxFlushPasses bounds the number of drain passes in one Flush. Watchers
// that keep enqueueing each other past this limit are in a feedback cycle.
const maxFlushPasses = 100

// enqueue adds a pre/post watcher to the goroutine's job queue,
// deduplicating by watcher identity so repeated triggers within one tick
// coalesce into a single execution.
func enqueue(w *Watcher) {
	ctx := currentContext()
	if ctx.queued == nil {
		ctx.queued = make(map[uint64]struct{})
	}
	if _, ok := ctx.queued[w.sub.id]; ok {
		return
	}
	ctx.queued[w.sub.id] = struct{}{}
	if w.flush == FlushPost {
		ctx.post = append(ctx.post, w)
	} else {
		ctx.pre = append(ctx.pre, w)
	}
}

// dequeue drops a watcher from the pending queues, reporting whether an
// entry was actually removed. Called on disposal so a disposed watcher
// never runs from a stale queue entry, and on pause so the pending update
// can be carried over as dirtiness instead of being lost.
func dequeue(w *Watcher) bool {
	ctx := currentContext()
	if _, ok := ctx.queued[w.sub.id]; !ok {
		return false
	}
	delete(ctx.queued, w.sub.id)
	ctx.pre = removeWatcher(ctx.pre, w)
	ctx.post = removeWatcher(ctx.post, w)
	return true
}

func removeWatcher(queue []*Watcher, w *Watcher) []*Watcher {
	for i, q := range queue {
		if q == w {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}

// Flush drains the goroutine's job queues: all pre jobs run first (in
// enqueue order), then all post jobs. Jobs enqueued while flushing are
// picked up in a further pass within the same Flush call, so the caller
// observes a settled graph on return.
//
// The host runtime is expected to drive ticks: call Flush after each event
// handler or at the commit point of a render pass. Batch calls Flush
// automatically when the outermost batch completes.
func Flush() {
	ctx := currentContext()
	if ctx.flushing || ctx.batchDepth > 0 {
		return
	}
	ctx.flushing = true
	defer func() { ctx.flushing = false }()

	start := time.Now()
	jobs := 0
	passes := 0
	for len(ctx.pre) > 0 || len(ctx.post) > 0 {
		passes++
		if passes > maxFlushPasses {
			ctx.pre = nil
			ctx.post = nil
			ctx.queued = nil
			panic(interrors.New("E002").
				WithSuggestion("a pre/post watcher keeps re-triggering itself; break the write cycle or batch the writes"))
		}
		for len(ctx.pre) > 0 {
			w := ctx.pre[0]
			ctx.pre = ctx.pre[1:]
			delete(ctx.queued, w.sub.id)
			w.execute()
			jobs++
		}
		// Post jobs run after the pre queue is empty. A post job may
		// enqueue new pre jobs; the outer loop picks those up.
		for len(ctx.post) > 0 && len(ctx.pre) == 0 {
			w := ctx.post[0]
			ctx.post = ctx.post[1:]
			delete(ctx.queued, w.sub.id)
			w.execute()
			jobs++
		}
	}
	if jobs > 0 {
		instrumentation().FlushCompleted(jobs, time.Since(start))
	}
}

// HasPendingJobs reports whether any pre/post watchers are queued on this
// goroutine.
func HasPendingJobs() bool {
	ctx := currentContext()
	return len(ctx.pre) > 0 || len(ctx.post) > 0
}
