package strand

// Batch groups multiple signal writes into a single notification phase.
// Sync watchers triggered inside the batch are collected, deduplicated, and
// run once when the outermost batch completes; pre/post watchers coalesce
// into the job queues and are flushed at the same point.
//
// Batches can be nested. Notifications only fire when the outermost batch
// completes.
//
// Example:
//
//	Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	    age.Set(30)
//	})
//	// Watchers run once with all three changes applied
func Batch(fn func()) {
	ctx := currentContext()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			runDeferredSync(ctx)
			Flush()
		}
	}()

	fn()
}

// Tx is an alias for Batch, for callers that read better as a transaction.
func Tx(fn func()) {
	Batch(fn)
}

// runDeferredSync executes the sync watchers collected during a batch, in
// notification order. Deduplication happened at defer time, so each watcher
// runs at most once and sees only the final batched state.
func runDeferredSync(ctx *trackingContext) {
	for len(ctx.deferredSync) > 0 {
		deferred := ctx.deferredSync
		ctx.deferredSync = nil
		for _, w := range deferred {
			w.execute()
		}
	}
}

// deferSync queues a sync watcher for execution at the end of the current
// batch, deduplicating by identity.
func deferSync(ctx *trackingContext, w *Watcher) {
	for _, q := range ctx.deferredSync {
		if q == w {
			return
		}
	}
	ctx.deferredSync = append(ctx.deferredSync, w)
}
