// Package strand implements a fine-grained reactivity engine: signals that
// track their readers, watchers that re-run when their dependencies change,
// and scopes that own watcher lifetimes.
//
// The building blocks:
//
//   - Ref: a single reactive value
//   - Computed: a lazily derived value
//   - ReactiveMap / ReactiveList: reactive containers with per-key changes
//   - Watch / Effect: re-runnable computations with sync, pre, or post flush
//   - Scope: bulk pause/resume/dispose over a tree of watchers
//   - Batch: coalesce several writes into one notification phase
//
// Dependency tracking is automatic. Reading a signal inside a watcher run
// links the two; each re-run re-collects links from scratch, so conditional
// reads never leave stale subscriptions behind.
//
//	count := strand.NewRef(0)
//	doubled := strand.NewComputed(func() int { return count.Get() * 2 })
//
//	strand.Effect(func() {
//	    fmt.Println("doubled:", doubled.Get())
//	})
//
//	count.Set(5)
//	strand.Flush() // effect re-runs, prints "doubled: 10"
//
// Scheduling is cooperative and per-goroutine: each goroutine has its own
// tracking context and job queues. Pre and post watchers wait for Flush,
// which the host runtime calls once per tick; sync watchers run inside the
// triggering write unless a Batch is open.
package strand
