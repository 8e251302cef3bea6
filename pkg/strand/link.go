package strand

import (
	interrors "github.com/strand-ui/strand/internal/errors"
)

// Change describes one mutation broadcast through the dependency graph.
// For whole-value signals (Ref, Computed) Key is nil. Reactive containers
// carry the mutated key or index so watchers can filter on it.
type Change struct {
	Key any
	Old any
	New any
}

// signalNode is the per-signal half of the dependency graph. It is embedded
// in every signal variant and threads the doubly-linked list of links to
// subscribers. Appends go to the tail, so notification order is insertion
// order.
type signalNode struct {
	id       uint64
	subs     *depLink
	subsTail *depLink
}

// subscriberNode is the per-subscriber half of the graph, embedded in
// Watcher and Computed. It threads the subscriber's dependency list and
// carries the per-run dedup set.
type subscriberNode struct {
	id       uint64
	deps     *depLink
	depsTail *depLink

	// seen guards against duplicate links within one tracked run. It is
	// reset every time the subscriber re-collects its dependencies.
	seen map[uint64]struct{}
}

// subscriber is anything that can be linked to a signal and notified when
// it changes. Implemented by Watcher and Computed.
type subscriber interface {
	node() *subscriberNode
	notify(ch Change)
}

// depLink joins one signal to one subscriber. A link is a member of exactly
// two lists at once: the signal's subscriber list (prevSub/nextSub) and the
// subscriber's dependency list (prevDep/nextDep). Both memberships are
// created and destroyed together.
type depLink struct {
	sig *signalNode
	sub subscriber

	prevSub *depLink
	nextSub *depLink
	prevDep *depLink
	nextDep *depLink
}

// createLink appends a new link to the tail of both lists. The caller must
// have checked the subscriber's per-run seen set, so no duplicate scan is
// needed here.
func createLink(sig *signalNode, sub subscriber) *depLink {
	l := &depLink{sig: sig, sub: sub}
	n := sub.node()

	if n.depsTail != nil {
		n.depsTail.nextDep = l
		l.prevDep = n.depsTail
	} else {
		n.deps = l
	}
	n.depsTail = l

	if sig.subsTail != nil {
		sig.subsTail.nextSub = l
		l.prevSub = sig.subsTail
	} else {
		sig.subs = l
	}
	sig.subsTail = l

	return l
}

// destroyLink splices l out of both lists, updating heads and tails when l
// was an endpoint, then clears l's own pointers so a stale reference cannot
// walk back into either list.
func destroyLink(l *depLink) {
	if l.nextSub != nil {
		l.nextSub.prevSub = l.prevSub
	} else {
		l.sig.subsTail = l.prevSub
	}
	if l.prevSub != nil {
		l.prevSub.nextSub = l.nextSub
	} else {
		l.sig.subs = l.nextSub
	}

	n := l.sub.node()
	if l.nextDep != nil {
		l.nextDep.prevDep = l.prevDep
	} else {
		n.depsTail = l.prevDep
	}
	if l.prevDep != nil {
		l.prevDep.nextDep = l.nextDep
	} else {
		n.deps = l.nextDep
	}

	l.sig = nil
	l.sub = nil
	l.prevSub, l.nextSub = nil, nil
	l.prevDep, l.nextDep = nil, nil
}

// clearDeps destroys every link in the subscriber's dependency list and
// resets the per-run seen set. Called before every re-run and on disposal,
// so a subscriber is only ever linked to the signals it read during its
// most recent execution.
func clearDeps(sub subscriber) {
	n := sub.node()
	for l := n.deps; l != nil; {
		next := l.nextDep
		destroyLink(l)
		l = next
	}
	n.deps = nil
	n.depsTail = nil
	n.seen = nil
}

// clearSubscribers destroys every link in the signal's subscriber list.
// Used when a signal is discarded while subscribers are still live.
func clearSubscribers(sig *signalNode) {
	for l := sig.subs; l != nil; {
		next := l.nextSub
		destroyLink(l)
		l = next
	}
	sig.subs = nil
	sig.subsTail = nil
}

// track links the current subscriber (if any) to this signal. Reads outside
// a tracked context subscribe nothing.
func (s *signalNode) track() {
	sub := currentSubscriber()
	if sub == nil {
		return
	}
	n := sub.node()
	if _, ok := n.seen[s.id]; ok {
		return
	}
	if n.seen == nil {
		n.seen = make(map[uint64]struct{}, 8)
	}
	n.seen[s.id] = struct{}{}
	createLink(s, sub)
}

// maxTriggerDepth bounds synchronous re-trigger cycles. A watcher that
// writes one of its own dependencies will re-enter trigger; past this depth
// the cycle is reported as a fatal coded error rather than recursing until
// the stack blows.
const maxTriggerDepth = 100

// trigger notifies every subscriber of this signal in insertion order. The
// walk snapshots the list first: a sync watcher run inside notify may
// destroy arbitrary links, including ones ahead of the walk (disposing a
// sibling watcher, re-collecting its own dependencies). A destroyed link
// has a nil subscriber and is skipped; links created during the walk are
// not notified for this change.
func (s *signalNode) trigger(ch Change) {
	ctx := currentContext()
	ctx.triggerDepth++
	defer func() { ctx.triggerDepth-- }()
	if ctx.triggerDepth > maxTriggerDepth {
		panic(interrors.New("E002").
			WithSuggestion("do not write a signal from a watcher that reads it; guard the write with Peek or Untracked"))
	}

	var links []*depLink
	for l := s.subs; l != nil; l = l.nextSub {
		links = append(links, l)
	}
	fanout := 0
	for _, l := range links {
		sub := l.sub
		if sub == nil {
			continue
		}
		sub.notify(ch)
		fanout++
	}
	instrumentation().SignalTriggered(fanout)
}
