// strand-bench measures the reactive engine and node runtime: dependency
// propagation through computed chains, trigger fanout over many watchers,
// and render/patch throughput against the mock host.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/strand-ui/strand/pkg/hosttest"
	"github.com/strand-ui/strand/pkg/strand"
	"github.com/strand-ui/strand/pkg/vnode"
)

var (
	iterations int
	warmup     int
	size       int
)

func main() {
	root := &cobra.Command{
		Use:          "strand-bench",
		Short:        "Benchmarks for the strand reactivity engine and vnode runtime",
		SilenceUsage: true,
	}
	root.PersistentFlags().IntVarP(&iterations, "iterations", "n", 10000, "measured iterations")
	root.PersistentFlags().IntVarP(&warmup, "warmup", "w", 100, "warmup iterations before measuring")
	root.PersistentFlags().IntVarP(&size, "size", "s", 100, "graph or tree size per iteration")

	root.AddCommand(propagateCmd(), fanoutCmd(), vdomCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// measure runs fn warmup+iterations times and prints timing percentiles.
func measure(name string, fn func()) {
	for i := 0; i < warmup; i++ {
		fn()
	}
	meter := tachymeter.New(&tachymeter.Config{Size: iterations})
	for i := 0; i < iterations; i++ {
		start := time.Now()
		fn()
		meter.AddTime(time.Since(start))
	}
	report(name, meter.Calc())
}

func report(name string, m *tachymeter.Metrics) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(name)
	t.AppendHeader(table.Row{"metric", "value"})
	t.AppendRows([]table.Row{
		{"iterations", m.Count},
		{"avg", m.Time.Avg},
		{"p50", m.Time.P50},
		{"p95", m.Time.P95},
		{"p99", m.Time.P99},
		{"max", m.Time.Max},
		{"rate/s", fmt.Sprintf("%.0f", m.Rate.Second)},
	})
	t.Render()
}

// propagateCmd measures a write at the head of a computed chain being read
// at the tail.
func propagateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "propagate",
		Short: "Write-to-read latency through a chain of computeds",
		Run: func(cmd *cobra.Command, args []string) {
			head := strand.NewRef(0)
			tail := func() int { return head.Get() }
			for i := 0; i < size; i++ {
				prev := tail
				c := strand.NewComputed(func() int { return prev() + 1 })
				tail = c.Get
			}
			n := 0
			measure(fmt.Sprintf("propagate depth=%d", size), func() {
				n++
				head.Set(n)
				if got := tail(); got != n+size {
					panic(fmt.Sprintf("chain broke: got %d, want %d", got, n+size))
				}
			})
		},
	}
}

// fanoutCmd measures one write notifying many sync watchers.
func fanoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fanout",
		Short: "One write notifying many sync watchers",
		Run: func(cmd *cobra.Command, args []string) {
			src := strand.NewRef(0)
			sink := 0
			for i := 0; i < size; i++ {
				strand.Effect(func() { sink += src.Get() }, strand.WithFlush(strand.FlushSync), strand.Detached())
			}
			n := 0
			measure(fmt.Sprintf("fanout width=%d", size), func() {
				n++
				src.Set(n)
			})
			_ = sink
		},
	}
}

// vdomCmd measures rendering and re-patching a list against the mock host.
func vdomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vdom",
		Short: "Render and patch a row list against the mock host",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, rt := hosttest.NewRuntime()

			rows := func(offset int) *vnode.VNode {
				kids := make([]*vnode.VNode, size)
				for i := 0; i < size; i++ {
					kids[i] = vnode.El("li",
						map[string]any{"key": fmt.Sprintf("row-%d", i)},
						vnode.Textf("row %d", i+offset))
				}
				return vnode.El("ul", nil, kids...)
			}

			current := rows(0)
			if err := rt.Render(current); err != nil {
				return err
			}
			if err := rt.Mount(current, adapter.Root()); err != nil {
				return err
			}

			n := 0
			var patchErr error
			measure(fmt.Sprintf("vdom rows=%d", size), func() {
				n++
				next, err := rt.Patch(current, rows(n), adapter.Root())
				if err != nil {
					patchErr = err
					return
				}
				current = next
			})
			return patchErr
		},
	}
}
