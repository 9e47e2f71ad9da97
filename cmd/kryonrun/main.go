// Command kryonrun headlessly loads a compiled KRB file, lays out its
// element tree, and dumps the resulting render-command stream as text — a
// way to exercise internal/runtime, internal/layout, and internal/render
// end to end without a concrete rendering backend, which spec.md §1 places
// outside this module's scope.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kryonlabs/kryon/internal/klog"
	"github.com/kryonlabs/kryon/internal/layout"
	"github.com/kryonlabs/kryon/internal/render"
	"github.com/kryonlabs/kryon/internal/runtime"
	"github.com/kryonlabs/kryon/internal/state"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var width, height float64

	cmd := &cobra.Command{
		Use:   "kryonrun <input.krb>",
		Short: "Load a KRB file, compute layout, and dump its render-command stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := klog.New()
			if err != nil {
				return err
			}
			defer log.Sync()

			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("kryonrun: reading %s: %w", args[0], err)
			}

			log.Pass("Load", "decoding %s...", args[0])
			doc, bag := runtime.Decode(buf)
			if bag.HasErrors() {
				fmt.Fprint(os.Stderr, bag.Format())
				return fmt.Errorf("kryonrun: decode failed")
			}

			roots, matBag := runtime.Materialize(doc)
			bag.Extend(matBag)
			if bag.HasErrors() {
				fmt.Fprint(os.Stderr, bag.Format())
				return fmt.Errorf("kryonrun: materialize failed")
			}
			log.Done("%d root elements", len(roots))

			globals := map[string]state.Value{}
			for k, v := range doc.Variables {
				globals[k] = v
			}
			store := state.NewFromMap(globals)

			log.Pass("Update", "reconciling @for/@if directives...")
			for _, root := range roots {
				updBag := runtime.Update(root, store)
				bag.Extend(updBag)
			}
			if bag.Len() > 0 {
				fmt.Fprint(os.Stderr, bag.Format())
			}

			log.Pass("Layout", "computing %vx%v layout...", width, height)
			for _, root := range roots {
				runtime.Mount(root)
				layout.Compute(root, doc.Strings, 0, 0, width, height)
			}

			emitter := render.NewEmitter(doc.Strings)
			var cmds []render.Command
			for _, root := range roots {
				cmds = append(cmds, emitter.Emit(root)...)
			}
			log.Done("%d render commands", len(cmds))

			for _, c := range cmds {
				fmt.Printf("%-12s x=%.1f y=%.1f w=%.1f h=%.1f text=%q\n", c.Kind, c.X, c.Y, c.Width, c.Height, c.Text)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&width, "width", 800, "viewport width")
	cmd.Flags().Float64Var(&height, "height", 600, "viewport height")
	return cmd
}
