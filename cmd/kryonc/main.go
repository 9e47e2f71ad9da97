// Command kryonc is the Kryon build-time compiler: source (.kry) in, KRB
// binary or KIR JSON out, plus decompile/validate utilities. Structured as
// a small cobra command tree the way rashadism-openchoreo's pkg/cli/cmd
// subcommands are, trimmed to plain Flags()/RunE since this module's own
// CLI surface is narrow compared to a full control-plane client.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kryonlabs/kryon/internal/codegen"
	"github.com/kryonlabs/kryon/internal/decompile"
	"github.com/kryonlabs/kryon/internal/expand"
	"github.com/kryonlabs/kryon/internal/kir"
	"github.com/kryonlabs/kryon/internal/klog"
	"github.com/kryonlabs/kryon/internal/kryconfig"
	"github.com/kryonlabs/kryon/internal/metrics"
	"github.com/kryonlabs/kryon/internal/parser"
	"github.com/kryonlabs/kryon/internal/printer"
	"github.com/kryonlabs/kryon/internal/varsubst"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "kryonc",
		Short: "Kryon compiler: parse, expand, and generate KRB/KIR output",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "kryon.yaml", "path to the project config file")

	root.AddCommand(
		newBuildCmd(&configPath),
		newDecompileCmd(),
		newValidateCmd(&configPath),
	)
	return root
}

func newBuildCmd(configPath *string) *cobra.Command {
	var out string
	var kirOut bool

	cmd := &cobra.Command{
		Use:   "build <input.kry>",
		Short: "Compile a .kry source file to a KRB binary (or KIR JSON with --kir)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := klog.New()
			if err != nil {
				return err
			}
			defer log.Sync()
			reg := metrics.New()

			cfg, err := kryconfig.Load(*configPath)
			if err != nil {
				return err
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("kryonc: reading %s: %w", args[0], err)
			}

			log.Pass("Pass 0", "Substituting @variables blocks...")
			substituted, warnings, err := varsubst.Substitute(string(src))
			if err != nil {
				return fmt.Errorf("kryonc: variable substitution: %w", err)
			}
			for _, w := range warnings {
				log.Warn(w)
			}

			log.Pass("Pass 1", "Parsing %s...", args[0])
			start := time.Now()
			f, bag := parser.Parse([]byte(substituted), args[0])
			reg.ObservePhase("parse", time.Since(start))
			if bag.HasErrors() {
				fmt.Fprint(os.Stderr, bag.Format())
				return fmt.Errorf("kryonc: parse failed")
			}
			log.Done("%d top-level elements", len(f.Elements))

			log.Pass("Pass 2", "Expanding components, includes, and styles...")
			start = time.Now()
			loader := func(path string) ([]byte, error) { return os.ReadFile(path) }
			expanded, expBag := expand.Expand(f, expand.DefaultConfig(), loader, parser.Parse)
			reg.ObservePhase("expand", time.Since(start))
			if expBag.HasErrors() {
				fmt.Fprint(os.Stderr, expBag.Format())
				return fmt.Errorf("kryonc: expansion failed")
			}
			log.Done("%d elements after expansion", len(expanded.Elements))

			if kirOut {
				log.Pass("Pass 3", "Writing KIR JSON...")
				data, err := kir.Write(expanded, kir.Options{Style: styleFromName(cfg.KIRStyle)})
				if err != nil {
					return err
				}
				return os.WriteFile(outPathOr(out, args[0], ".kir.json"), data, 0o644)
			}

			log.Pass("Pass 3", "Generating KRB binary...")
			start = time.Now()
			buf, stats, genBag := codegen.Generate(expanded, codegen.Config{Compressed: cfg.Compressed, DebugInfo: cfg.DebugInfo})
			reg.ObservePhase("codegen", time.Since(start))
			if genBag.HasErrors() {
				fmt.Fprint(os.Stderr, genBag.Format())
				return fmt.Errorf("kryonc: codegen failed")
			}
			log.Done("%d elements, %d strings, %d bytes", stats.ElementCount, stats.StringCount, stats.TotalBytes)

			return os.WriteFile(outPathOr(out, args[0], ".krb"), buf, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (defaults to the input path with its extension swapped)")
	cmd.Flags().BoolVar(&kirOut, "kir", false, "emit KIR JSON instead of a KRB binary")
	return cmd
}

func newDecompileCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "decompile <input.krb>",
		Short: "Reconstruct Kryon source from a compiled KRB binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("kryonc: reading %s: %w", args[0], err)
			}
			f, err := decompile.Decompile(buf)
			if err != nil {
				return fmt.Errorf("kryonc: decompile failed: %w", err)
			}
			src := printer.Print(f)
			if out == "" {
				fmt.Print(src)
				return nil
			}
			return os.WriteFile(out, []byte(src), 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write source here instead of stdout")
	return cmd
}

func newValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input.kry>",
		Short: "Parse and expand a source file, reporting diagnostics without producing output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := kryconfig.Load(*configPath); err != nil {
				return err
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("kryonc: reading %s: %w", args[0], err)
			}
			substituted, _, err := varsubst.Substitute(string(src))
			if err != nil {
				return fmt.Errorf("kryonc: variable substitution: %w", err)
			}
			f, bag := parser.Parse([]byte(substituted), args[0])
			_, expBag := expand.Expand(f, expand.DefaultConfig(), nil, nil)
			bag.Extend(expBag)
			fmt.Print(bag.Format())
			if bag.HasErrors() {
				return fmt.Errorf("kryonc: validation failed")
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func outPathOr(explicit, input, suffix string) string {
	if explicit != "" {
		return explicit
	}
	return input + suffix
}

func styleFromName(name string) kir.Style {
	switch name {
	case "readable":
		return kir.StyleReadable
	case "verbose":
		return kir.StyleVerbose
	default:
		return kir.StyleCompact
	}
}
