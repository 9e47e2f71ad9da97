// Package diag defines the diagnostic value and accumulation list shared by
// every compiler phase (spec.md §7). Phases never throw on a recoverable
// problem; they append a Diagnostic to a Bag and keep going.
package diag

import (
	"fmt"
	"strings"

	"github.com/kryonlabs/kryon/internal/srcloc"
)

// Severity ranks a Diagnostic. Severities above Warning block the next
// compilation phase; Note/Info/Warning never do.
type Severity int

const (
	Info Severity = iota
	Note
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Phase names the compiler phase that raised a Diagnostic, used for
// grouping in summaries.
type Phase string

const (
	PhaseLex       Phase = "lex"
	PhaseParse     Phase = "parse"
	PhaseExpand    Phase = "expand"
	PhaseKIR       Phase = "kir"
	PhaseCodegen   Phase = "codegen"
	PhaseLoad      Phase = "load"
	PhaseRuntime   Phase = "runtime"
)

// Diagnostic is one reported problem or observation.
type Diagnostic struct {
	Severity Severity
	Phase    Phase
	Message  string
	Location srcloc.Location
	Fix      string // optional suggested fix, empty if none
	Cause    error  // optional wrapped underlying error
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", d.Severity, d.Location, d.Message)
	if d.Fix != "" {
		fmt.Fprintf(&b, " (fix: %s)", d.Fix)
	}
	return b.String()
}

// Bag accumulates diagnostics for one compilation phase (or the whole
// pipeline). It never panics; callers inspect HasErrors()/Worst() to decide
// whether to proceed.
type Bag struct {
	items []Diagnostic
}

// Add appends a Diagnostic.
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// Addf appends an Error-severity Diagnostic built from a format string.
func (b *Bag) Addf(phase Phase, loc srcloc.Location, format string, args ...any) {
	b.Add(Diagnostic{Severity: Error, Phase: phase, Message: fmt.Sprintf(format, args...), Location: loc})
}

// Warnf appends a Warning-severity Diagnostic.
func (b *Bag) Warnf(phase Phase, loc srcloc.Location, format string, args ...any) {
	b.Add(Diagnostic{Severity: Warning, Phase: phase, Message: fmt.Sprintf(format, args...), Location: loc})
}

// Items returns all accumulated diagnostics in report order.
func (b *Bag) Items() []Diagnostic { return b.items }

// Len reports how many diagnostics have been recorded.
func (b *Bag) Len() int { return len(b.items) }

// Worst returns the highest Severity seen, or Info if the bag is empty.
func (b *Bag) Worst() Severity {
	worst := Info
	for _, d := range b.items {
		if d.Severity > worst {
			worst = d.Severity
		}
	}
	return worst
}

// HasErrors reports whether any diagnostic is Error or Fatal — the
// threshold spec.md §7 uses to block advancing to the next phase.
func (b *Bag) HasErrors() bool { return b.Worst() >= Error }

// Extend appends every diagnostic from other into b, preserving order.
func (b *Bag) Extend(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// Format renders every diagnostic one per line, severity tag first — the
// formatting internal/klog and cmd/kryonc use to print a Bag to the user.
func (b *Bag) Format() string {
	var sb strings.Builder
	for _, d := range b.items {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary renders a one-line "N error(s), M warning(s), K note(s)" count;
// Info and Note diagnostics are both counted as notes.
func (b *Bag) Summary() string {
	var errs, warns, notes int
	for _, d := range b.items {
		switch {
		case d.Severity >= Error:
			errs++
		case d.Severity == Warning:
			warns++
		default:
			notes++
		}
	}
	return fmt.Sprintf("%d error(s), %d warning(s), %d note(s)", errs, warns, notes)
}
