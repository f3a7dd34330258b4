// Package diagnostic implements the compiler's collected-error model
// (SPEC_FULL.md §7): every component reports problems into a Collector
// instead of returning them up the call stack, so one bad entity, rule,
// or file never aborts the rest of the compile.
package diagnostic

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Severity is the level of a diagnostic entry.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warn"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Code enumerates the diagnostic taxonomy from SPEC_FULL.md §7.
type Code string

const (
	Syntax                 Code = "SYNTAX"
	NameCollision          Code = "NAME_COLLISION"
	MissingMetadata        Code = "MISSING_METADATA"
	DuplicateMetadata      Code = "DUPLICATE_METADATA"
	UnknownReference       Code = "UNKNOWN_REFERENCE"
	RuleApplicationFailure Code = "RULE_APPLICATION_FAILURE"
	RuleSetParameterMismatch Code = "RULE_SET_PARAMETER_MISMATCH"
	RuleSetParseError      Code = "RULE_SET_PARSE_ERROR"
	Deprecation            Code = "DEPRECATION"
	ConfigError            Code = "CONFIG_ERROR"
	CacheError             Code = "CACHE_ERROR"
)

// Location pinpoints a diagnostic within a source file. Zero value means
// "no location" (e.g. a config-layer diagnostic).
type Location struct {
	File      string `json:"file,omitempty"`
	StartLine int    `json:"startLine,omitempty"`
	StartCol  int    `json:"startCol,omitempty"`
	EndLine   int    `json:"endLine,omitempty"`
	EndCol    int    `json:"endCol,omitempty"`
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Diagnostic is a single collected finding.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Location Location `json:"location,omitempty"`

	// seq preserves insertion order for entries that tie on file/line/column.
	seq int
}

func (d Diagnostic) String() string {
	if d.Location.File == "" {
		return fmt.Sprintf("%s: %s: %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %s", d.Location, d.Severity, d.Code, d.Message)
}

// Collector gathers diagnostics from every pipeline stage. It is safe for
// concurrent use so parallel exporters (SPEC_FULL.md §5) can share one
// instance; Sorted() merges everything in the deterministic order the spec
// requires: file, then line, then column, then insertion order.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
	next  int
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d.seq = c.next
	c.next++
	c.items = append(c.items, d)
}

// Errorf is a convenience for Add(Diagnostic{Severity: Error, ...}).
func (c *Collector) Errorf(code Code, loc Location, format string, args ...any) {
	c.Add(Diagnostic{Severity: Error, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Warnf is a convenience for Add(Diagnostic{Severity: Warning, ...}).
func (c *Collector) Warnf(code Code, loc Location, format string, args ...any) {
	c.Add(Diagnostic{Severity: Warning, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Merge appends another collector's items into this one. Used to fold
// per-worker diagnostic batches back together after parallel export.
func (c *Collector) Merge(other *Collector) {
	other.mu.Lock()
	items := append([]Diagnostic(nil), other.items...)
	other.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range items {
		d.seq = c.next
		c.next++
		c.items = append(c.items, d)
	}
}

// Sorted returns all diagnostics ordered by file, line, column, then
// insertion order, per SPEC_FULL.md §5's merge guarantee.
func (c *Collector) Sorted() []Diagnostic {
	c.mu.Lock()
	out := append([]Diagnostic(nil), c.items...)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.StartLine != b.Location.StartLine {
			return a.Location.StartLine < b.Location.StartLine
		}
		if a.Location.StartCol != b.Location.StartCol {
			return a.Location.StartCol < b.Location.StartCol
		}
		return a.seq < b.seq
	})
	return out
}

// HighestSeverity returns the most severe level observed, or Info if empty.
func (c *Collector) HighestSeverity() Severity {
	highest := Info
	for _, d := range c.Sorted() {
		if d.Severity > highest {
			highest = d.Severity
		}
	}
	return highest
}

// ErrorCount reports the number of Error-severity entries.
func (c *Collector) ErrorCount() int {
	n := 0
	for _, d := range c.Sorted() {
		if d.Severity == Error {
			n++
		}
	}
	return n
}

// JSON renders all diagnostics as a JSON array, for --json CLI output.
func (c *Collector) JSON() ([]byte, error) {
	return json.Marshal(c.Sorted())
}
