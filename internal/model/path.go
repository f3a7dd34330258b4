package model

import "strings"

// IndexKind distinguishes the bracket forms a path step may carry.
type IndexKind int

const (
	// NoIndex means the step has no bracket suffix at all.
	NoIndex IndexKind = iota
	// NumericIndex is a literal `[0]`, `[1]`, ...
	NumericIndex
	// SliceIndex is a named slice, `[sliceName]`.
	SliceIndex
	// SoftPlus is `[+]`: allocate the next index at this prefix.
	SoftPlus
	// SoftEquals is `[=]`: reuse the current index at this prefix.
	SoftEquals
)

// Step is one dotted segment of a Path, e.g. `coding` in `coding[0]` or
// `component` in `component[VitalSigns]`.
type Step struct {
	Name string

	Index     IndexKind
	Numeric   int    // valid when Index == NumericIndex, or after soft-index resolution
	SliceName string // valid when Index == SliceIndex

	// Resolved is set once soft indexing (§4.2) has run: SoftPlus/SoftEquals
	// steps are rewritten in place to NumericIndex with Numeric populated.
	Resolved bool
}

func (s Step) String() string {
	switch s.Index {
	case NumericIndex:
		return s.Name + bracket(itoa(s.Numeric))
	case SliceIndex:
		return s.Name + bracket(s.SliceName)
	case SoftPlus:
		return s.Name + bracket("+")
	case SoftEquals:
		return s.Name + bracket("=")
	default:
		return s.Name
	}
}

func bracket(s string) string { return "[" + s + "]" }

func itoa(n int) string {
	// Small, dependency-free int->string; paths never carry huge indices.
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Path is a non-empty dotted sequence of Steps addressing an element.
type Path struct {
	Steps []Step
}

func (p Path) String() string {
	parts := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// IsEmpty reports whether the path has no steps (used for the entity's
// implicit root context, e.g. caret rules with no element path).
func (p Path) IsEmpty() bool { return len(p.Steps) == 0 }

// Prefix returns the name-joined path formed by the first n steps, e.g.
// for diagnostics or grouping by step name alone. Soft-index counters
// need the *resolved* parent path, not just step names, and build their
// own key (see internal/importer.resolveSoftIndices).
func (p Path) Prefix(n int) string {
	if n > len(p.Steps) {
		n = len(p.Steps)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = p.Steps[i].Name
	}
	return strings.Join(parts, ".")
}

// CaretPath addresses metadata on an element definition itself, e.g.
// `^short` or `^binding.strength`.
type CaretPath struct {
	Keys []string
}

func (c CaretPath) String() string { return strings.Join(c.Keys, ".") }

// CodePath is the ordered hierarchy of codes identifying a concept inside
// a code system (SPEC_FULL.md §4.5's code-caret-path addressing).
type CodePath struct {
	Codes []string
}

func (c CodePath) String() string { return strings.Join(c.Codes, " ") }
