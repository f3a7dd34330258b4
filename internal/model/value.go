package model

import "fmt"

// Value is the tagged union of literal/value forms a rule can carry
// (SPEC_FULL.md §3 "Value types"). Every concrete type below implements it.
type Value interface {
	fmt.Stringer
	isValue()
}

type Boolean bool

func (Boolean) isValue()        {}
func (b Boolean) String() string { return fmt.Sprintf("%t", bool(b)) }

type Decimal float64

func (Decimal) isValue()         {}
func (d Decimal) String() string { return fmt.Sprintf("%g", float64(d)) }

type Integer int64

func (Integer) isValue()         {}
func (i Integer) String() string { return fmt.Sprintf("%d", int64(i)) }

// String is a resolved shorthand string literal: escape sequences and
// indentation-normalization (triple-quoted strings) are already applied
// by the time the lexer produces it.
type String string

func (String) isValue()        {}
func (s String) String() string { return string(s) }

// DateTime and Time carry the literal lexical form; the exporter does not
// reinterpret them, only stores them on the target valueDateTime/valueTime.
type DateTime string

func (DateTime) isValue()         {}
func (d DateTime) String() string { return string(d) }

type Time string

func (Time) isValue()         {}
func (t Time) String() string { return string(t) }

// Code is a coded value, optionally scoped to a system and carrying a
// display string, e.g. `#final` or `SomeSystem#final "Final"`.
type Code struct {
	Value   string
	System  string
	Display string
}

func (Code) isValue() {}
func (c Code) String() string {
	if c.System != "" {
		return fmt.Sprintf("%s#%s", c.System, c.Value)
	}
	return "#" + c.Value
}

// Quantity is a decimal value with a UCUM unit code.
type Quantity struct {
	Value float64
	Unit  string
	System string
}

func (Quantity) isValue() {}
func (q Quantity) String() string { return fmt.Sprintf("%g '%s'", q.Value, q.Unit) }

// Ratio is a numerator/denominator pair of quantities.
type Ratio struct {
	Numerator   Quantity
	Denominator Quantity
}

func (Ratio) isValue() {}
func (r Ratio) String() string {
	return fmt.Sprintf("%s : %s", r.Numerator, r.Denominator)
}

// Reference points at another entity by name, with an optional display.
type Reference struct {
	EntityName string
	Display    string
}

func (Reference) isValue() {}
func (r Reference) String() string { return fmt.Sprintf("Reference(%s)", r.EntityName) }

// Canonical points at another entity by name with an optional version.
type Canonical struct {
	EntityName string
	Version    string
}

func (Canonical) isValue() {}
func (c Canonical) String() string {
	if c.Version != "" {
		return fmt.Sprintf("Canonical(%s|%s)", c.EntityName, c.Version)
	}
	return fmt.Sprintf("Canonical(%s)", c.EntityName)
}

// ResourceRef is an inline assignment of an entity by bare name (used for
// Instance values that point at another Instance entity).
type ResourceRef struct {
	EntityName string
}

func (ResourceRef) isValue()         {}
func (r ResourceRef) String() string { return r.EntityName }
