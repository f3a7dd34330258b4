// Package parser turns a lexer token stream into a parse tree: entities
// with a keyword header, an optional metadata block, and an ordered
// sequence of starred rule lines (SPEC_FULL.md §4.1). It does not decide
// what kind of Rule a line represents — that classification from
// syntactic shape belongs to internal/ruleset (§4.2).
package parser

import (
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/lexer"
)

// MetadataLine is one `Key: value...` line inside an entity's metadata
// block.
type MetadataLine struct {
	Key    string
	Values []lexer.Token
	Loc    diagnostic.Location
}

// RuleLine is one starred rule line. Depth counts the leading `*` tokens
// (nested contexts use repeated stars); Tokens holds everything after
// them up to the next rule or entity boundary.
type RuleLine struct {
	Depth  int
	Tokens []lexer.Token
	Loc    diagnostic.Location
}

// AliasEntity is a single `Alias: name = target` declaration.
type AliasEntity struct {
	Name   string
	Target string
	Loc    diagnostic.Location
}

// Entity is one parsed top-level declaration. Params is only populated for
// a RuleSet header written with a parameter list, e.g.
// `RuleSet: SetStatus(val)` (SPEC_FULL.md §4.3).
type Entity struct {
	Keyword  string
	Name     string
	Params   []string
	Metadata []MetadataLine
	Rules    []RuleLine
	Loc      diagnostic.Location
}

// Tree is the parsed content of one source file.
type Tree struct {
	Aliases  []AliasEntity
	Entities []Entity
}
