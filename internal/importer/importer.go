package importer

import (
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/lexer"
	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/parser"
	"github.com/oxhq/fshc/internal/ruleset"
)

// Source is one shorthand file to import: its path (used for diagnostic
// locations and as the lexer's file tag) and its raw text.
type Source struct {
	Path string
	Text string
}

// Importer runs the three-pass import described in SPEC_FULL.md §4.2:
// parse and classify every file's entities and rule sets; expand `insert`
// rules now that every rule set is known; resolve soft indices over each
// entity's final, expanded rule list.
type Importer struct {
	Diags *diagnostic.Collector
}

func New(diags *diagnostic.Collector) *Importer {
	return &Importer{Diags: diags}
}

// Import runs the full pipeline over a batch of source files and returns
// the finalized entity tank.
func (imp *Importer) Import(sources []Source) *Tank {
	tank := newTank()

	type pending struct {
		entity model.Entity
	}
	var built []pending

	for _, src := range sources {
		lx := lexer.New(src.Path, src.Text)
		toks := lx.Tokenize()
		for _, le := range lx.Errors {
			imp.Diags.Errorf(diagnostic.Syntax, diagnostic.Location{File: src.Path, StartLine: le.Pos.Line, StartCol: le.Pos.Col}, "%s", le.Message)
		}
		tree := parser.New(src.Path, toks, imp.Diags).Parse()

		aliases := map[string]string{}
		for _, a := range tree.Aliases {
			if _, exists := aliases[a.Name]; exists {
				imp.Diags.Errorf(diagnostic.NameCollision, a.Loc, "alias %q already declared", a.Name)
				continue
			}
			aliases[a.Name] = a.Target
		}

		for _, pe := range tree.Entities {
			switch {
			case pe.Keyword == "RuleSet" && len(pe.Params) == 0:
				rules := buildRules(src.Path, pe.Rules, aliases, imp.Diags)
				if _, exists := tank.plainRuleSets[pe.Name]; exists {
					imp.Diags.Errorf(diagnostic.NameCollision, pe.Loc, "rule set %q already declared", pe.Name)
					continue
				}
				tank.plainRuleSets[pe.Name] = rules
			case pe.Keyword == "RuleSet":
				if _, exists := tank.paramRuleSets[pe.Name]; exists {
					imp.Diags.Errorf(diagnostic.NameCollision, pe.Loc, "rule set %q already declared", pe.Name)
					continue
				}
				tank.paramRuleSets[pe.Name] = &model.ParameterizedRuleSet{
					Header:       model.Header{Name: pe.Name, Location: pe.Loc},
					Params:       pe.Params,
					Body:         ruleSetBodyText(pe.Rules),
					BodyLocation: firstRuleLoc(pe.Rules, pe.Loc),
				}
			default:
				e := BuildEntity(src.Path, pe, aliases, imp.Diags)
				if e != nil {
					tank.put(e, imp.Diags)
					built = append(built, pending{entity: e})
				}
			}
		}
	}

	exp := ruleset.NewExpander(tank)
	for _, p := range built {
		h := p.entity.Header()
		h.Rules = expandInserts(exp, h.Rules, imp.Diags)
		resolveSoftIndices(h.Rules)
	}

	return tank
}

// expandInserts replaces every top-level InsertRule in rules with the
// rule(s) it expands to, preserving the surrounding rules' order.
func expandInserts(exp *ruleset.Expander, rules []model.Rule, diags *diagnostic.Collector) []model.Rule {
	var out []model.Rule
	ctx := &model.Path{}
	for _, r := range rules {
		if p := rulePath(r); p != nil {
			*ctx = *p
		}
		if ir, ok := r.(*model.InsertRule); ok {
			out = append(out, ruleset.Expand(exp, ir, ctx, nil, diags)...)
			continue
		}
		out = append(out, r)
	}
	return out
}
