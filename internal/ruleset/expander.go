package ruleset

import (
	"strings"

	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/lexer"
	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/parser"
)

// Lookup resolves a rule set or parameterized rule set by name. The
// importer's entity tank implements this; kept as an interface here so
// internal/ruleset never imports internal/importer (SPEC_FULL.md §4.3).
type Lookup interface {
	PlainRuleSet(name string) (rules []model.Rule, found bool)
	ParameterizedRuleSet(name string) (params []string, body string, bodyLoc diagnostic.Location, found bool)
}

// Expander expands `insert` rules, memoizing parameterized rule-set
// instantiations by (name, argument-tuple) so a rule set inserted with the
// same arguments from multiple call sites is only substituted and
// re-parsed once.
type Expander struct {
	lookup  Lookup
	cache   map[string][]model.Rule
	visited map[string]bool
}

func NewExpander(lookup Lookup) *Expander {
	return &Expander{lookup: lookup, cache: map[string][]model.Rule{}, visited: map[string]bool{}}
}

func cacheKey(name string, args []string) string {
	return name + "\x00" + strings.Join(args, "\x00")
}

// Expand resolves a single InsertRule into the rule(s) it stands for,
// recursively expanding any nested inserts found in the rule set's body.
// ctx and aliases are the surrounding entity's path context and alias
// table, used when classifying the rule set's own lines.
func Expand(exp *Expander, ir *model.InsertRule, ctx *model.Path, aliases map[string]string, diags *diagnostic.Collector) []model.Rule {
	key := cacheKey(ir.RuleSetName, ir.Params)
	if cached, ok := exp.cache[key]; ok {
		return cached
	}
	if exp.visited[key] {
		diags.Errorf(diagnostic.RuleSetParseError, ir.Loc(), "recursive rule set insertion detected for %q", ir.RuleSetName)
		return nil
	}
	exp.visited[key] = true
	defer delete(exp.visited, key)

	if len(ir.Params) == 0 {
		if rules, ok := exp.lookup.PlainRuleSet(ir.RuleSetName); ok {
			var expanded []model.Rule
			for _, r := range rules {
				if nested, ok := r.(*model.InsertRule); ok {
					expanded = append(expanded, Expand(exp, nested, ctx, aliases, diags)...)
					continue
				}
				expanded = append(expanded, r)
			}
			exp.cache[key] = expanded
			return expanded
		}
	}

	params, body, bodyLoc, found := exp.lookup.ParameterizedRuleSet(ir.RuleSetName)
	if !found {
		diags.Errorf(diagnostic.UnknownReference, ir.Loc(), "rule set %q not found", ir.RuleSetName)
		return nil
	}
	if len(params) != len(ir.Params) {
		diags.Errorf(diagnostic.RuleSetParameterMismatch, ir.Loc(),
			"rule set %q expects %d parameter(s), got %d", ir.RuleSetName, len(params), len(ir.Params))
		return nil
	}

	substituted := substituteParams(body, params, ir.Params)

	toks := lexer.New(bodyLoc.File, substituted).Tokenize()
	bodyDiags := diagnostic.NewCollector()
	lines := parser.ParseRuleLines(bodyLoc.File, toks, bodyDiags)
	diags.Merge(bodyDiags)

	var expanded []model.Rule
	for _, rl := range lines {
		for _, r := range ClassifyRule(bodyLoc.File, rl, ctx, aliases, diags) {
			if nested, ok := r.(*model.InsertRule); ok {
				expanded = append(expanded, Expand(exp, nested, ctx, aliases, diags)...)
				continue
			}
			expanded = append(expanded, r)
		}
	}

	exp.cache[key] = expanded
	return expanded
}

// substituteParams replaces every `{param}` placeholder in body with the
// corresponding positional argument text (SPEC_FULL.md §4.3). Substitution
// is purely textual: the body is re-lexed afterward, so an argument
// containing its own tokens (e.g. a code literal) lexes normally in place.
func substituteParams(body string, params, args []string) string {
	replacer := make([]string, 0, len(params)*2)
	for i, p := range params {
		replacer = append(replacer, "{"+p+"}", args[i])
	}
	return strings.NewReplacer(replacer...).Replace(body)
}
