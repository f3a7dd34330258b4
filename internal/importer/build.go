package importer

import (
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/lexer"
	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/parser"
	"github.com/oxhq/fshc/internal/ruleset"
)

// substituteAliasTokens returns a copy of tokens with every Sequence token
// whose text exactly matches a known alias replaced by the alias target
// (SPEC_FULL.md §4.2: "any SEQUENCE that exactly equals a known alias name
// is substituted by its target"). Substitution happens once, here, rather
// than scattered across every rule classifier.
func substituteAliasTokens(tokens []lexer.Token, aliases map[string]string) []lexer.Token {
	if len(aliases) == 0 {
		return tokens
	}
	out := make([]lexer.Token, len(tokens))
	for i, tok := range tokens {
		if tok.Kind == lexer.Sequence {
			if target, ok := aliases[tok.Text]; ok {
				tok.Text = target
			}
		}
		out[i] = tok
	}
	return out
}

// buildRules classifies every rule line of an entity into model.Rule
// values, threading PathRule inheritance (an unprefixed line adopts the
// nearest preceding path) across the entity's rule block.
func buildRules(file string, lines []parser.RuleLine, aliases map[string]string, diags *diagnostic.Collector) []model.Rule {
	ctx := &model.Path{}
	var rules []model.Rule
	for _, rl := range lines {
		rl.Tokens = substituteAliasTokens(rl.Tokens, aliases)
		rules = append(rules, ruleset.ClassifyRule(file, rl, ctx, aliases, diags)...)
	}
	return rules
}

// metaValue renders a metadata line's token values back to plain text,
// joining tokens with a single space (metadata lines carry free text:
// titles, descriptions, FHIRPath expressions).
func metaValue(ml parser.MetadataLine) string {
	s := ""
	for i, tok := range ml.Values {
		if i > 0 {
			s += " "
		}
		s += tok.Text
	}
	return s
}

// metaBuilder accumulates first-wins metadata values for one entity,
// diagnosing duplicates at their own location.
type metaBuilder struct {
	file   string
	diags  *diagnostic.Collector
	seen   map[string]bool
	vals   map[string]string
	tokens map[string][]lexer.Token
}

func newMetaBuilder(file string, diags *diagnostic.Collector) *metaBuilder {
	return &metaBuilder{file: file, diags: diags, seen: map[string]bool{}, vals: map[string]string{}, tokens: map[string][]lexer.Token{}}
}

func (m *metaBuilder) collect(lines []parser.MetadataLine) {
	for _, ml := range lines {
		if m.seen[ml.Key] {
			m.diags.Errorf(diagnostic.DuplicateMetadata, ml.Loc, "duplicate %s: metadata, first occurrence wins", ml.Key)
			continue
		}
		m.seen[ml.Key] = true
		m.vals[ml.Key] = metaValue(ml)
		m.tokens[ml.Key] = ml.Values
	}
}

func (m *metaBuilder) get(key string) string { return m.vals[key] }

// getTokens returns a metadata value's individual tokens, for the rare
// field (Severity) where a trailing token past the first is a deprecated
// form rather than part of the value itself.
func (m *metaBuilder) getTokens(key string) []lexer.Token { return m.tokens[key] }

// BuildEntity converts one parsed entity into its concrete model.Entity,
// or nil for a RuleSet/ParameterizedRuleSet/Alias header, which the tank
// stores separately rather than as an addressable model.Entity.
func BuildEntity(file string, pe parser.Entity, aliases map[string]string, diags *diagnostic.Collector) model.Entity {
	mb := newMetaBuilder(file, diags)
	mb.collect(pe.Metadata)

	header := model.Header{
		Name:        pe.Name,
		Id:          mb.get("Id"),
		Title:       mb.get("Title"),
		Description: mb.get("Description"),
		Location:    pe.Loc,
	}
	if header.Id == "" {
		header.Id = header.Name
	}
	header.Rules = buildRules(file, pe.Rules, aliases, diags)

	switch pe.Keyword {
	case "Profile":
		return &model.Profile{StructureHeader: model.StructureHeader{Header: header, Parent: mb.get("Parent"), Mixins: splitList(mb.get("Mixins"))}}
	case "Extension":
		return &model.Extension{StructureHeader: model.StructureHeader{Header: header, Parent: mb.get("Parent"), Mixins: splitList(mb.get("Mixins"))}}
	case "Logical":
		return &model.Logical{StructureHeader: model.StructureHeader{Header: header, Parent: mb.get("Parent"), Mixins: splitList(mb.get("Mixins"))}}
	case "Resource":
		return &model.Resource{StructureHeader: model.StructureHeader{Header: header, Parent: mb.get("Parent"), Mixins: splitList(mb.get("Mixins"))}}
	case "Instance":
		usage := model.Usage(mb.get("Usage"))
		if usage == "" {
			usage = model.UsageDefinition
		}
		return &model.Instance{Header: header, InstanceOf: mb.get("InstanceOf"), Usage: usage}
	case "ValueSet":
		return &model.ValueSet{Header: header}
	case "CodeSystem":
		return &model.CodeSystem{Header: header}
	case "Invariant":
		sevToks := mb.getTokens("Severity")
		sev := model.SeverityError
		if len(sevToks) > 0 {
			sev = model.Severity(sevToks[0].Text)
			if len(sevToks) > 1 {
				diags.Warnf(diagnostic.Deprecation, pe.Loc, "a system following the severity code is deprecated and ignored")
			}
		}
		return &model.Invariant{Header: header, Expression: mb.get("Expression"), XPath: mb.get("XPath"), Severity: sev}
	case "Mapping":
		return &model.Mapping{Header: header, Source: mb.get("Source"), Target: mb.get("Target")}
	}
	if len(pe.Metadata) == 0 && len(header.Rules) == 0 {
		diags.Errorf(diagnostic.MissingMetadata, pe.Loc, "unrecognized entity keyword %q", pe.Keyword)
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	cur := ""
	for _, r := range s {
		if r == ',' {
			out = append(out, trimSpace(cur))
			cur = ""
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, trimSpace(cur))
	}
	return out
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == ' ' {
		start++
	}
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}

// ruleSetBodyText reconstructs a RuleSet's raw source body from its
// already-lexed rule-line tokens, so the expander can later substitute
// `{param}` placeholders and re-lex (SPEC_FULL.md §4.3). Reconstruction
// uses the tokens' own raw text, joined with a single space per line and
// a leading `*` per Depth, which is sufficient since re-lexing discards
// exact original spacing anyway.
func ruleSetBodyText(lines []parser.RuleLine) string {
	body := ""
	for _, rl := range lines {
		for i := 0; i < rl.Depth; i++ {
			body += "*"
		}
		prevBrace := false
		for _, tok := range rl.Tokens {
			// No space after '{' or before '}', so a `{param}` placeholder
			// round-trips exactly for the expander's textual substitution.
			if prevBrace || tok.Kind == lexer.RBrace {
				body += tok.Raw
			} else {
				body += " " + tok.Raw
			}
			prevBrace = tok.Kind == lexer.LBrace
		}
		body += "\n"
	}
	return body
}

func firstRuleLoc(lines []parser.RuleLine, fallback diagnostic.Location) diagnostic.Location {
	if len(lines) == 0 {
		return fallback
	}
	return lines[0].Loc
}
