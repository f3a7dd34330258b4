package ruleset

import (
	"strconv"
	"strings"

	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/lexer"
	"github.com/oxhq/fshc/internal/model"
	"github.com/oxhq/fshc/internal/parser"
)

func isFlagKeyword(text string) bool {
	switch text {
	case "MS", "SU", "?!", "TU", "N", "D":
		return true
	}
	return false
}

func applyFlagKeyword(f *model.Flags, text string) {
	switch text {
	case "MS":
		f.MustSupport = model.True
	case "SU":
		f.Summary = model.True
	case "?!":
		f.Modifier = model.True
	case "TU":
		f.TrialUse = model.True
	case "N":
		f.Normative = model.True
	case "D":
		f.Draft = model.True
	}
}

func parseCard(text string) (*int, *string) {
	parts := strings.SplitN(text, "..", 2)
	if len(parts) != 2 {
		return nil, nil
	}
	var minPtr *int
	if n, err := strconv.Atoi(parts[0]); err == nil {
		minPtr = &n
	}
	max := parts[1]
	return minPtr, &max
}

// ClassifyRule identifies a rule line's variant from its token shape and
// builds the corresponding model.Rule value(s) (SPEC_FULL.md §4.2). ctx
// holds the PathRule context inherited by indented, path-less lines and
// is updated in place whenever the line carries its own path.
func ClassifyRule(file string, rl parser.RuleLine, ctx *model.Path, aliases map[string]string, diags *diagnostic.Collector) []model.Rule {
	toks := rl.Tokens
	loc := rl.Loc
	if len(toks) == 0 {
		return nil
	}

	if toks[0].Kind == lexer.Keyword && toks[0].Text == "insert" {
		return classifyInsert(rl, toks, diags)
	}
	if toks[0].Kind == lexer.Code {
		return classifyConceptOrCodeCaret(rl, toks, aliases, diags)
	}
	if toks[0].Kind == lexer.Keyword && (toks[0].Text == "include" || toks[0].Text == "exclude") {
		return classifyValueSetComponent(rl, toks, 0, aliases)
	}

	idx := 0
	path := model.Path{}
	hasOwnPath := false
	if toks[idx].Kind == lexer.Sequence {
		path = buildPath(toks, &idx)
		hasOwnPath = true
	} else if ctx != nil {
		path = *ctx
	}
	if hasOwnPath && ctx != nil {
		*ctx = path
	}

	if idx >= len(toks) {
		return []model.Rule{&model.PathRule{Base: model.Base{Location: loc}, Path: path}}
	}

	switch {
	case toks[idx].Kind == lexer.CaretSequence:
		return classifyCaretValue(rl, path, toks, idx, aliases, diags)
	case toks[idx].Kind == lexer.Card:
		return classifyCardAndFlags(rl, path, toks, idx)
	case toks[idx].Kind == lexer.Keyword && isFlagKeyword(toks[idx].Text):
		return classifyCardAndFlags(rl, path, toks, idx)
	case toks[idx].Kind == lexer.Keyword && toks[idx].Text == "from":
		return classifyBinding(rl, path, toks, idx, aliases)
	case toks[idx].Kind == lexer.Equals:
		return classifyAssignment(rl, path, toks, idx, aliases, diags)
	case toks[idx].Kind == lexer.Keyword && toks[idx].Text == "only":
		return classifyOnly(rl, path, toks, idx, aliases, diags)
	case toks[idx].Kind == lexer.Keyword && toks[idx].Text == "contains":
		return classifyContains(rl, path, toks, idx)
	case toks[idx].Kind == lexer.Keyword && toks[idx].Text == "obeys":
		return classifyObeys(rl, path, toks, idx, diags)
	case toks[idx].Kind == lexer.Arrow:
		return classifyMapping(rl, path, toks, idx, diags)
	}

	if hasOwnPath {
		return []model.Rule{&model.PathRule{Base: model.Base{Location: loc}, Path: path}}
	}
	diags.Errorf(diagnostic.Syntax, loc, "unrecognized rule shape")
	return nil
}

func classifyCardAndFlags(rl parser.RuleLine, path model.Path, toks []lexer.Token, idx int) []model.Rule {
	loc := rl.Loc
	var rules []model.Rule
	if idx < len(toks) && toks[idx].Kind == lexer.Card {
		min, max := parseCard(toks[idx].Text)
		rules = append(rules, &model.CardRule{Base: model.Base{Location: loc}, Path: path, Min: min, Max: max})
		idx++
	}
	var flags model.Flags
	hasFlags := false
	for idx < len(toks) && toks[idx].Kind == lexer.Keyword && isFlagKeyword(toks[idx].Text) {
		hasFlags = true
		applyFlagKeyword(&flags, toks[idx].Text)
		idx++
	}
	if hasFlags {
		rules = append(rules, &model.FlagRule{Base: model.Base{Location: loc}, Path: path, Flags: flags})
	}
	return rules
}

func classifyBinding(rl parser.RuleLine, path model.Path, toks []lexer.Token, idx int, aliases map[string]string) []model.Rule {
	loc := rl.Loc
	idx++ // consume "from"
	if idx >= len(toks) {
		return nil
	}
	vs := resolveAlias(toks[idx].Text, aliases)
	idx++
	strength := model.Required
	if idx < len(toks) && toks[idx].Kind == lexer.LParen {
		idx++
		if idx < len(toks) {
			strength = model.BindingStrength(toks[idx].Text)
			idx++
		}
		if idx < len(toks) && toks[idx].Kind == lexer.RParen {
			idx++
		}
	}
	return []model.Rule{&model.BindingRule{Base: model.Base{Location: loc}, Path: path, ValueSet: vs, Strength: strength}}
}

func classifyAssignment(rl parser.RuleLine, path model.Path, toks []lexer.Token, idx int, aliases map[string]string, diags *diagnostic.Collector) []model.Rule {
	loc := rl.Loc
	idx++ // consume '='
	val, ok := parseValue(toks, &idx, aliases)
	if !ok {
		diags.Errorf(diagnostic.RuleApplicationFailure, loc, "expected value after '=' in assignment rule")
		return nil
	}
	isInstance := false
	if _, isRef := val.(model.ResourceRef); isRef {
		isInstance = true
	}
	exactly := false
	if idx < len(toks) && toks[idx].Kind == lexer.LParen && idx+1 < len(toks) && toks[idx+1].Text == "exactly" {
		exactly = true
		idx += 2
		if idx < len(toks) && toks[idx].Kind == lexer.RParen {
			idx++
		}
	}
	return []model.Rule{&model.AssignmentRule{Base: model.Base{Location: loc}, Path: path, Value: val, Exactly: exactly, IsInstance: isInstance}}
}

func classifyOnly(rl parser.RuleLine, path model.Path, toks []lexer.Token, idx int, aliases map[string]string, diags *diagnostic.Collector) []model.Rule {
	loc := rl.Loc
	idx++ // consume "only"
	var types []model.OnlyType
	for idx < len(toks) {
		tok := toks[idx]
		switch {
		case tok.Kind == lexer.Keyword && tok.Text == "or":
			idx++
		case tok.Kind == lexer.Reference || tok.Kind == lexer.CanonicalTok:
			isRef := tok.Kind == lexer.Reference
			idx++
			if idx < len(toks) && toks[idx].Kind == lexer.LParen {
				idx++
			}
			for idx < len(toks) && toks[idx].Kind != lexer.RParen {
				if toks[idx].Kind == lexer.Sequence || toks[idx].Kind == lexer.Keyword {
					types = append(types, model.OnlyType{Name: resolveAlias(toks[idx].Text, aliases), IsReference: isRef})
				}
				idx++
			}
			if idx < len(toks) && toks[idx].Kind == lexer.RParen {
				idx++
			}
		case tok.Kind == lexer.Sequence || tok.Kind == lexer.Keyword:
			types = append(types, model.OnlyType{Name: resolveAlias(tok.Text, aliases)})
			idx++
		default:
			idx++
		}
	}
	if len(types) == 0 {
		diags.Errorf(diagnostic.UnknownReference, loc, "only rule names no types")
	}
	return []model.Rule{&model.OnlyRule{Base: model.Base{Location: loc}, Path: path, Types: types}}
}

func classifyContains(rl parser.RuleLine, path model.Path, toks []lexer.Token, idx int) []model.Rule {
	loc := rl.Loc
	idx++ // consume "contains"
	var items []model.ContainsItem
	for idx < len(toks) {
		tok := toks[idx]
		if tok.Kind == lexer.Keyword && tok.Text == "and" {
			idx++
			continue
		}
		if tok.Kind != lexer.Sequence && tok.Kind != lexer.Keyword {
			idx++
			continue
		}
		item := model.ContainsItem{Type: tok.Text}
		idx++
		if idx < len(toks) && toks[idx].Kind == lexer.Keyword && toks[idx].Text == "named" {
			idx++
			if idx < len(toks) {
				item.Name = toks[idx].Text
				idx++
			}
		} else {
			item.Name = item.Type
			item.Type = ""
		}
		for idx < len(toks) && (toks[idx].Kind == lexer.Card || (toks[idx].Kind == lexer.Keyword && isFlagKeyword(toks[idx].Text))) {
			idx++
		}
		items = append(items, item)
	}
	return []model.Rule{&model.ContainsRule{Base: model.Base{Location: loc}, Path: path, Items: items}}
}

func classifyObeys(rl parser.RuleLine, path model.Path, toks []lexer.Token, idx int, diags *diagnostic.Collector) []model.Rule {
	loc := rl.Loc
	idx++ // consume "obeys"
	var rules []model.Rule
	for idx < len(toks) {
		tok := toks[idx]
		if tok.Kind == lexer.Keyword && tok.Text == "and" {
			idx++
			continue
		}
		if tok.Kind == lexer.Sequence || tok.Kind == lexer.Keyword {
			rules = append(rules, &model.ObeysRule{Base: model.Base{Location: loc}, Path: path, Invariant: tok.Text})
			idx++
			continue
		}
		idx++
	}
	if len(rules) == 0 {
		diags.Errorf(diagnostic.Syntax, loc, "obeys rule names no invariant")
	}
	return rules
}

func classifyMapping(rl parser.RuleLine, path model.Path, toks []lexer.Token, idx int, diags *diagnostic.Collector) []model.Rule {
	loc := rl.Loc
	idx++ // consume '->'
	if idx >= len(toks) || toks[idx].Kind != lexer.Str {
		diags.Errorf(diagnostic.Syntax, loc, "expected target string after '->' in mapping rule")
		return nil
	}
	target := toks[idx].Text
	idx++
	var comment, lang string
	if idx < len(toks) && toks[idx].Kind == lexer.Str {
		comment = toks[idx].Text
		idx++
	}
	if idx < len(toks) && toks[idx].Kind == lexer.Code {
		lang = toks[idx].Text
		idx++
	}
	return []model.Rule{&model.MappingRule{Base: model.Base{Location: loc}, Path: path, Target: target, Comment: comment, Language: lang}}
}

func classifyCaretValue(rl parser.RuleLine, path model.Path, toks []lexer.Token, idx int, aliases map[string]string, diags *diagnostic.Collector) []model.Rule {
	loc := rl.Loc
	caretTok := toks[idx]
	idx++
	if idx >= len(toks) || toks[idx].Kind != lexer.Equals {
		diags.Errorf(diagnostic.Syntax, loc, "expected '=' after caret path")
		return nil
	}
	idx++
	val, ok := parseValue(toks, &idx, aliases)
	if !ok {
		diags.Errorf(diagnostic.RuleApplicationFailure, loc, "expected value after caret assignment")
		return nil
	}
	isInstance := false
	if _, isRef := val.(model.ResourceRef); isRef {
		isInstance = true
	}
	return []model.Rule{&model.CaretValueRule{
		Base: model.Base{Location: loc}, Path: path,
		CaretPath: buildCaretPath(caretTok), Value: val, IsInstance: isInstance,
	}}
}

func classifyConceptOrCodeCaret(rl parser.RuleLine, toks []lexer.Token, aliases map[string]string, diags *diagnostic.Collector) []model.Rule {
	loc := rl.Loc
	var codes []string
	idx := 0
	for idx < len(toks) && toks[idx].Kind == lexer.Code {
		codes = append(codes, toks[idx].Text)
		idx++
	}

	if idx < len(toks) && toks[idx].Kind == lexer.CaretSequence {
		caretTok := toks[idx]
		idx++
		if idx < len(toks) && toks[idx].Kind == lexer.Equals {
			idx++
		}
		val, ok := parseValue(toks, &idx, aliases)
		if !ok {
			diags.Errorf(diagnostic.Syntax, loc, "expected value after code caret path")
			return nil
		}
		return []model.Rule{&model.CodeCaretValueRule{
			Base: model.Base{Location: loc}, CodePath: model.CodePath{Codes: codes},
			CaretPath: buildCaretPath(caretTok), Value: val,
		}}
	}

	var display, definition string
	if idx < len(toks) && toks[idx].Kind == lexer.Str {
		display = toks[idx].Text
		idx++
	}
	if idx < len(toks) && toks[idx].Kind == lexer.Str {
		definition = toks[idx].Text
		idx++
	}
	var hierarchy []string
	if len(codes) > 1 {
		hierarchy = codes[:len(codes)-1]
	}
	code := codes[len(codes)-1]
	return []model.Rule{&model.ConceptRule{Base: model.Base{Location: loc}, Code: code, Display: display, Definition: definition, Hierarchy: hierarchy}}
}

func classifyValueSetComponent(rl parser.RuleLine, toks []lexer.Token, idx int, aliases map[string]string) []model.Rule {
	loc := rl.Loc
	include := toks[idx].Text == "include"
	idx++

	rule := &model.ValueSetComponentRule{Base: model.Base{Location: loc}, Include: include}

	var concepts []model.ConceptRule
	for idx < len(toks) && toks[idx].Kind == lexer.Code {
		c := model.ConceptRule{Code: toks[idx].Text}
		idx++
		if idx < len(toks) && toks[idx].Kind == lexer.Str {
			c.Display = toks[idx].Text
			idx++
		}
		concepts = append(concepts, c)
	}
	rule.Concepts = concepts
	if len(concepts) > 0 {
		rule.Kind = model.VSConcept
	}

	if idx < len(toks) && toks[idx].Kind == lexer.Keyword && toks[idx].Text == "codes" {
		idx++
	}

	for idx < len(toks) && toks[idx].Kind == lexer.Keyword && toks[idx].Text == "from" {
		idx++
		switch {
		case idx < len(toks) && toks[idx].Kind == lexer.Keyword && toks[idx].Text == "system":
			idx++
			if idx < len(toks) {
				rule.FromSystem = resolveAlias(toks[idx].Text, aliases)
				idx++
			}
		case idx < len(toks) && toks[idx].Kind == lexer.Keyword && toks[idx].Text == "valueset":
			idx++
			for idx < len(toks) {
				tok := toks[idx]
				if tok.Kind == lexer.Keyword && tok.Text == "and" {
					idx++
					continue
				}
				if tok.Kind == lexer.Comma {
					idx++
					continue
				}
				if tok.Kind == lexer.Sequence || tok.Kind == lexer.Keyword {
					rule.FromValueSets = append(rule.FromValueSets, resolveAlias(tok.Text, aliases))
					idx++
					continue
				}
				break
			}
		default:
			idx++
		}
	}

	if idx < len(toks) && toks[idx].Kind == lexer.Keyword && toks[idx].Text == "where" {
		rule.Kind = model.VSFilterKind
		idx++
		for idx < len(toks) {
			prop := toks[idx].Text
			idx++
			if idx >= len(toks) {
				break
			}
			op := toks[idx].Text
			idx++
			val := ""
			if idx < len(toks) {
				val = toks[idx].Text
				idx++
			}
			rule.Filters = append(rule.Filters, model.VSFilter{Property: prop, Op: op, Value: val})
			if idx < len(toks) && toks[idx].Kind == lexer.Keyword && toks[idx].Text == "and" {
				idx++
				continue
			}
			break
		}
	}

	return []model.Rule{rule}
}

func classifyInsert(rl parser.RuleLine, toks []lexer.Token, diags *diagnostic.Collector) []model.Rule {
	loc := rl.Loc
	idx := 1 // skip "insert"
	if idx >= len(toks) || (toks[idx].Kind != lexer.Sequence && toks[idx].Kind != lexer.Keyword) {
		diags.Errorf(diagnostic.Syntax, loc, "expected rule set name after 'insert'")
		return nil
	}
	name := toks[idx].Text
	idx++

	var params []string
	if idx < len(toks) && toks[idx].Kind == lexer.LParen {
		idx++
		depth := 1
		var cur strings.Builder
		for idx < len(toks) && depth > 0 {
			tok := toks[idx]
			switch tok.Kind {
			case lexer.LParen:
				depth++
				cur.WriteString(tok.Raw)
			case lexer.RParen:
				depth--
				if depth == 0 {
					if cur.Len() > 0 {
						params = append(params, strings.TrimSpace(cur.String()))
					}
					idx++
					continue
				}
				cur.WriteString(tok.Raw)
			case lexer.Comma:
				if depth == 1 {
					params = append(params, strings.TrimSpace(cur.String()))
					cur.Reset()
				} else {
					cur.WriteString(tok.Raw)
				}
			default:
				if cur.Len() > 0 {
					cur.WriteString(" ")
				}
				cur.WriteString(tok.Raw)
			}
			idx++
		}
	}
	return []model.Rule{&model.InsertRule{Base: model.Base{Location: loc}, RuleSetName: name, Params: params}}
}
