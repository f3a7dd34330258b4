package ruleset

import (
	"math"
	"strconv"
	"strings"

	"github.com/oxhq/fshc/internal/lexer"
	"github.com/oxhq/fshc/internal/model"
)

// parseValue reads one Value literal starting at tokens[*idx], advancing
// *idx past it (SPEC_FULL.md §3 "Value types").
func parseValue(tokens []lexer.Token, idx *int, aliases map[string]string) (model.Value, bool) {
	if *idx >= len(tokens) {
		return nil, false
	}
	tok := tokens[*idx]
	switch tok.Kind {
	case lexer.Str:
		*idx++
		return model.String(tok.Text), true
	case lexer.Code:
		return parseCodeValue(tokens, idx, ""), true
	case lexer.Sequence:
		switch tok.Text {
		case "true":
			*idx++
			return model.Boolean(true), true
		case "false":
			*idx++
			return model.Boolean(false), true
		}
		if *idx+1 < len(tokens) && tokens[*idx+1].Kind == lexer.Code {
			system := resolveAlias(tok.Text, aliases)
			*idx++
			return parseCodeValue(tokens, idx, system), true
		}
		name := resolveAlias(tok.Text, aliases)
		*idx++
		return model.ResourceRef{EntityName: name}, true
	case lexer.Number:
		return parseNumberLikeValue(tokens, idx), true
	case lexer.Reference:
		return parseReferenceValue(tokens, idx, aliases), true
	case lexer.CanonicalTok:
		return parseCanonicalValue(tokens, idx, aliases), true
	}
	return nil, false
}

func parseCodeValue(tokens []lexer.Token, idx *int, system string) model.Code {
	tok := tokens[*idx]
	code := model.Code{Value: tok.Text, System: system}
	*idx++
	if *idx < len(tokens) && tokens[*idx].Kind == lexer.Str {
		code.Display = tokens[*idx].Text
		*idx++
	}
	return code
}

// parseNumberLikeValue disambiguates a bare NUMBER token among three
// forms: a date/dateTime literal (a contiguous run of Number tokens, e.g.
// `2020-01-01`), a Quantity (Number immediately followed by a unit
// string), or a plain Decimal/Integer.
func parseNumberLikeValue(tokens []lexer.Token, idx *int) model.Value {
	start := *idx
	text := tokens[*idx].Text
	*idx++
	for *idx < len(tokens) && tokens[*idx].Kind == lexer.Number && adjacentTokens(tokens[*idx-1], tokens[*idx]) {
		text += tokens[*idx].Text
		*idx++
	}
	if *idx > start+1 {
		return model.DateTime(text)
	}
	if *idx < len(tokens) && tokens[*idx].Kind == lexer.Str {
		unit := tokens[*idx].Text
		*idx++
		f, _ := strconv.ParseFloat(text, 64)
		return model.Quantity{Value: f, Unit: unit}
	}
	if !strings.ContainsAny(text, ".eE") {
		n, _ := strconv.ParseInt(text, 10, 64)
		return model.Integer(n)
	}
	// A literal with `.` or an exponent (e.g. `1e2`) still scales to a
	// whole number often enough (SPEC_FULL.md §8) to check before
	// committing to Decimal.
	f, _ := strconv.ParseFloat(text, 64)
	if f == math.Trunc(f) {
		return model.Integer(int64(f))
	}
	return model.Decimal(f)
}

func parseReferenceValue(tokens []lexer.Token, idx *int, aliases map[string]string) model.Value {
	*idx++ // consume "Reference"
	if *idx < len(tokens) && tokens[*idx].Kind == lexer.LParen {
		*idx++
	}
	name := ""
	if *idx < len(tokens) && (tokens[*idx].Kind == lexer.Sequence || tokens[*idx].Kind == lexer.Keyword) {
		name = resolveAlias(tokens[*idx].Text, aliases)
		*idx++
	}
	for *idx < len(tokens) && tokens[*idx].Kind != lexer.RParen {
		*idx++
	}
	if *idx < len(tokens) && tokens[*idx].Kind == lexer.RParen {
		*idx++
	}
	ref := model.Reference{EntityName: name}
	if *idx < len(tokens) && tokens[*idx].Kind == lexer.Str {
		ref.Display = tokens[*idx].Text
		*idx++
	}
	return ref
}

func parseCanonicalValue(tokens []lexer.Token, idx *int, aliases map[string]string) model.Value {
	*idx++ // consume "Canonical"
	if *idx < len(tokens) && tokens[*idx].Kind == lexer.LParen {
		*idx++
	}
	name := ""
	if *idx < len(tokens) && (tokens[*idx].Kind == lexer.Sequence || tokens[*idx].Kind == lexer.Keyword) {
		name = resolveAlias(tokens[*idx].Text, aliases)
		*idx++
	}
	for *idx < len(tokens) && tokens[*idx].Kind != lexer.RParen {
		*idx++
	}
	if *idx < len(tokens) && tokens[*idx].Kind == lexer.RParen {
		*idx++
	}
	return model.Canonical{EntityName: name}
}
