// Package ruleset owns two closely related responsibilities that both
// need the same "tokens -> model" machinery: classifying a parsed rule
// line into its model.Rule variant (SPEC_FULL.md §4.2), and expanding
// parameterized rule-set inserts by re-running that same classification
// over a substituted, re-lexed body (§4.3).
package ruleset

import (
	"strconv"
	"strings"

	"github.com/oxhq/fshc/internal/lexer"
	"github.com/oxhq/fshc/internal/model"
)

// buildPath consumes a dotted element path starting at tokens[*idx],
// including any bracketed index/slice suffixes and path segments split
// across a bracket (e.g. `coding[0].system`), advancing *idx past it.
func buildPath(tokens []lexer.Token, idx *int) model.Path {
	var steps []model.Step
	first := true
	for *idx < len(tokens) {
		tok := tokens[*idx]
		if tok.Kind != lexer.Sequence {
			break
		}
		text := tok.Text
		if !first {
			text = strings.TrimPrefix(text, ".")
		}
		first = false
		*idx++

		parts := strings.Split(text, ".")
		for i, name := range parts {
			step := model.Step{Name: name}
			isLast := i == len(parts)-1
			if isLast && *idx < len(tokens) && tokens[*idx].Kind == lexer.LBracket {
				*idx++
				step = applyIndexToken(step, tokens, idx)
				if *idx < len(tokens) && tokens[*idx].Kind == lexer.RBracket {
					*idx++
				}
			}
			steps = append(steps, step)
		}

		if *idx < len(tokens) && tokens[*idx].Kind == lexer.Sequence && strings.HasPrefix(tokens[*idx].Text, ".") {
			continue
		}
		break
	}
	return model.Path{Steps: steps}
}

func applyIndexToken(step model.Step, tokens []lexer.Token, idx *int) model.Step {
	if *idx >= len(tokens) {
		return step
	}
	tok := tokens[*idx]
	switch tok.Kind {
	case lexer.Number:
		n, _ := strconv.Atoi(tok.Text)
		step.Index = model.NumericIndex
		step.Numeric = n
		*idx++
	case lexer.Plus:
		step.Index = model.SoftPlus
		*idx++
	case lexer.Equals:
		step.Index = model.SoftEquals
		*idx++
	case lexer.Sequence, lexer.Keyword:
		step.Index = model.SliceIndex
		step.SliceName = tok.Text
		*idx++
	}
	return step
}

func buildCaretPath(tok lexer.Token) model.CaretPath {
	return model.CaretPath{Keys: strings.Split(tok.Text, ".")}
}

func adjacentTokens(a, b lexer.Token) bool {
	return a.End.Line == b.Start.Line && a.End.Col == b.Start.Col
}

func resolveAlias(name string, aliases map[string]string) string {
	if aliases == nil {
		return name
	}
	if target, ok := aliases[name]; ok {
		return target
	}
	return name
}
