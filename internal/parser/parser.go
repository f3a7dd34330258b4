package parser

import (
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/lexer"
)

var entityKeywords = map[string]bool{
	"Profile": true, "Extension": true, "Logical": true, "Resource": true,
	"Instance": true, "Invariant": true, "ValueSet": true, "CodeSystem": true,
	"RuleSet": true, "Mapping": true, "Alias": true,
}

var metadataKeywords = map[string]bool{
	"Parent": true, "Id": true, "Title": true, "Description": true,
	"Expression": true, "XPath": true, "Severity": true, "InstanceOf": true,
	"Usage": true, "Source": true, "Target": true, "Mixins": true,
}

// Parser consumes one file's token stream. It never panics on malformed
// input: every failure is reported to diags and the parser resynchronizes
// at the next top-level entity keyword (SPEC_FULL.md §4.1, §7).
type Parser struct {
	file   string
	tokens []lexer.Token
	pos    int
	diags  *diagnostic.Collector
}

// New builds a Parser over a token stream already produced by the lexer.
func New(file string, tokens []lexer.Token, diags *diagnostic.Collector) *Parser {
	if len(tokens) == 0 {
		tokens = []lexer.Token{{Kind: lexer.EOF}}
	}
	return &Parser{file: file, tokens: tokens, diags: diags}
}

func (p *Parser) loc(tok lexer.Token) diagnostic.Location {
	return diagnostic.Location{
		File: p.file, StartLine: tok.Start.Line, StartCol: tok.Start.Col,
		EndLine: tok.End.Line, EndCol: tok.End.Col,
	}
}

func (p *Parser) peek() lexer.Token { return p.tokens[p.pos] }

func (p *Parser) peekAt(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) atEOF() bool { return p.peek().Kind == lexer.EOF }

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if !p.atEOF() {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind lexer.Kind, msg string) bool {
	if p.peek().Kind == kind {
		p.advance()
		return true
	}
	tok := p.peek()
	p.diags.Errorf(diagnostic.Syntax, p.loc(tok), "%s, got %q", msg, tok.Text)
	return false
}

// recoverToEntity skips tokens until the next top-level entity keyword,
// implementing the "recovers at the next top-level entity keyword" policy
// (SPEC_FULL.md §7).
func (p *Parser) recoverToEntity() {
	for !p.atEOF() {
		tok := p.peek()
		if tok.Kind == lexer.Keyword && entityKeywords[tok.Text] {
			return
		}
		p.advance()
	}
}

// Parse consumes the whole token stream into a Tree. An entity whose
// header yields no name is reported and left out of the tree.
func (p *Parser) Parse() *Tree {
	tree := &Tree{}
	for !p.atEOF() {
		tok := p.peek()
		if tok.Kind != lexer.Keyword || !entityKeywords[tok.Text] {
			p.diags.Errorf(diagnostic.Syntax, p.loc(tok), "unexpected token %q at top level", tok.Text)
			p.advance()
			continue
		}
		if tok.Text == "Alias" {
			if alias, ok := p.parseAlias(); ok {
				tree.Aliases = append(tree.Aliases, alias)
			}
			continue
		}
		if entity := p.parseEntity(); entity.Name != "" {
			tree.Entities = append(tree.Entities, entity)
		}
	}
	return tree
}

func (p *Parser) parseAlias() (AliasEntity, bool) {
	start := p.peek()
	p.advance() // consume "Alias"
	if !p.expect(lexer.Colon, "expected ':' after Alias") {
		p.recoverToEntity()
		return AliasEntity{}, false
	}

	nameTok := p.peek()
	if nameTok.Kind != lexer.Sequence {
		p.diags.Errorf(diagnostic.Syntax, p.loc(nameTok), "expected alias name, got %q", nameTok.Text)
		p.recoverToEntity()
		return AliasEntity{}, false
	}
	p.advance()

	eqTok := p.peek()
	if eqTok.Kind != lexer.Equals {
		p.diags.Errorf(diagnostic.Syntax, p.loc(eqTok), "expected '=' in alias declaration, got %q", eqTok.Text)
		p.recoverToEntity()
		return AliasEntity{}, false
	}
	if adjacent(nameTok.End, eqTok.Start) || adjacent(eqTok.End, p.peekAt(1).Start) {
		p.diags.Errorf(diagnostic.Syntax, p.loc(eqTok), "missing space around '=' in alias declaration")
	}
	p.advance()

	targetTok := p.peek()
	if targetTok.Kind != lexer.Sequence && targetTok.Kind != lexer.Str {
		p.diags.Errorf(diagnostic.Syntax, p.loc(targetTok), "expected alias target, got %q", targetTok.Text)
		p.recoverToEntity()
		return AliasEntity{}, false
	}
	p.advance()

	return AliasEntity{Name: nameTok.Text, Target: targetTok.Text, Loc: p.loc(start)}, true
}

func (p *Parser) parseEntity() Entity {
	header := p.peek()
	entity := Entity{Keyword: header.Text, Loc: p.loc(header)}
	p.advance()

	if !p.expect(lexer.Colon, "expected ':' after entity keyword") {
		p.recoverToEntity()
		return entity
	}

	nameTok := p.peek()
	if nameTok.Kind == lexer.Sequence || nameTok.Kind == lexer.Keyword {
		entity.Name = nameTok.Text
		p.advance()
	} else {
		p.diags.Errorf(diagnostic.Syntax, p.loc(nameTok), "expected entity name after %s:", entity.Keyword)
	}

	if entity.Keyword == "RuleSet" && p.peek().Kind == lexer.LParen {
		p.advance()
		for p.peek().Kind != lexer.RParen && !p.atEOF() {
			tok := p.peek()
			switch tok.Kind {
			case lexer.Sequence, lexer.Keyword:
				entity.Params = append(entity.Params, tok.Text)
				p.advance()
			case lexer.Comma:
				p.advance()
			default:
				p.diags.Errorf(diagnostic.Syntax, p.loc(tok), "unexpected token %q in rule set parameter list", tok.Text)
				p.advance()
			}
		}
		p.expect(lexer.RParen, "expected ')' to close rule set parameter list")
	}

	for !p.atEOF() {
		tok := p.peek()
		switch {
		case tok.Kind == lexer.Keyword && entityKeywords[tok.Text]:
			return entity
		case tok.Kind == lexer.Keyword && metadataKeywords[tok.Text]:
			entity.Metadata = append(entity.Metadata, p.parseMetadataLine())
		case tok.Kind == lexer.Star:
			entity.Rules = append(entity.Rules, p.parseRuleLine())
		default:
			p.diags.Errorf(diagnostic.Syntax, p.loc(tok), "unexpected token %q in entity body", tok.Text)
			p.advance()
		}
	}
	return entity
}

func (p *Parser) parseMetadataLine() MetadataLine {
	keyTok := p.advance()
	if !p.expect(lexer.Colon, "expected ':' after metadata key") {
		return MetadataLine{Key: keyTok.Text, Loc: p.loc(keyTok)}
	}

	var values []lexer.Token
	for !p.atEOF() {
		tok := p.peek()
		if tok.Kind == lexer.Star {
			break
		}
		if tok.Kind == lexer.Keyword && (entityKeywords[tok.Text] || metadataKeywords[tok.Text]) {
			break
		}
		values = append(values, p.advance())
	}
	return MetadataLine{Key: keyTok.Text, Values: values, Loc: p.loc(keyTok)}
}

// ParseRuleLines parses a bare sequence of starred rule lines with no
// surrounding entity header, used by the rule-set expander to re-parse a
// parameter-substituted rule-set body (SPEC_FULL.md §4.3).
func ParseRuleLines(file string, tokens []lexer.Token, diags *diagnostic.Collector) []RuleLine {
	p := New(file, tokens, diags)
	var lines []RuleLine
	for !p.atEOF() {
		tok := p.peek()
		switch {
		case tok.Kind == lexer.Star:
			lines = append(lines, p.parseRuleLine())
		default:
			p.diags.Errorf(diagnostic.Syntax, p.loc(tok), "unexpected token %q in rule set body", tok.Text)
			p.advance()
		}
	}
	return lines
}

func (p *Parser) parseRuleLine() RuleLine {
	start := p.peek()
	depth := 0
	for p.peek().Kind == lexer.Star {
		depth++
		p.advance()
	}

	var toks []lexer.Token
	for !p.atEOF() {
		tok := p.peek()
		if tok.Kind == lexer.Star {
			break
		}
		if tok.Kind == lexer.Keyword && entityKeywords[tok.Text] {
			break
		}
		toks = append(toks, p.advance())
	}

	rl := RuleLine{Depth: depth, Tokens: toks, Loc: p.loc(start)}
	p.checkEqualsSpacing(rl)
	p.checkArrowSpacing(rl)
	return rl
}

// checkEqualsSpacing implements the targeted "missing space around '='"
// diagnostic for assignment and caret-value rules (SPEC_FULL.md §4.1, §7).
func (p *Parser) checkEqualsSpacing(rl RuleLine) {
	for i, tok := range rl.Tokens {
		if tok.Kind != lexer.Equals {
			continue
		}
		if i == 0 || i == len(rl.Tokens)-1 {
			continue
		}
		before, after := rl.Tokens[i-1], rl.Tokens[i+1]
		if adjacent(before.End, tok.Start) || adjacent(tok.End, after.Start) {
			p.diags.Errorf(diagnostic.Syntax, p.loc(tok), "missing space around '=' in rule")
		}
	}
}

// checkArrowSpacing implements the targeted "missing space around '->'"
// diagnostic for mapping rules (scenario 6 in SPEC_FULL.md §8).
func (p *Parser) checkArrowSpacing(rl RuleLine) {
	for i, tok := range rl.Tokens {
		if tok.Kind != lexer.Arrow {
			continue
		}
		if i == 0 || i == len(rl.Tokens)-1 {
			continue
		}
		before, after := rl.Tokens[i-1], rl.Tokens[i+1]
		if adjacent(before.End, tok.Start) || adjacent(tok.End, after.Start) {
			p.diags.Errorf(diagnostic.Syntax, p.loc(tok), "missing space around '->' in mapping rule")
		}
	}
}

func adjacent(a, b lexer.Position) bool {
	return a.Line == b.Line && a.Col == b.Col
}
