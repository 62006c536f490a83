package parser

import (
	"strconv"
	"strings"

	"github.com/robinvdvleuten/ledger/ast"
)

// parseComment parses a top-level comment line.
func (p *Parser) parseComment() (*ast.Comment, error) {
	prefix := p.advance()
	text := p.restOfLine()
	p.finishLine()
	return &ast.Comment{Prefix: prefix, Text: strings.TrimRight(text, " \t")}, nil
}

// parseAccountDeclaration parses:
//
//	account NAME
//	    ; metadata
//	    alias NAME
//	    note TEXT
func (p *Parser) parseAccountDeclaration() (*ast.AccountDeclaration, error) {
	name, err := p.parseDeclarationName("account", "account declaration")
	if err != nil {
		return nil, err
	}

	details, err := p.parseDetails("account declaration", false)
	if err != nil {
		return nil, err
	}

	return &ast.AccountDeclaration{Name: name, Details: details}, nil
}

// parseCommodityDeclaration parses:
//
//	commodity NAME
//	    ; metadata
//	    alias NAME
//	    note TEXT
//	    format AMOUNT
func (p *Parser) parseCommodityDeclaration() (*ast.CommodityDeclaration, error) {
	name, err := p.parseDeclarationName("commodity", "commodity declaration")
	if err != nil {
		return nil, err
	}

	details, err := p.parseDetails("commodity declaration", true)
	if err != nil {
		return nil, err
	}

	return &ast.CommodityDeclaration{Name: name, Details: details}, nil
}

func (p *Parser) parseDeclarationName(keyword, context string) (string, error) {
	p.match(keyword)
	if p.skipSpaces() == 0 || p.atLineEnd() {
		return "", p.errorf(context, "expected name after '%s'", keyword)
	}
	name := strings.TrimRight(p.restOfLine(), " \t")
	p.finishLine()
	return name, nil
}

func (p *Parser) parseDetails(context string, allowFormat bool) ([]ast.Detail, error) {
	var details []ast.Detail

	for p.atIndentedLine() {
		p.skipSpaces()

		switch {
		case p.peek() == ';':
			m, err := p.parseMetadata()
			if err != nil {
				return nil, err
			}
			details = append(details, &ast.MetadataDetail{Metadata: []ast.Metadata{m}})

		case p.checkKeyword("alias"):
			p.match("alias")
			p.skipSpaces()
			name := strings.TrimRight(p.restOfLine(), " \t")
			if name == "" {
				return nil, p.errorf(context, "expected alias name")
			}
			details = append(details, &ast.AliasDetail{Name: name})

		case p.checkKeyword("note"):
			p.match("note")
			p.skipSpaces()
			details = append(details, &ast.NoteDetail{Text: strings.TrimRight(p.restOfLine(), " \t")})

		case allowFormat && p.checkKeyword("format"):
			p.match("format")
			p.skipSpaces()
			amount, err := p.parseAmount()
			if err != nil {
				return nil, err
			}
			if err := p.expectLineEnd(context); err != nil {
				return nil, err
			}
			details = append(details, &ast.FormatDetail{Amount: amount})

		default:
			word := p.src[p.pos:p.lineEnd()]
			if i := strings.IndexAny(word, " \t"); i >= 0 {
				word = word[:i]
			}
			return nil, p.errorAt(p.pos, p.pos+len(word), context, "unknown detail "+strconv.Quote(word))
		}

		p.finishLine()
	}

	return details, nil
}

// parseApplyTag parses `apply tag KEY` or `apply tag KEY: VALUE`.
func (p *Parser) parseApplyTag() (*ast.ApplyTag, error) {
	p.match("apply")
	p.skipSpaces()
	if !p.checkKeyword("tag") {
		return nil, p.errorf("apply tag", "expected 'tag' after 'apply'")
	}
	p.match("tag")
	if p.skipSpaces() == 0 || p.atLineEnd() {
		return nil, p.errorf("apply tag", "expected tag name")
	}

	start := p.pos
	rest := strings.TrimRight(p.restOfLine(), " \t")
	key, value, _ := strings.Cut(rest, ":")
	key = strings.TrimSpace(key)
	if !isSingleWord(key) {
		return nil, p.errorAt(start, start+len(rest), "apply tag", "tag name must be a single word")
	}
	p.finishLine()

	return &ast.ApplyTag{Key: key, Value: strings.TrimSpace(value)}, nil
}

// parseEndApplyTag parses `end apply tag`.
func (p *Parser) parseEndApplyTag() (*ast.EndApplyTag, error) {
	p.match("end")
	p.skipSpaces()
	if !p.checkKeyword("apply") {
		return nil, p.errorf("end apply tag", "expected 'apply' after 'end'")
	}
	p.match("apply")
	p.skipSpaces()
	if !p.checkKeyword("tag") {
		return nil, p.errorf("end apply tag", "expected 'tag' after 'end apply'")
	}
	p.match("tag")
	if err := p.expectLineEnd("end apply tag"); err != nil {
		return nil, err
	}
	p.finishLine()

	return &ast.EndApplyTag{}, nil
}

// parseInclude parses `include PATH`. The path may be quoted.
func (p *Parser) parseInclude() (*ast.Include, error) {
	p.match("include")
	p.skipSpaces()
	path := strings.TrimRight(p.restOfLine(), " \t")
	p.finishLine()

	return &ast.Include{Path: unquote(path)}, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if unquoted, err := strconv.Unquote(s); err == nil {
			return unquoted
		}
		return s[1 : len(s)-1]
	}
	return s
}
