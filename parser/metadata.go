package parser

import (
	"strings"

	"github.com/robinvdvleuten/ledger/ast"
)

// parseMetadata parses the text after a ';' up to the end of the line.
//
//	; :tag1:tag2:
//	; key: value
//	; key:: (1.5 EUR)
//	; anything else
//
// Free text that contains ':' but is neither form is kept as a comment and
// recorded as a warning.
func (p *Parser) parseMetadata() (ast.Metadata, error) {
	if err := p.consume(";", "metadata", "expected ';'"); err != nil {
		return nil, err
	}
	p.skipSpaces()

	start := p.pos
	end := p.lineEnd()
	text := strings.TrimRight(p.src[start:end], " \t")

	if tags, ok := wordTags(text); ok {
		p.pos = end
		return &ast.WordTags{Tags: tags}, nil
	}

	if colon := firstUnescapedColon(text); colon > 0 {
		key := text[:colon]
		if isSingleWord(key) {
			if strings.HasPrefix(text[colon+1:], ":") {
				p.pos = start + colon + 2
				p.skipSpaces()
				value, err := p.parseValueExpr()
				if err != nil {
					return nil, err
				}
				if err := p.expectLineEnd("metadata"); err != nil {
					return nil, err
				}
				return &ast.TypedKeyValue{Key: key, Value: value}, nil
			}
			p.pos = end
			return &ast.KeyValue{Key: key, Value: strings.TrimSpace(text[colon+1:])}, nil
		}
	}

	if strings.Contains(text, ":") {
		p.warn(start, start+len(text), "metadata containing ':' is kept as a comment")
	}
	p.pos = end
	return &ast.MetaComment{Text: text}, nil
}

// wordTags recognizes ":a:b:" with at least one non-empty tag and no spaces.
func wordTags(text string) ([]string, bool) {
	if len(text) < 3 || text[0] != ':' || text[len(text)-1] != ':' || strings.ContainsAny(text, " \t") {
		return nil, false
	}
	tags := strings.Split(text[1:len(text)-1], ":")
	for _, tag := range tags {
		if tag == "" {
			return nil, false
		}
	}
	return tags, true
}

func firstUnescapedColon(text string) int {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case ':':
			return i
		}
	}
	return -1
}

func isSingleWord(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t")
}
