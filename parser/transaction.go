package parser

import (
	"strings"

	"github.com/robinvdvleuten/ledger/ast"
)

// parseTransaction parses a transaction header and its postings:
//
//	DATE[=EFFECTIVE_DATE] [*|!] [(CODE)] PAYEE [; METADATA]
//	    POSTING | ; METADATA
//	    ...
//
// Metadata lines before the first posting belong to the transaction, later
// ones to the preceding posting.
func (p *Parser) parseTransaction() (*ast.Transaction, error) {
	headerStart := p.pos

	date, err := p.parseDate()
	if err != nil {
		return nil, err
	}
	txn := &ast.Transaction{Date: date}

	if p.match("=") {
		effective, err := p.parseDate()
		if err != nil {
			return nil, err
		}
		txn.EffectiveDate = &effective
	}

	if p.skipSpaces() == 0 && !p.atLineEnd() {
		return nil, p.errorf("transaction", "expected space after date but got %s", p.describe())
	}

	txn.State = p.parseClearState()
	p.skipSpaces()

	if p.peek() == '(' {
		code, err := p.parseParenText("transaction", "code")
		if err != nil {
			return nil, err
		}
		txn.Code = code
		p.skipSpaces()
	}

	end := p.lineEnd()
	header := p.src[p.pos:end]
	if semi := strings.IndexByte(header, ';'); semi >= 0 {
		txn.Payee = strings.TrimRight(header[:semi], " \t")
		p.pos += semi
		m, err := p.parseMetadata()
		if err != nil {
			return nil, err
		}
		txn.Metadata = append(txn.Metadata, m)
	} else {
		txn.Payee = strings.TrimRight(header, " \t")
		p.pos = end
	}
	p.finishLine()
	headerEnd := p.lastEnd

	for p.atIndentedLine() {
		p.skipSpaces()

		if p.peek() == ';' {
			m, err := p.parseMetadata()
			if err != nil {
				return nil, err
			}
			if n := len(txn.Postings); n > 0 {
				posting := txn.Postings[n-1].Value
				posting.Metadata = append(posting.Metadata, m)
			} else {
				txn.Metadata = append(txn.Metadata, m)
			}
			p.finishLine()
			continue
		}

		posting, err := p.parsePosting()
		if err != nil {
			return nil, err
		}
		txn.Postings = append(txn.Postings, posting)
		p.finishLine()
	}

	if len(txn.Postings) == 0 {
		return nil, p.errorAt(headerStart, headerEnd, "transaction", "transaction requires at least one posting")
	}

	return txn, nil
}

func (p *Parser) parseClearState() ast.ClearState {
	switch {
	case p.match("*"):
		return ast.Cleared
	case p.match("!"):
		return ast.Pending
	}
	return ast.Uncleared
}

// parseParenText parses "(text)" on the current line and returns text.
func (p *Parser) parseParenText(context, what string) (string, error) {
	open := p.pos
	p.advance()
	end := p.lineEnd()
	closing := strings.IndexByte(p.src[p.pos:end], ')')
	if closing < 0 {
		return "", p.errorAt(open, end, context, "unterminated "+what)
	}
	text := p.src[p.pos : p.pos+closing]
	p.pos += closing + 1
	return strings.TrimSpace(text), nil
}

// parsePosting parses one posting line after its indentation:
//
//	[*|!] ACCOUNT [SEP AMOUNT [LOT...] [@ EXPR | @@ EXPR]] [= BALANCE] [; METADATA]
//
// SEP is two spaces or a tab. Account names may contain single spaces, but a
// single space followed by a number, '(' or '=' also ends the account.
func (p *Parser) parsePosting() (ast.Tracked[*ast.Posting], error) {
	start := p.pos
	posting := &ast.Posting{}

	posting.State = p.parseClearState()
	p.skipSpaces()

	accountStart := p.pos
	for !p.atLineEnd() {
		c := p.peek()
		if c == '\t' || c == ';' || (c == ' ' && p.atAccountEnd()) {
			break
		}
		p.pos++
	}
	posting.Account = strings.TrimRight(p.src[accountStart:p.pos], " ")
	if posting.Account == "" {
		return ast.Tracked[*ast.Posting]{}, p.errorf("posting", "expected account name but got %s", p.describe())
	}
	end := accountStart + len(posting.Account)

	p.skipSpaces()
	if !p.atLineEnd() && p.peek() != ';' && p.peek() != '=' {
		amount, err := p.parsePostingAmount()
		if err != nil {
			return ast.Tracked[*ast.Posting]{}, err
		}
		posting.Amount = amount
		end = p.pos
		p.skipSpaces()
	}

	if p.match("=") {
		p.skipSpaces()
		balance, err := p.parseValueExpr()
		if err != nil {
			return ast.Tracked[*ast.Posting]{}, err
		}
		posting.Balance = &balance
		end = p.pos
		p.skipSpaces()
	}

	if p.peek() == ';' {
		m, err := p.parseMetadata()
		if err != nil {
			return ast.Tracked[*ast.Posting]{}, err
		}
		posting.Metadata = append(posting.Metadata, m)
	}

	if err := p.expectLineEnd("posting"); err != nil {
		return ast.Tracked[*ast.Posting]{}, err
	}

	return ast.Decorate(start, end, posting), nil
}

// atAccountEnd reports whether the space at the cursor ends an account name:
// it is followed by more whitespace or by something that can only start an
// amount or a balance assertion.
func (p *Parser) atAccountEnd() bool {
	next := p.peekAhead(1)
	switch {
	case next == ' ' || next == '\t' || next == '(' || next == '=' || isDigit(next):
		return true
	case next == '-':
		return isDigit(p.peekAhead(2))
	}
	return false
}

// parsePostingAmount parses the amount expression and its optional lot
// annotations and exchange.
func (p *Parser) parsePostingAmount() (*ast.PostingAmount, error) {
	amount, err := p.parseValueExpr()
	if err != nil {
		return nil, err
	}
	pa := &ast.PostingAmount{Amount: amount}

	for {
		save := p.pos
		p.skipSpaces()

		switch {
		case p.check("{"):
			if pa.Lot.Price != nil {
				return nil, p.errorf("lot", "duplicate lot price")
			}
			price, err := p.parseLotPrice()
			if err != nil {
				return nil, err
			}
			pa.Lot.Price = price

		case p.check("["):
			if pa.Lot.Date != nil {
				return nil, p.errorf("lot", "duplicate lot date")
			}
			p.advance()
			p.skipSpaces()
			date, err := p.parseDate()
			if err != nil {
				return nil, err
			}
			p.skipSpaces()
			if err := p.consume("]", "lot", "expected ']' after lot date"); err != nil {
				return nil, err
			}
			pa.Lot.Date = &date

		case p.check("("):
			if pa.Lot.Note != "" {
				return nil, p.errorf("lot", "duplicate lot note")
			}
			note, err := p.parseParenText("lot", "lot note")
			if err != nil {
				return nil, err
			}
			if note == "" {
				return nil, p.errorAt(p.pos-2, p.pos, "lot", "empty lot note")
			}
			pa.Lot.Note = note

		default:
			p.pos = save
			return p.parseExchange(pa)
		}
	}
}

func (p *Parser) parseLotPrice() (*ast.LotPrice, error) {
	total := p.match("{{")
	if !total {
		p.match("{")
	}
	p.skipSpaces()

	expr, err := p.parseValueExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()

	closing := "}"
	if total {
		closing = "}}"
	}
	if err := p.consume(closing, "lot", "expected '"+closing+"' after lot price"); err != nil {
		return nil, err
	}

	return &ast.LotPrice{Total: total, Expr: expr}, nil
}

func (p *Parser) parseExchange(pa *ast.PostingAmount) (*ast.PostingAmount, error) {
	save := p.pos
	p.skipSpaces()

	total := p.match("@@")
	if !total && !p.match("@") {
		p.pos = save
		return pa, nil
	}
	p.skipSpaces()

	expr, err := p.parseValueExpr()
	if err != nil {
		return nil, err
	}
	pa.Exchange = &ast.Exchange{Total: total, Expr: expr}

	return pa, nil
}
