// Package ast defines the syntax tree of ledger files.
//
// A ledger file is a sequence of entries separated by blank lines:
//
//	; opening balances
//	account Assets:Bank
//	    alias bank
//
//	2024/01/01 * Opening
//	    Assets:Bank        1,000.00 CHF
//	    Equity:Opening
//
// Every entry, posting and value expression produced by the parser carries
// the byte span it was read from, see Tracked.
package ast

// Entry is one top-level item of a ledger file. It is implemented by
// *Comment, *AccountDeclaration, *CommodityDeclaration, *ApplyTag,
// *EndApplyTag, *Include and *Transaction.
type Entry interface {
	// Kind names the entry for logs and debugging output.
	Kind() string
	entry()
}

var (
	_ Entry = &Comment{}
	_ Entry = &AccountDeclaration{}
	_ Entry = &CommodityDeclaration{}
	_ Entry = &ApplyTag{}
	_ Entry = &EndApplyTag{}
	_ Entry = &Include{}
	_ Entry = &Transaction{}
)

// Comment is a top-level comment line. Prefix is the character the line
// started with, one of `; # % | *`.
type Comment struct {
	Prefix byte
	Text   string
}

func (*Comment) entry()       {}
func (*Comment) Kind() string { return "comment" }

// Detail is a sub-directive line of an account or commodity declaration.
type Detail interface {
	detail()
}

// AliasDetail registers an alternative name.
type AliasDetail struct {
	Name string
}

// NoteDetail attaches a free text note.
type NoteDetail struct {
	Text string
}

// FormatDetail sets the display format of a commodity.
type FormatDetail struct {
	Amount *AmountLit
}

// MetadataDetail is a `;` line inside a declaration.
type MetadataDetail struct {
	Metadata []Metadata
}

func (*AliasDetail) detail()    {}
func (*NoteDetail) detail()     {}
func (*FormatDetail) detail()   {}
func (*MetadataDetail) detail() {}

// AccountDeclaration declares an account and its aliases.
//
//	account Assets:Bank:Checking
//	    ; :main:
//	    alias checking
//	    note Salary goes here
type AccountDeclaration struct {
	Name    string
	Details []Detail
}

func (*AccountDeclaration) entry()       {}
func (*AccountDeclaration) Kind() string { return "account" }

// Aliases returns the declared alias names in order.
func (a *AccountDeclaration) Aliases() []string {
	return aliases(a.Details)
}

// CommodityDeclaration declares a commodity.
//
//	commodity CHF
//	    alias SFr.
//	    format 1,000.00 CHF
type CommodityDeclaration struct {
	Name    string
	Details []Detail
}

func (*CommodityDeclaration) entry()       {}
func (*CommodityDeclaration) Kind() string { return "commodity" }

// Aliases returns the declared alias names in order.
func (c *CommodityDeclaration) Aliases() []string {
	return aliases(c.Details)
}

func aliases(details []Detail) []string {
	var out []string
	for _, d := range details {
		if a, ok := d.(*AliasDetail); ok {
			out = append(out, a.Name)
		}
	}
	return out
}

// ApplyTag starts a block whose transactions all receive the tag.
//
//	apply tag trip
//	apply tag location: Zurich
type ApplyTag struct {
	Key   string
	Value string
}

func (*ApplyTag) entry()       {}
func (*ApplyTag) Kind() string { return "apply tag" }

// EndApplyTag closes the innermost apply tag block.
type EndApplyTag struct{}

func (*EndApplyTag) entry()       {}
func (*EndApplyTag) Kind() string { return "end apply tag" }

// Include pulls another ledger file in at this position. Relative paths are
// relative to the directory of the including file.
type Include struct {
	Path string
}

func (*Include) entry()       {}
func (*Include) Kind() string { return "include" }
