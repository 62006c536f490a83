package ledger

import (
	"github.com/robinvdvleuten/ledger/intern"
)

// balanceDelta stages the running-balance changes of one transaction.
// Nothing reaches the ledger until apply is called, so a transaction that
// fails half way leaves every balance as it was.
type balanceDelta struct {
	base   map[intern.Account]Amount
	staged map[intern.Account]Amount
	// order keeps the accounts in first-touch order for apply.
	order []intern.Account
}

func newBalanceDelta(base map[intern.Account]Amount) *balanceDelta {
	return &balanceDelta{
		base:   base,
		staged: make(map[intern.Account]Amount),
	}
}

// get returns the staged balance of account, falling back to the ledger.
func (d *balanceDelta) get(account intern.Account) Amount {
	if a, ok := d.staged[account]; ok {
		return a
	}
	return d.base[account]
}

func (d *balanceDelta) add(account intern.Account, amount Amount) {
	d.set(account, d.get(account).Add(amount))
}

func (d *balanceDelta) set(account intern.Account, amount Amount) {
	if _, ok := d.staged[account]; !ok {
		d.order = append(d.order, account)
	}
	d.staged[account] = amount
}

func (d *balanceDelta) apply() {
	for _, account := range d.order {
		d.base[account] = d.staged[account]
	}
}
