package ast

import "time"

// Date represents a calendar date. Ledger files write dates either as
// 2024/1/31 or as 2024-01-31; both read into the same value.
type Date struct {
	time.Time
}

// NewDate returns the date for the given calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// String formats the date the canonical way, e.g. 2024/01/31.
func (d Date) String() string {
	return d.Format("2006/01/02")
}

// Equal compares calendar days.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

// IsZero reports whether d is nil or the zero time. Optional dates are held
// as *Date, so this is safe to call on a nil pointer.
func (d *Date) IsZero() bool {
	return d == nil || d.Time.IsZero()
}
