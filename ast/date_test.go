package ast

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestDate_IsZero(t *testing.T) {
	var missing *Date
	assert.True(t, missing.IsZero())
	assert.True(t, (&Date{}).IsZero())

	d := NewDate(2024, time.January, 31)
	assert.False(t, d.IsZero())
	assert.Equal(t, "2024/01/31", d.String())
}
