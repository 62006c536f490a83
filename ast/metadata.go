package ast

import "strings"

// Metadata is one item of a `;` line attached to a transaction, posting or
// declaration. A single line may carry several items.
//
//	; :trip:food:          -> WordTags
//	; payee: Migros        -> KeyValue
//	; rate:: (1.05 EUR)    -> TypedKeyValue
//	; bought at the kiosk  -> MetaComment
type Metadata interface {
	String() string
	metadata()
}

// WordTags is a colon delimited list of tags.
type WordTags struct {
	Tags []string
}

func (m *WordTags) metadata() {}

func (m *WordTags) String() string {
	return ":" + strings.Join(m.Tags, ":") + ":"
}

// KeyValue is a `key: value` pair with a free text value.
type KeyValue struct {
	Key   string
	Value string
}

func (m *KeyValue) metadata() {}

func (m *KeyValue) String() string {
	if m.Value == "" {
		return m.Key + ":"
	}
	return m.Key + ": " + m.Value
}

// TypedKeyValue is a `key:: expr` pair whose value is a value expression.
type TypedKeyValue struct {
	Key   string
	Value Tracked[Expr]
}

func (m *TypedKeyValue) metadata() {}

func (m *TypedKeyValue) String() string {
	return m.Key + ":: " + m.Value.Value.String()
}

// MetaComment is free text that is not interpreted.
type MetaComment struct {
	Text string
}

func (m *MetaComment) metadata() {}

func (m *MetaComment) String() string {
	return m.Text
}

// MetadataEqual compares two metadata items ignoring spans.
func MetadataEqual(a, b Metadata) bool {
	switch x := a.(type) {
	case *WordTags:
		y, ok := b.(*WordTags)
		if !ok || len(x.Tags) != len(y.Tags) {
			return false
		}
		for i := range x.Tags {
			if x.Tags[i] != y.Tags[i] {
				return false
			}
		}
		return true
	case *KeyValue:
		y, ok := b.(*KeyValue)
		return ok && *x == *y
	case *TypedKeyValue:
		y, ok := b.(*TypedKeyValue)
		return ok && x.Key == y.Key && ExprEqual(x.Value.Value, y.Value.Value)
	case *MetaComment:
		y, ok := b.(*MetaComment)
		return ok && x.Text == y.Text
	}
	return false
}
