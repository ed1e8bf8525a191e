package ocd

import (
	"strings"
)

// KeyField is one (name, value) pair of a natural key.
type KeyField struct {
	Name  string
	Value string
}

// NaturalKey is the ordered tuple of fields that defines real-world identity
// for one entity type. Two records of the same type with equal keys are the
// same entity. Field order is fixed per type so that keys compare as values;
// it carries no ranking.
type NaturalKey []KeyField

// String renders the key in a canonical form usable as a map key.
func (k NaturalKey) String() string {
	var b strings.Builder
	for i, f := range k {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	return b.String()
}

// Equal reports whether two keys have identical fields in identical order.
func (k NaturalKey) Equal(other NaturalKey) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// Get returns the value of the named field, or empty string if absent.
func (k NaturalKey) Get(name string) string {
	for _, f := range k {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}
