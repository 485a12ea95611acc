package coltable

import (
	"fmt"
	"sort"
)

// Meta is an optional bag of side-channel context attached to a store
// operation: the originating mapped type, the column families involved, and a
// postfix for federated table routing. Stores that have no use for it ignore
// it; a nil *Meta is always valid.
type Meta struct {
	// OriginType is the name of the mapped type the operation came from.
	OriginType string
	// Families are the column families the operation touches.
	Families map[string]struct{}
	// TablePostfix is appended to the table name by federated backends.
	TablePostfix string
	postfixSet   bool
}

// NewMeta returns a Meta for the given originating type.
func NewMeta(originType string) *Meta {
	return &Meta{
		OriginType: originType,
		Families:   make(map[string]struct{}),
	}
}

// WithTablePostfix sets the federated-table postfix. An empty postfix is a
// valid, explicit setting and participates in merge checking.
func (m *Meta) WithTablePostfix(postfix string) *Meta {
	m.TablePostfix = postfix
	m.postfixSet = true
	return m
}

// AddFamily records a column family as involved in the operation.
func (m *Meta) AddFamily(family string) {
	if m.Families == nil {
		m.Families = make(map[string]struct{})
	}
	m.Families[family] = struct{}{}
}

// FamilyNames returns the involved families in sorted order.
func (m *Meta) FamilyNames() []string {
	names := make([]string, 0, len(m.Families))
	for f := range m.Families {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// Merge folds other into m. Merging is a union: families accumulate, while
// scalar fields must agree wherever both sides carry a value. Disagreement is
// a programming error and fails the merge.
func (m *Meta) Merge(other *Meta) error {
	if other == nil {
		return nil
	}
	if m.OriginType == "" {
		m.OriginType = other.OriginType
	} else if other.OriginType != "" && other.OriginType != m.OriginType {
		return fmt.Errorf("meta merge: conflicting origin types %q and %q", m.OriginType, other.OriginType)
	}
	if !m.postfixSet {
		m.TablePostfix = other.TablePostfix
		m.postfixSet = other.postfixSet
	} else if other.postfixSet && other.TablePostfix != m.TablePostfix {
		return fmt.Errorf("meta merge: conflicting table postfixes %q and %q", m.TablePostfix, other.TablePostfix)
	}
	for f := range other.Families {
		m.AddFamily(f)
	}
	return nil
}
