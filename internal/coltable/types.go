package coltable

// FamilyData maps qualifiers to their raw byte values within one column family.
type FamilyData map[string][]byte

// Copy returns a deep copy of the family data.
func (f FamilyData) Copy() FamilyData {
	out := make(FamilyData, len(f))
	for q, v := range f {
		b := make([]byte, len(v))
		copy(b, v)
		out[q] = b
	}
	return out
}

// Row defines a row of data in coltable:
//
// Example:
//
//	Row{
//	  Key: "row1",
//	  Columns: map[string]FamilyData{
//	    "family1": {
//	      "qualifier1": []byte("value1"),
//	      "qualifier2": []byte("value2"),
//	    },
//	    "family2": {
//	      "qualifier1": []byte("value3"),
//	    },
//	  },
//	}
//
// This represents a row with key "row1" containing two families: "family1" and
// "family2", each with their respective qualifiers and values.
type Row struct {
	Key     string
	Columns map[string]FamilyData // family -> qualifier -> value
}

// ColumnChanges holds upserts for a mutation: family -> qualifier -> new value.
type ColumnChanges map[string]FamilyData

// ColumnRemovals holds removals for a mutation: family -> set of qualifiers.
type ColumnRemovals map[string]map[string]struct{}

// ColumnIncrements holds additive deltas for a mutation:
// family -> qualifier -> delta. Counters are stored as fixed-width big-endian
// integers; the store applies each delta at the stored value's natural width.
type ColumnIncrements map[string]map[string]int64

// Empty reports whether the mutation carries no work at all.
func Empty(changed ColumnChanges, removed ColumnRemovals, increments ColumnIncrements) bool {
	return len(changed) == 0 && len(removed) == 0 && len(increments) == 0
}
