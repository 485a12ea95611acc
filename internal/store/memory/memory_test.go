package memory

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coltable/coltable-db/internal/codec"
	"github.com/coltable/coltable-db/internal/coltable"
	"github.com/coltable/coltable-db/internal/constraint"
	"github.com/coltable/coltable-db/internal/store"
)

type pairKey struct {
	Key1 int32 `coltable:"key=1"`
	Key2 int32 `coltable:"key=2"`
}

var pairType = reflect.TypeOf(pairKey{})

func changes(family, qualifier string, value []byte) coltable.ColumnChanges {
	return coltable.ColumnChanges{family: {qualifier: value}}
}

func TestMissingLookupsAreNotErrors(t *testing.T) {
	t.Parallel()
	s := New()

	ok, err := s.HasTable(nil, "nope")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.Exists(nil, "nope", "row")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.ExistsFamily(nil, "nope", "row", "fam")
	require.NoError(t, err)
	require.False(t, ok)

	data, err := s.Get(nil, "nope", "row", "fam")
	require.NoError(t, err)
	require.Empty(t, data)

	fams, err := s.GetFamilies(nil, "nope", "row", nil)
	require.NoError(t, err)
	require.Empty(t, fams)
}

func TestStoreChangesApplyOrder(t *testing.T) {
	t.Parallel()
	s := New()

	// a qualifier that is both upserted and removed in one call ends up
	// removed: removals apply after upserts
	err := s.StoreChanges(nil, "t", "r",
		coltable.ColumnChanges{"f": {"q1": []byte("v1"), "q2": []byte("v2")}},
		coltable.ColumnRemovals{"f": {"q1": {}}},
		nil,
	)
	require.NoError(t, err)

	data, err := s.Get(nil, "t", "r", "f")
	require.NoError(t, err)
	require.Equal(t, coltable.FamilyData{"q2": []byte("v2")}, data)

	ok, err := s.HasTable(nil, "t")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIncrements(t *testing.T) {
	t.Parallel()

	t.Run("absent counter starts at natural width", func(t *testing.T) {
		s := New()
		err := s.StoreChanges(nil, "t", "r", nil, nil, coltable.ColumnIncrements{"f": {"n": 5}})
		require.NoError(t, err)

		data, err := s.Get(nil, "t", "r", "f")
		require.NoError(t, err)
		require.Len(t, data["n"], 8)
		require.Equal(t, int64(5), codec.DecodeCounter(data["n"]))
	})

	t.Run("existing counter keeps its width", func(t *testing.T) {
		s := New()
		err := s.StoreChanges(nil, "t", "r", changes("f", "n", codec.EncodeCounter(10, 4)), nil, nil)
		require.NoError(t, err)
		err = s.StoreChanges(nil, "t", "r", nil, nil, coltable.ColumnIncrements{"f": {"n": -3}})
		require.NoError(t, err)

		data, err := s.Get(nil, "t", "r", "f")
		require.NoError(t, err)
		require.Len(t, data["n"], 4)
		require.Equal(t, int64(7), codec.DecodeCounter(data["n"]))
	})

	t.Run("unnatural stored width fails", func(t *testing.T) {
		s := New()
		err := s.StoreChanges(nil, "t", "r", changes("f", "n", []byte{1, 2, 3}), nil, nil)
		require.NoError(t, err)
		err = s.StoreChanges(nil, "t", "r", nil, nil, coltable.ColumnIncrements{"f": {"n": 1}})
		require.ErrorIs(t, err, store.ErrBadCounterWidth)
	})
}

func TestRowIsGoneWhenAllFamilyDataRemoved(t *testing.T) {
	t.Parallel()
	s := New()

	require.NoError(t, s.StoreChanges(nil, "t", "r", changes("f", "q", []byte("v")), nil, nil))
	ok, err := s.Exists(nil, "t", "r")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.StoreChanges(nil, "t", "r", nil, coltable.ColumnRemovals{"f": {"q": {}}}, nil))
	ok, err = s.Exists(nil, "t", "r")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	s := New()

	require.NoError(t, s.StoreChanges(nil, "t", "r", changes("f", "q", []byte("v")), nil, nil))
	require.NoError(t, s.Delete(nil, "t", "r"))

	ok, err := s.Exists(nil, "t", "r")
	require.NoError(t, err)
	require.False(t, ok)

	// deleting a missing row is fine
	require.NoError(t, s.Delete(nil, "t", "missing"))
}

func TestGetRangeQualifiers(t *testing.T) {
	t.Parallel()
	s := New()

	require.NoError(t, s.StoreChanges(nil, "t", "r", coltable.ColumnChanges{
		"f": {"a": []byte("1"), "b": []byte("2"), "c": []byte("3"), "d": []byte("4")},
	}, nil, nil))

	data, err := s.GetRange(nil, "t", "r", "f", constraint.Range("b", "c"))
	require.NoError(t, err)
	require.Equal(t, coltable.FamilyData{"b": []byte("2"), "c": []byte("3")}, data)
}

// seedPairTable writes one row for every key1 in [0,100] and key2 in [0,10].
func seedPairTable(t *testing.T, s *Store) {
	t.Helper()
	for k1 := int32(0); k1 <= 100; k1++ {
		for k2 := int32(0); k2 <= 10; k2++ {
			key, err := codec.ToString(pairKey{Key1: k1, Key2: k2})
			require.NoError(t, err)
			require.NoError(t, s.StoreChanges(nil, "pairs", key, changes("props", "val", []byte{byte(k2)}), nil, nil))
		}
	}
}

func TestScanLeadingFieldRange(t *testing.T) {
	t.Parallel()
	s := New()
	seedPairTable(t, s)

	c, err := constraint.Search(pairType, map[string]any{}, "Key1", int32(49), int32(55))
	require.NoError(t, err)

	rows, err := s.Scan(nil, "pairs", c, 0, nil)
	require.NoError(t, err)
	defer rows.Close()

	var keys []string
	for rows.Next() {
		row := rows.Row()
		keys = append(keys, row.Key)

		decoded, err := codec.FromString(row.Key, pairType)
		require.NoError(t, err)
		pk := decoded.(pairKey)
		require.GreaterOrEqual(t, pk.Key1, int32(49))
		require.LessOrEqual(t, pk.Key1, int32(55))
	}
	require.NoError(t, rows.Err())

	require.Len(t, keys, 7*11)
	for i := 0; i < len(keys)-1; i++ {
		require.Less(t, keys[i], keys[i+1], "rows must come back in ascending key order")
	}
}

func TestScanBoundPrefixRange(t *testing.T) {
	t.Parallel()
	s := New()
	seedPairTable(t, s)

	c, err := constraint.Search(pairType, map[string]any{"Key1": int32(35)}, "Key2", int32(5), int32(7))
	require.NoError(t, err)

	rows, err := s.Scan(nil, "pairs", c, 0, nil)
	require.NoError(t, err)
	defer rows.Close()

	var got []int32
	for rows.Next() {
		decoded, err := codec.FromString(rows.Row().Key, pairType)
		require.NoError(t, err)
		pk := decoded.(pairKey)
		require.Equal(t, int32(35), pk.Key1)
		got = append(got, pk.Key2)
	}
	require.Equal(t, []int32{5, 6, 7}, got)
}

func TestScanLimitAndClose(t *testing.T) {
	t.Parallel()
	s := New()
	seedPairTable(t, s)

	rows, err := s.Scan(nil, "pairs", nil, 5, nil)
	require.NoError(t, err)

	n := 0
	for rows.Next() {
		n++
	}
	require.Equal(t, 5, n)

	require.NoError(t, rows.Close())
	require.NoError(t, rows.Close(), "closing twice is a no-op")
	require.False(t, rows.Next())
}

func TestCount(t *testing.T) {
	t.Parallel()
	s := New()
	seedPairTable(t, s)

	n, err := s.Count(nil, "pairs", nil)
	require.NoError(t, err)
	require.Equal(t, int64(101*11), n)

	c, err := constraint.Search(pairType, map[string]any{}, "Key1", int32(0), int32(0))
	require.NoError(t, err)
	n, err = s.Count(nil, "pairs", c)
	require.NoError(t, err)
	require.Equal(t, int64(11), n)
}
