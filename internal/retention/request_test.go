package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coltable/coltable-db/internal/coltable"
)

func changeMutation(family, qualifier, value string) *mutation {
	return &mutation{
		changed: coltable.ColumnChanges{
			family: {qualifier: []byte(value)},
		},
	}
}

func removeMutation(family, qualifier string) *mutation {
	return &mutation{
		removed: coltable.ColumnRemovals{
			family: {qualifier: struct{}{}},
		},
	}
}

func incrementMutation(family, qualifier string, delta int64) *mutation {
	return &mutation{
		increments: coltable.ColumnIncrements{
			family: {qualifier: delta},
		},
	}
}

func TestRequestFlatten(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutations      []*mutation
		wantChanged    coltable.ColumnChanges
		wantRemoved    coltable.ColumnRemovals
		wantIncrements coltable.ColumnIncrements
		wantRowDelete  bool
	}{
		"latest value wins": {
			mutations: []*mutation{
				changeMutation("d", "q", "one"),
				changeMutation("d", "q", "two"),
			},
			wantChanged: coltable.ColumnChanges{"d": {"q": []byte("two")}},
		},
		"change then delete removes the qualifier": {
			mutations: []*mutation{
				changeMutation("d", "q", "one"),
				removeMutation("d", "q"),
			},
			wantRemoved: coltable.ColumnRemovals{"d": {"q": struct{}{}}},
		},
		"change delete change keeps the final value": {
			mutations: []*mutation{
				changeMutation("d", "q", "one"),
				removeMutation("d", "q"),
				changeMutation("d", "q", "three"),
			},
			wantChanged: coltable.ColumnChanges{"d": {"q": []byte("three")}},
		},
		"change and removal in one mutation removes": {
			mutations: []*mutation{
				{
					changed: coltable.ColumnChanges{"d": {"q": []byte("one")}},
					removed: coltable.ColumnRemovals{"d": {"q": struct{}{}}},
				},
			},
			wantRemoved: coltable.ColumnRemovals{"d": {"q": struct{}{}}},
		},
		"increments sum across mutations": {
			mutations: []*mutation{
				incrementMutation("d", "hits", 3),
				incrementMutation("d", "hits", -1),
				incrementMutation("d", "hits", 5),
			},
			wantIncrements: coltable.ColumnIncrements{"d": {"hits": 7}},
		},
		"delete marker resets the increment sum": {
			mutations: []*mutation{
				incrementMutation("d", "hits", 100),
				removeMutation("d", "hits"),
				incrementMutation("d", "hits", 2),
				incrementMutation("d", "hits", 3),
			},
			wantIncrements: coltable.ColumnIncrements{"d": {"hits": 5}},
		},
		"row deletion as the most recent event": {
			mutations: []*mutation{
				changeMutation("d", "q", "one"),
				{deleteRow: true},
			},
			wantRowDelete: true,
		},
		"row deletion superseded by a later change": {
			mutations: []*mutation{
				{deleteRow: true},
				changeMutation("d", "q", "two"),
			},
			wantChanged: coltable.ColumnChanges{"d": {"q": []byte("two")}},
		},
		"row deletion swallows earlier qualifier removals": {
			mutations: []*mutation{
				removeMutation("d", "q"),
				{deleteRow: true},
				changeMutation("d", "other", "two"),
			},
			wantChanged: coltable.ColumnChanges{"d": {"other": []byte("two")}},
		},
		"independent qualifiers flatten independently": {
			mutations: []*mutation{
				changeMutation("d", "a", "one"),
				removeMutation("d", "b"),
				incrementMutation("e", "hits", 4),
			},
			wantChanged:    coltable.ColumnChanges{"d": {"a": []byte("one")}},
			wantRemoved:    coltable.ColumnRemovals{"d": {"b": struct{}{}}},
			wantIncrements: coltable.ColumnIncrements{"e": {"hits": 4}},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := newRequest("tbl", "row", "tbl\x00row", time.Now())
			for _, m := range tc.mutations {
				require.NoError(t, r.record(m))
			}
			r.markSent()

			changed, removed, increments, _, rowDelete := r.flatten()
			assert.Equal(t, tc.wantRowDelete, rowDelete)
			if tc.wantRowDelete {
				return
			}
			if tc.wantChanged == nil {
				assert.Empty(t, changed)
			} else {
				assert.Equal(t, tc.wantChanged, changed)
			}
			if tc.wantRemoved == nil {
				assert.Empty(t, removed)
			} else {
				assert.Equal(t, tc.wantRemoved, removed)
			}
			if tc.wantIncrements == nil {
				assert.Empty(t, increments)
			} else {
				assert.Equal(t, tc.wantIncrements, increments)
			}
		})
	}
}

func TestRequestPruning(t *testing.T) {
	t.Parallel()

	r := newRequest("tbl", "row", "tbl\x00row", time.Now())
	for i := 0; i < 100; i++ {
		require.NoError(t, r.record(changeMutation("d", "q", "value")))
		require.NoError(t, r.record(incrementMutation("d", "hits", 1)))
	}

	// Value entries are pruned down to the two most recent, increment
	// entries are never summarized early.
	assert.Len(t, r.columns["d"]["q"], 2)
	assert.Len(t, r.columns["d"]["hits"], 100)

	r.markSent()
	_, _, increments, _, _ := r.flatten()
	assert.Equal(t, int64(100), increments["d"]["hits"])
}

func TestRequestRefusesRecordingOnceSent(t *testing.T) {
	t.Parallel()

	r := newRequest("tbl", "row", "tbl\x00row", time.Now())
	require.NoError(t, r.record(changeMutation("d", "q", "one")))

	r.markSent()
	err := r.record(changeMutation("d", "q", "two"))
	require.ErrorIs(t, err, errAlreadySent)
}

func TestRequestMergesMeta(t *testing.T) {
	t.Parallel()

	r := newRequest("tbl", "row", "tbl\x00row", time.Now())

	first := coltable.NewMeta("Visit")
	first.AddFamily("d")
	require.NoError(t, r.record(&mutation{
		changed: coltable.ColumnChanges{"d": {"q": []byte("one")}},
		meta:    first,
	}))

	second := coltable.NewMeta("Visit")
	second.AddFamily("stats")
	require.NoError(t, r.record(&mutation{
		increments: coltable.ColumnIncrements{"stats": {"hits": 1}},
		meta:       second,
	}))

	conflicting := coltable.NewMeta("Session")
	err := r.record(&mutation{
		changed: coltable.ColumnChanges{"d": {"q": []byte("two")}},
		meta:    conflicting,
	})
	require.Error(t, err)

	r.markSent()
	_, _, _, meta, _ := r.flatten()
	require.NotNil(t, meta)
	assert.Equal(t, "Visit", meta.OriginType)
	assert.Equal(t, []string{"d", "stats"}, meta.FamilyNames())
}
