package coltable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetaMerge(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		base      *Meta
		other     *Meta
		expectErr bool
		families  []string
	}{
		"nil other is a no-op": {
			base:     NewMeta("Episode"),
			other:    nil,
			families: []string{},
		},
		"families accumulate": {
			base: func() *Meta {
				m := NewMeta("Episode")
				m.AddFamily("props")
				return m
			}(),
			other: func() *Meta {
				m := NewMeta("Episode")
				m.AddFamily("stats")
				return m
			}(),
			families: []string{"props", "stats"},
		},
		"empty origin adopts the other side": {
			base:     &Meta{},
			other:    NewMeta("Episode"),
			families: []string{},
		},
		"conflicting origins fail": {
			base:      NewMeta("Episode"),
			other:     NewMeta("Show"),
			expectErr: true,
		},
		"conflicting postfixes fail": {
			base:      NewMeta("Episode").WithTablePostfix("_2024"),
			other:     NewMeta("Episode").WithTablePostfix("_2025"),
			expectErr: true,
		},
		"agreeing postfixes merge": {
			base:     NewMeta("Episode").WithTablePostfix("_2024"),
			other:    NewMeta("Episode").WithTablePostfix("_2024"),
			families: []string{},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.base.Merge(tc.other)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.families, tc.base.FamilyNames())
		})
	}
}

func TestMetaMergeAdoptsPostfix(t *testing.T) {
	t.Parallel()

	base := NewMeta("Episode")
	require.NoError(t, base.Merge(NewMeta("Episode").WithTablePostfix("_q1")))
	require.Equal(t, "_q1", base.TablePostfix)

	// an explicitly set empty postfix still conflicts with a different one
	empty := NewMeta("Episode").WithTablePostfix("")
	require.Error(t, empty.Merge(NewMeta("Episode").WithTablePostfix("_q1")))
}
