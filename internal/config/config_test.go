package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		want    Config
		wantErr bool
	}{
		"full file": {
			input: strings.Join([]string{
				"# coltable server settings",
				"data_dir = /var/lib/coltable",
				"engine = memory",
				"retention_ms = 250",
				"flush_workers = 8",
				"debug = true",
			}, "\n"),
			want: Config{
				DataDir:      "/var/lib/coltable",
				Engine:       EngineMemory,
				RetentionMS:  250,
				FlushWorkers: 8,
				Debug:        true,
			},
		},
		"blank lines comments and unknown keys are skipped": {
			input: strings.Join([]string{
				"",
				"# comment",
				"not a pair",
				"future_knob = 7",
				"engine = memory",
			}, "\n"),
			want: Config{Engine: EngineMemory},
		},
		"invalid retention": {
			input:   "retention_ms = soon",
			wantErr: true,
		},
		"invalid workers": {
			input:   "flush_workers = many",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var cfg Config
			err := cfg.parse(strings.NewReader(tc.input))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := defaults("/tmp/coltable")
	require.NoError(t, valid.validate())
	assert.Equal(t, EnginePebble, valid.Engine)

	tests := map[string]Config{
		"unknown engine":    {Engine: "papyrus", RetentionMS: 100},
		"zero retention":    {Engine: EngineMemory},
		"negative workers":  {Engine: EngineMemory, RetentionMS: 100, FlushWorkers: -1},
		"negative retention": {Engine: EnginePebble, RetentionMS: -5},
	}
	for name, cfg := range tests {
		cfg := cfg
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.Error(t, cfg.validate())
		})
	}
}
