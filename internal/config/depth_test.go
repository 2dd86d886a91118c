package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/fsindex/internal/config"
)

func TestParseDepth(t *testing.T) {
	tests := []struct {
		in   string
		want int
		err  error
	}{
		{"1", 1, nil},
		{"3", 3, nil},
		{" 20 ", 20, nil},
		{"0", 3, config.ErrDepthRange},
		{"21", 3, config.ErrDepthRange},
		{"-4", 3, config.ErrDepthRange},
		{"deep", 3, config.ErrDepthInvalid},
		{"", 3, config.ErrDepthInvalid},
		{"2.5", 3, config.ErrDepthInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := config.ParseDepth(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDepthWarning(t *testing.T) {
	_, err := config.ParseDepth("99")
	assert.Equal(t,
		"Warning: Max depth should be between 1 and 20. Using default value of 3.",
		config.DepthWarning("99", err))

	_, err = config.ParseDepth("abc")
	assert.Equal(t,
		"Warning: Invalid max depth 'abc'. Using default value of 3.",
		config.DepthWarning("abc", err))
}
