package cli

import (
	"testing"
	"time"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
		wantErr bool
	}{
		{name: "zero is unset", seconds: 0, want: 0},
		{name: "whole seconds", seconds: 30, want: 30 * time.Second},
		{name: "negative is rejected", seconds: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeconds("health-timeout", tt.seconds)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				assert.Contains(t, err.Error(), "--health-timeout")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"table", "json", "yaml"} {
		assert.NoError(t, ValidateFormat(f), f)
	}
	err := ValidateFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown output format 'xml'")
}

func TestAddEndpointFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var flags EndpointFlags
	AddEndpointFlags(cmd, &flags)

	require.NoError(t, cmd.ParseFlags([]string{"-e", "a:1,b:2", "-n", "ns:7574"}))
	assert.Equal(t, "a:1,b:2", flags.Endpoints)
	assert.Equal(t, "ns:7574", flags.NSLookup)
}
