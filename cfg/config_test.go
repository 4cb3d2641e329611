package cfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	before := *Config
	err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	require.Equal(t, before, *Config)
}

func TestLoad_EmptyPathIsNoop(t *testing.T) {
	before := *Config
	require.NoError(t, Load(""))
	require.Equal(t, before, *Config)
}
