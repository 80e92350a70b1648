package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/leoflow/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.LogConfig
		wantDebugOn bool
	}{
		{
			name:        "debug json",
			cfg:         config.LogConfig{Level: "debug", Format: "json", OutputPaths: []string{"stdout"}},
			wantDebugOn: true,
		},
		{
			name:        "info console",
			cfg:         config.LogConfig{Level: "info", Format: "console", OutputPaths: []string{"stdout"}},
			wantDebugOn: false,
		},
		{
			name:        "unknown level falls back to info",
			cfg:         config.LogConfig{Level: "chatty", Format: "json", OutputPaths: []string{"stdout"}},
			wantDebugOn: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := initLogger(tt.cfg)
			require.NotNil(t, logger)

			assert.Equal(t, tt.wantDebugOn, logger.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
		})
	}
}
