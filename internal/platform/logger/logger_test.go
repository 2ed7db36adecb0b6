package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanseo/rosetta-api/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", input: "debug", want: slog.LevelDebug},
		{name: "info", input: "info", want: slog.LevelInfo},
		{name: "warn", input: "warn", want: slog.LevelWarn},
		{name: "error", input: "error", want: slog.LevelError},
		{name: "mixed case", input: "DEBUG", want: slog.LevelDebug},
		{name: "empty defaults to info", input: "", want: slog.LevelInfo},
		{name: "unknown level", input: "verbose", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseLevel(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSetup(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		log, err := Setup(config.ServerConfig{LogLevel: "info", LogFormat: "json"})
		require.NoError(t, err)
		require.NotNil(t, log)
	})

	t.Run("text format", func(t *testing.T) {
		log, err := Setup(config.ServerConfig{LogLevel: "debug", LogFormat: "text"})
		require.NoError(t, err)
		require.NotNil(t, log)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := Setup(config.ServerConfig{LogLevel: "loud", LogFormat: "json"})
		require.Error(t, err)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := Setup(config.ServerConfig{LogLevel: "info", LogFormat: "xml"})
		require.Error(t, err)
	})
}

func TestLoggerContext(t *testing.T) {
	base := slog.Default().With("trace_id", "abc123")

	ctx := WithLogger(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))

	assert.Same(t, slog.Default(), FromContext(context.Background()),
		"missing logger falls back to the default")
}
