package app

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogHandlerFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newLogHandler(&Config{LogFormat: "json"}, &buf))
	logger.Info("hello")
	require.Contains(t, buf.String(), `"msg":"hello"`)
	require.Contains(t, buf.String(), `"source"`)

	buf.Reset()
	logger = slog.New(newLogHandler(&Config{LogFormat: "pretty"}, &buf))
	logger.Info("hello")
	require.Contains(t, buf.String(), "msg=hello")
}

func TestLogHandlerProductionDropsSource(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newLogHandler(&Config{AppEnv: "production", LogFormat: "json"}, &buf))
	logger.InfoContext(context.Background(), "hello")
	require.NotContains(t, buf.String(), `"source"`)
}
