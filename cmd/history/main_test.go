package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecalc/config"
	"tradecalc/internal/adapters/logger"
	"tradecalc/internal/adapters/sqlite"
	"tradecalc/internal/app"
	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
)

// setupEnv points the command at a fresh database and blanks every other key.
func setupEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STRICT_VALIDATION", "CURRENCY_SYMBOL", "DEFAULTS_FILE", "DEFAULT_STOP_LOSS_PCT",
		"DEFAULT_TAKE_PROFIT_PCT", "BATCH_WORKERS", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
		"TELEGRAM_FETCH_LIMIT", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "calc.db"))
}

func seed(t *testing.T, symbols ...string) {
	t.Helper()
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	appLogger := logger.NewStdLogger(logger.LevelError)

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	require.NoError(t, err)
	defer repo.Close()

	svc, err := app.NewCalculatorService(cfg, appLogger, repo)
	require.NoError(t, err)
	setup, err := cfg.Defaults.Setup()
	require.NoError(t, err)
	for _, sym := range symbols {
		_, err := svc.Calculate(context.Background(), sym, domain.SourceManual, setup)
		require.NoError(t, err)
	}
}

func TestRun(t *testing.T) {
	setupEnv(t)

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), nil, &buf))
	assert.Equal(t, "No calculations stored yet.\n", buf.String())

	seed(t, "XRPUSDT", "BTCUSDT", "XRPUSDT")

	buf.Reset()
	require.NoError(t, run(context.Background(), []string{"-symbol", "xrpusdt"}, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)

	buf.Reset()
	require.NoError(t, run(context.Background(), []string{"-id", "2"}, &buf))
	assert.Contains(t, buf.String(), "BTCUSDT Short @ 2.17")

	err := run(context.Background(), []string{"-id", "99"}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}
