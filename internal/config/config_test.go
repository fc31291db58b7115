package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledgerline.yaml")

	cfg := Default("tbc-statement", "GEL")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tbc-statement", loaded.Account.Scheme)
	assert.Equal(t, "GEL", loaded.Account.Currency)
	assert.Equal(t, "info", loaded.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_RequiredFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledgerline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  scheme: s\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account.currency")
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger = NewLogger(LogConfig{Level: "bogus"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
