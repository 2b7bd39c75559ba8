package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DRAFT_PICK_TIMER_SEC", "45")

	cfg := FromEnv()
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 45, cfg.Draft.DefaultPickTimerSec)
}

func TestFromEnv_PickTimerDefault(t *testing.T) {
	t.Setenv("DRAFT_PICK_TIMER_SEC", "")

	cfg := FromEnv()
	assert.Equal(t, 90, cfg.Draft.DefaultPickTimerSec)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DRAFT_PICK_TIMER_SEC", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "http:\n  port: \"9090\"\ndraft:\n  default_pick_timer_sec: 120\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, 120, cfg.Draft.DefaultPickTimerSec)

	// Fields the file does not mention keep their env defaults.
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
}
