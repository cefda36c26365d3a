package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"SOUNDALT_BASE_URL", "SOUNDALT_TOKEN", "SOUNDALT_THEME", "SOUNDALT_LOG_LEVEL",
		"SOUNDALT_LOG_MAX_SIZE", "SOUNDALT_LOG_MAX_BACKUPS", "SOUNDALT_LOG_MAX_AGE", "SOUNDALT_LOG_COMPRESS",
	} {
		t.Setenv(key, "")
	}
	// t.Setenv cannot unset; empty values exercise the fallbacks of the int
	// and bool readers.
	cfg, _ := LoadConfig()

	assert.Equal(t, 10, cfg.Log.MaxSize)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
	assert.Equal(t, 28, cfg.Log.MaxAge)
	assert.False(t, cfg.Log.Compress)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SOUNDALT_BASE_URL", "http://sounds.local:5000")
	t.Setenv("SOUNDALT_TOKEN", "abc")
	t.Setenv("SOUNDALT_THEME", "forest")
	t.Setenv("SOUNDALT_LOG_LEVEL", "debug")
	t.Setenv("SOUNDALT_LOG_FILE", "/tmp/soundalt-test.log")
	t.Setenv("SOUNDALT_LOG_MAX_SIZE", "5")
	t.Setenv("SOUNDALT_LOG_MAX_BACKUPS", "not-a-number")
	t.Setenv("SOUNDALT_LOG_COMPRESS", "true")

	cfg, _ := LoadConfig()

	assert.Equal(t, "http://sounds.local:5000", cfg.BaseURL)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, "forest", cfg.ThemeName)
	assert.Equal(t, "Forest", cfg.Theme().Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/soundalt-test.log", cfg.Log.OutputPath)
	assert.Equal(t, 5, cfg.Log.MaxSize)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
	assert.True(t, cfg.Log.Compress)
}

func TestGetEnvFallbacks(t *testing.T) {
	assert.Equal(t, defaultBaseURL, getEnv("SOUNDALT_TEST_UNSET_KEY", defaultBaseURL))
	assert.Equal(t, 7, getEnvInt("SOUNDALT_TEST_UNSET_KEY", 7))
	assert.True(t, getEnvBool("SOUNDALT_TEST_UNSET_KEY", true))

	t.Setenv("SOUNDALT_TEST_KEY", "")
	assert.Equal(t, "", getEnv("SOUNDALT_TEST_KEY", "x"), "a set but empty value wins")
}

func TestThemeFallback(t *testing.T) {
	cfg := &Config{ThemeName: "neon"}
	assert.Equal(t, "Default", cfg.Theme().Name)
}

func TestThemeNamesSorted(t *testing.T) {
	assert.Equal(t, []string{"cyberpunk", "dark", "default", "forest", "light", "sunset"}, themeNames())
}
