package main

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
)

const defaultBaseURL = "http://localhost:5000"

// Theme represents a color theme for the application
type Theme struct {
	Name          string
	Primary       string // Main accent color
	Secondary     string // Secondary accent color
	Background    string
	Foreground    string
	Muted         string
	Border        string
	Highlight     string // Cursor card border
	Success       string
	Warning       string
	Error         string
	GradientStart string // Progress fill gradient start color
	GradientEnd   string // Progress fill gradient end color
}

// Config holds the client configuration.
type Config struct {
	BaseURL   string
	Token     string
	ThemeName string
	Log       LogConfig
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// LoadConfig reads configuration from the environment, after loading a .env
// file from the working directory if there is one. It returns whether a .env
// file was loaded so the caller can log it once a logger exists.
func LoadConfig() (*Config, bool) {
	loaded := godotenv.Load() == nil

	logPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		logPath = filepath.Join(home, ".soundalt", "soundalt.log")
	}

	return &Config{
		BaseURL:   getEnv("SOUNDALT_BASE_URL", defaultBaseURL),
		Token:     os.Getenv("SOUNDALT_TOKEN"),
		ThemeName: getEnv("SOUNDALT_THEME", "default"),
		Log: LogConfig{
			Level:      getEnv("SOUNDALT_LOG_LEVEL", "info"),
			OutputPath: getEnv("SOUNDALT_LOG_FILE", logPath),
			MaxSize:    getEnvInt("SOUNDALT_LOG_MAX_SIZE", 10),
			MaxBackups: getEnvInt("SOUNDALT_LOG_MAX_BACKUPS", 3),
			MaxAge:     getEnvInt("SOUNDALT_LOG_MAX_AGE", 28),
			Compress:   getEnvBool("SOUNDALT_LOG_COMPRESS", false),
		},
	}, loaded
}

// Theme returns the configured theme, falling back to the default one.
func (c *Config) Theme() Theme {
	if theme, ok := builtinThemes()[c.ThemeName]; ok {
		return theme
	}
	return builtinThemes()["default"]
}

func themeNames() []string {
	var names []string
	for name := range builtinThemes() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func builtinThemes() map[string]Theme {
	return map[string]Theme{
		"default": {
			Name:          "Default",
			Primary:       "205", // Pink
			Secondary:     "147", // Light purple
			Background:    "235",
			Foreground:    "252",
			Muted:         "240",
			Border:        "241",
			Highlight:     "205",
			Success:       "46",
			Warning:       "226",
			Error:         "196",
			GradientStart: "147",
			GradientEnd:   "205",
		},
		"dark": {
			Name:          "Dark",
			Primary:       "39", // Blue
			Secondary:     "33",
			Background:    "232",
			Foreground:    "255",
			Muted:         "244",
			Border:        "238",
			Highlight:     "39",
			Success:       "40",
			Warning:       "220",
			Error:         "160",
			GradientStart: "33",
			GradientEnd:   "39",
		},
		"light": {
			Name:          "Light",
			Primary:       "25",
			Secondary:     "67",
			Background:    "255",
			Foreground:    "0",
			Muted:         "240",
			Border:        "244",
			Highlight:     "25",
			Success:       "22",
			Warning:       "178",
			Error:         "124",
			GradientStart: "67",
			GradientEnd:   "25",
		},
		"cyberpunk": {
			Name:          "Cyberpunk",
			Primary:       "51",  // Cyan
			Secondary:     "201", // Magenta
			Background:    "0",
			Foreground:    "51",
			Muted:         "240",
			Border:        "51",
			Highlight:     "201",
			Success:       "46",
			Warning:       "226",
			Error:         "196",
			GradientStart: "51",
			GradientEnd:   "201",
		},
		"forest": {
			Name:          "Forest",
			Primary:       "28",
			Secondary:     "34",
			Background:    "22",
			Foreground:    "150",
			Muted:         "240",
			Border:        "28",
			Highlight:     "34",
			Success:       "46",
			Warning:       "178",
			Error:         "124",
			GradientStart: "34",
			GradientEnd:   "46",
		},
		"sunset": {
			Name:          "Sunset",
			Primary:       "208", // Orange
			Secondary:     "196",
			Background:    "52",
			Foreground:    "224",
			Muted:         "240",
			Border:        "208",
			Highlight:     "196",
			Success:       "46",
			Warning:       "226",
			Error:         "160",
			GradientStart: "208",
			GradientEnd:   "196",
		},
	}
}

// ThemeStyles contains pre-configured lipgloss styles
type ThemeStyles struct {
	Primary    lipgloss.Style
	Secondary  lipgloss.Style
	Foreground lipgloss.Style
	Muted      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
}

// Styles creates lipgloss styles based on the theme
func (t Theme) Styles() ThemeStyles {
	return ThemeStyles{
		Primary:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)),
		Secondary:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)),
		Foreground: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Foreground)),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		Success:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		Warning:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)),
	}
}
