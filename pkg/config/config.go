package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted for secrets when the YAML leaves them empty.
const (
	EnvAPIKey  = "ELEVEN_API_KEY"
	EnvVoiceID = "VOICE_ID"
)

// DefaultDelay is the per-pick countdown used when the supplied delay is invalid.
const DefaultDelay = 1.5

// Config holds the application configuration.
type Config struct {
	TTS    TTSConfig    `yaml:"tts"`
	Audio  AudioConfig  `yaml:"audio"`
	Draft  DraftConfig  `yaml:"draft"`
	Reveal RevealConfig `yaml:"reveal"`
	Log    LogConfig    `yaml:"log"`
}

// ElevenLabsConfig holds credentials and the synthesis profile for ElevenLabs.
type ElevenLabsConfig struct {
	Key          string   `yaml:"key"`   // API Key (falls back to ELEVEN_API_KEY)
	VoiceID      string   `yaml:"voice"` // Voice profile id (falls back to VOICE_ID)
	Model        string   `yaml:"model"`
	OutputFormat string   `yaml:"output_format"`
	BaseURL      string   `yaml:"base_url"`
	Timeout      Duration `yaml:"timeout"`
	// Stability trades expressiveness for consistency: higher values give a
	// steadier, more monotone read.
	Stability float64 `yaml:"stability"`
	// Similarity favors closeness to the reference voice: higher values track
	// the original speaker more tightly, at the risk of reproducing artifacts.
	Similarity float64 `yaml:"similarity"`
}

// TTSConfig holds Text-To-Speech settings.
type TTSConfig struct {
	Engine     string           `yaml:"engine"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
}

// AudioConfig holds clip cache and playback settings.
type AudioConfig struct {
	CacheDir string  `yaml:"cache_dir"`
	Volume   float64 `yaml:"volume"`
}

// DraftConfig holds the entrant roster and pacing collected before a run.
type DraftConfig struct {
	League   string   `yaml:"league"`
	Entrants []string `yaml:"entrants"`
	Delay    float64  `yaml:"delay"` // seconds per pick
}

// RevealConfig holds countdown timing.
type RevealConfig struct {
	Tick           Duration `yaml:"tick"`
	Settle         Duration `yaml:"settle"`
	FinalCountdown bool     `yaml:"final_countdown"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
	TTS    LogSettings `yaml:"tts"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path    string `yaml:"path"`
	Level   string `yaml:"level"`
	Enabled bool   `yaml:"enabled"`
}

// DefaultEntrants is the roster prefilled into a fresh configuration.
var DefaultEntrants = []string{
	"Team Alpha", "Team Bravo", "Team Charlie", "Team Delta",
	"Team Echo", "Team Foxtrot", "Team Golf", "Team Hotel",
	"Team India", "Team Juliet", "Team Kilo", "Team Lima",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TTS: TTSConfig{
			Engine: "elevenlabs",
			ElevenLabs: ElevenLabsConfig{
				Model:        "eleven_turbo_v2",
				OutputFormat: "mp3_44100_128",
				BaseURL:      "https://api.elevenlabs.io",
				Timeout:      Duration(60 * time.Second),
				Stability:    0.7,
				Similarity:   0.75,
			},
		},
		Audio: AudioConfig{
			CacheDir: "audio",
			Volume:   1.0,
		},
		Draft: DraftConfig{
			League:   "Fantasy Football League",
			Entrants: append([]string(nil), DefaultEntrants...),
			Delay:    DefaultDelay,
		},
		Reveal: RevealConfig{
			Tick:           Duration(1 * time.Second),
			Settle:         Duration(500 * time.Millisecond),
			FinalCountdown: true,
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:    "./logs/server.log",
				Level:   "INFO",
				Enabled: true,
			},
			TTS: LogSettings{
				Path:    "./logs/tts.log",
				Level:   "INFO",
				Enabled: true,
			},
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk.
// Secrets left empty in the file are taken from the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if cfg.TTS.ElevenLabs.Key == "" {
		if key := os.Getenv(EnvAPIKey); key != "" {
			cfg.TTS.ElevenLabs.Key = key
		}
	}
	if cfg.TTS.ElevenLabs.VoiceID == "" {
		if voice := os.Getenv(EnvVoiceID); voice != "" {
			cfg.TTS.ElevenLabs.VoiceID = voice
		}
	}
}

// Validate checks structural settings. Credentials are checked at provider
// construction so that a missing key surfaces as an authentication failure.
func (c *Config) Validate() error {
	var errs []error
	el := c.TTS.ElevenLabs
	if el.Stability < 0 || el.Stability > 1 {
		errs = append(errs, fmt.Errorf("tts.elevenlabs.stability %.2f out of range [0,1]", el.Stability))
	}
	if el.Similarity < 0 || el.Similarity > 1 {
		errs = append(errs, fmt.Errorf("tts.elevenlabs.similarity %.2f out of range [0,1]", el.Similarity))
	}
	if c.Audio.CacheDir == "" {
		errs = append(errs, errors.New("audio.cache_dir must not be empty"))
	}
	if c.Reveal.Tick <= 0 {
		errs = append(errs, errors.New("reveal.tick must be positive"))
	}
	if c.Reveal.Settle < 0 {
		errs = append(errs, errors.New("reveal.settle must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Draft Reveal Configuration
# ---------------------
# Secrets may be left empty here and supplied via ELEVEN_API_KEY / VOICE_ID
# (process environment or a .env file next to the binary).
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	reEngine := regexp.MustCompile(`(?m)^(\s+)engine:`)
	data = reEngine.ReplaceAll(data, []byte("${1}# Options: elevenlabs\n${1}engine:"))

	reFinal := regexp.MustCompile(`(?m)^(\s+)final_countdown:`)
	data = reFinal.ReplaceAll(data, []byte("${1}# Run one more countdown after the 1st pick before completing\n${1}final_countdown:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}

// ResolveDelay returns delay when it is positive and DefaultDelay otherwise.
// The boolean reports whether the fallback was applied so the caller can
// notify the operator.
func ResolveDelay(delay float64) (float64, bool) {
	if delay > 0 && !math.IsInf(delay, 1) {
		return delay, false
	}
	return DefaultDelay, true
}

// ParseDelay parses a delay typed by the operator, falling back to
// DefaultDelay on anything that is not a positive number.
func ParseDelay(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return DefaultDelay, true
	}
	return ResolveDelay(v)
}
