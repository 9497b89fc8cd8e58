package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "draftreveal.yaml")

	tests := []struct {
		name          string
		setup         func()
		validate      func(*testing.T, *Config)
		checkFile     func(*testing.T)
		expectedError bool
	}{
		{
			name:  "NewFile_Defaults",
			setup: func() {},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.TTS.Engine != "elevenlabs" {
					t.Errorf("expected default engine 'elevenlabs', got '%s'", cfg.TTS.Engine)
				}
				if len(cfg.Draft.Entrants) != 12 {
					t.Errorf("expected 12 default entrants, got %d", len(cfg.Draft.Entrants))
				}
				if cfg.Draft.Delay != DefaultDelay {
					t.Errorf("expected default delay %.1f, got %.1f", DefaultDelay, cfg.Draft.Delay)
				}
				if cfg.Reveal.Tick.Std() != time.Second {
					t.Errorf("expected 1s tick, got %v", cfg.Reveal.Tick.Std())
				}
				if !cfg.Reveal.FinalCountdown {
					t.Error("expected final_countdown default true")
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if !strings.Contains(string(content), "engine: elevenlabs") {
					t.Error("config file missing default values")
				}
				if !strings.Contains(string(content), "# Options: elevenlabs") {
					t.Error("config file missing engine comment")
				}
			},
		},
		{
			name: "ExistingFile_Override",
			setup: func() {
				err := os.WriteFile(configPath, []byte("draft:\n  delay: 3\n  entrants: [\"A\", \"B\"]\nreveal:\n  tick: 250ms\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Draft.Delay != 3 {
					t.Errorf("expected delay 3, got %v", cfg.Draft.Delay)
				}
				if len(cfg.Draft.Entrants) != 2 || cfg.Draft.Entrants[1] != "B" {
					t.Errorf("expected entrants [A B], got %v", cfg.Draft.Entrants)
				}
				if cfg.Reveal.Tick.Std() != 250*time.Millisecond {
					t.Errorf("expected 250ms tick, got %v", cfg.Reveal.Tick.Std())
				}
				if cfg.TTS.ElevenLabs.Stability != 0.7 {
					t.Errorf("expected default stability to survive merge, got %v", cfg.TTS.ElevenLabs.Stability)
				}
			},
			checkFile: func(t *testing.T) {},
		},
		{
			name: "Secrets_Env_Override",
			setup: func() {
				t.Setenv(EnvAPIKey, "env_secret_key")
				t.Setenv(EnvVoiceID, "env_voice")
				err := os.WriteFile(configPath, []byte("tts:\n  elevenlabs:\n    key: \"\"\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.TTS.ElevenLabs.Key != "env_secret_key" {
					t.Errorf("expected Key 'env_secret_key', got '%s'", cfg.TTS.ElevenLabs.Key)
				}
				if cfg.TTS.ElevenLabs.VoiceID != "env_voice" {
					t.Errorf("expected VoiceID 'env_voice', got '%s'", cfg.TTS.ElevenLabs.VoiceID)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if strings.Contains(string(content), "env_secret_key") {
					t.Error("environment secret should NOT be persisted to config file")
				}
			},
		},
		{
			name: "File_Secret_Wins",
			setup: func() {
				t.Setenv(EnvAPIKey, "env_secret_key")
				err := os.WriteFile(configPath, []byte("tts:\n  elevenlabs:\n    key: file_key\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.TTS.ElevenLabs.Key != "file_key" {
					t.Errorf("expected Key 'file_key', got '%s'", cfg.TTS.ElevenLabs.Key)
				}
			},
			checkFile: func(t *testing.T) {},
		},
		{
			name: "Invalid_YAML",
			setup: func() {
				err := os.WriteFile(configPath, []byte("draft: [not a map]"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Invalid_Profile",
			setup: func() {
				err := os.WriteFile(configPath, []byte("tts:\n  elevenlabs:\n    stability: 1.5\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Invalid_Tick",
			setup: func() {
				err := os.WriteFile(configPath, []byte("reveal:\n  tick: 0s\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Remove(configPath)
			tt.setup()

			cfg, err := Load(configPath)
			if (err != nil) != tt.expectedError {
				t.Fatalf("Load() error = %v, expectedError %v", err, tt.expectedError)
			}
			if err == nil {
				tt.validate(t, cfg)
				tt.checkFile(t)
			}
		})
	}
}

func TestGenerateDefault(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "default_config.yaml")

	if err := GenerateDefault(configPath); err != nil {
		t.Fatalf("GenerateDefault() error = %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("GenerateDefault() did not create file")
	}

	// Running again should not fail or overwrite
	if err := os.WriteFile(configPath, []byte("draft:\n  delay: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := GenerateDefault(configPath); err != nil {
		t.Errorf("GenerateDefault() error on second run = %v", err)
	}
	content, _ := os.ReadFile(configPath)
	if !strings.Contains(string(content), "delay: 9") {
		t.Error("GenerateDefault() overwrote an existing file")
	}
}

func TestParseDelay(t *testing.T) {
	tests := []struct {
		input        string
		want         float64
		wantFallback bool
	}{
		{"2", 2, false},
		{" 0.75 ", 0.75, false},
		{"0", DefaultDelay, true},
		{"-1", DefaultDelay, true},
		{"abc", DefaultDelay, true},
		{"", DefaultDelay, true},
		{"NaN", DefaultDelay, true},
		{"+Inf", DefaultDelay, true},
	}

	for _, tt := range tests {
		got, fallback := ParseDelay(tt.input)
		if got != tt.want || fallback != tt.wantFallback {
			t.Errorf("ParseDelay(%q) = (%v, %v), want (%v, %v)", tt.input, got, fallback, tt.want, tt.wantFallback)
		}
	}
}
