package probe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"draftreveal/pkg/config"
	"draftreveal/pkg/tts"
)

// ErrMissingAsset is reported when a fixed audio asset is absent.
var ErrMissingAsset = errors.New("missing asset")

// Credentials checks that a synthesis key and voice are configured.
func Credentials(cfg config.ElevenLabsConfig) Probe {
	return Probe{
		Name:     "TTS credentials",
		Critical: true,
		Check: func(ctx context.Context) error {
			var missing []string
			if strings.TrimSpace(cfg.Key) == "" {
				missing = append(missing, config.EnvAPIKey)
			}
			if strings.TrimSpace(cfg.VoiceID) == "" {
				missing = append(missing, config.EnvVoiceID)
			}
			if len(missing) > 0 {
				return &tts.AuthError{Message: "not set: " + strings.Join(missing, ", ")}
			}
			return nil
		},
	}
}

// CacheWritable checks that dir exists (creating it) and accepts new files.
func CacheWritable(dir string) Probe {
	return Probe{
		Name:     "Clip cache",
		Critical: true,
		Check: func(ctx context.Context) error {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			f, err := os.CreateTemp(dir, ".probe-*")
			if err != nil {
				return fmt.Errorf("%s not writable: %w", dir, err)
			}
			name := f.Name()
			f.Close()
			return os.Remove(name)
		},
	}
}

// AssetPresent checks that a fixed asset exists. It is informational: a
// missing interlude plays as silence.
func AssetPresent(name, path string) Probe {
	return Probe{
		Name: name,
		Check: func(ctx context.Context) error {
			info, err := os.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrMissingAsset, filepath.ToSlash(path))
			}
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return fmt.Errorf("%w: %s is not a file", ErrMissingAsset, filepath.ToSlash(path))
			}
			return nil
		},
	}
}
