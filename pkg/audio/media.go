package audio

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// DecodeMedia opens path as mp3, falling back to wav. The caller closes the
// returned streamer, which also closes the file.
func DecodeMedia(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	streamer, format, err := mp3.Decode(f)
	if err == nil {
		return streamer, format, nil
	}
	mp3Err := err

	// Reopen for the WAV attempt; a failed mp3 decode leaves the offset undefined
	f.Close()
	f, err = os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	streamer, format, err = wav.Decode(f)
	if err != nil {
		f.Close()
		slog.Debug("Audio: decode failed", "path", path, "mp3_error", mp3Err, "wav_error", err)
		return nil, beep.Format{}, fmt.Errorf("unsupported audio (mp3: %v): %w", mp3Err, err)
	}
	return streamer, format, nil
}

// Duration returns the playing time of the clip at path.
func Duration(path string) (time.Duration, error) {
	streamer, format, err := DecodeMedia(path)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}
