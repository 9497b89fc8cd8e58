// Package elevenlabs implements tts.Provider against the ElevenLabs streaming endpoint.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"draftreveal/pkg/config"
	"draftreveal/pkg/tracker"
	"draftreveal/pkg/tts"
)

const (
	defaultBaseURL      = "https://api.elevenlabs.io"
	defaultModel        = "eleven_turbo_v2"
	defaultOutputFormat = "mp3_44100_128"
	logName             = "ELEVENLABS"
	maxErrorBody        = 4096
)

// Provider implements tts.Provider for ElevenLabs.
type Provider struct {
	apiKey       string
	voiceID      string // Default voice profile id
	modelID      string
	outputFormat string
	baseURL      string
	profile      tts.Profile
	client       *http.Client
	tracker      *tracker.Tracker
}

// NewProvider creates a new ElevenLabs TTS provider. The config is taken by
// value; the provider keeps its own copy of the credential.
// A missing key or voice returns a *tts.AuthError so the failure surfaces at
// startup rather than as a malformed request later.
func NewProvider(cfg config.ElevenLabsConfig, t *tracker.Tracker) (*Provider, error) {
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, &tts.AuthError{Message: "no API key configured (set " + config.EnvAPIKey + ")"}
	}
	if strings.TrimSpace(cfg.VoiceID) == "" {
		return nil, &tts.AuthError{Message: "no voice id configured (set " + config.EnvVoiceID + ")"}
	}

	profile := tts.Profile{Stability: cfg.Stability, Similarity: cfg.Similarity}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid synthesis profile: %w", err)
	}

	p := &Provider{
		apiKey:       cfg.Key,
		voiceID:      cfg.VoiceID,
		modelID:      cfg.Model,
		outputFormat: cfg.OutputFormat,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		profile:      profile,
		client:       &http.Client{Timeout: time.Duration(cfg.Timeout)},
		tracker:      t,
	}
	if p.modelID == "" {
		p.modelID = defaultModel
	}
	if p.outputFormat == "" {
		p.outputFormat = defaultOutputFormat
	}
	if p.baseURL == "" {
		p.baseURL = defaultBaseURL
	}
	return p, nil
}

// voiceSettings carries the synthesis profile.
type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// requestBody represents the JSON payload for ElevenLabs TTS.
type requestBody struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
	TextType      string        `json:"text_type,omitempty"`
}

// errorBody is the structured error returned on non-success responses.
type errorBody struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

// Synthesize generates speech from text and streams it into outputPath.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID, outputPath string) error {
	vid := p.voiceID
	if voiceID != "" {
		vid = voiceID
	}

	reqData := requestBody{
		Text:    text,
		ModelID: p.modelID,
		VoiceSettings: voiceSettings{
			Stability:       p.profile.Stability,
			SimilarityBoost: p.profile.Similarity,
		},
	}
	if strings.HasPrefix(strings.TrimSpace(text), "<speak>") {
		reqData.TextType = "ssml"
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	err = p.execute(ctx, vid, jsonData, text, outputPath)
	if err != nil {
		p.tracker.TrackAPIFailure(tracker.ComponentElevenLabs)
		return err
	}
	p.tracker.TrackAPISuccess(tracker.ComponentElevenLabs)
	return nil
}

func (p *Provider) endpoint(voiceID string) string {
	return fmt.Sprintf("%s/v1/text-to-speech/%s/stream?output_format=%s",
		p.baseURL, url.PathEscape(voiceID), url.QueryEscape(p.outputFormat))
}

func (p *Provider) execute(ctx context.Context, voiceID string, jsonData []byte, text, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(voiceID), bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("xi-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := p.client.Do(req)
	if err != nil {
		tts.Log(logName, text, 0, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &tts.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		tts.Log(logName, text, resp.StatusCode, nil)

		msg := parseErrorBody(body)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return &tts.AuthError{StatusCode: resp.StatusCode, Message: msg}
		}
		return &tts.RemoteError{StatusCode: resp.StatusCode, Message: msg}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	// Copy streams chunks to disk as they arrive
	written, err := io.Copy(f, resp.Body)
	closeErr := f.Close()

	if err != nil {
		tts.Log(logName, text, resp.StatusCode, err)
		os.Remove(outputPath)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &tts.TransportError{Err: fmt.Errorf("audio stream interrupted: %w", err)}
	}
	if closeErr != nil {
		os.Remove(outputPath)
		return fmt.Errorf("failed to flush audio file: %w", closeErr)
	}
	if written == 0 {
		tts.Log(logName, "Received empty audio file (0 bytes)", resp.StatusCode, nil)
		os.Remove(outputPath)
		return &tts.RemoteError{StatusCode: resp.StatusCode, Message: "received empty audio"}
	}

	tts.Log(logName, text, resp.StatusCode, nil)
	return nil
}

func parseErrorBody(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail.Message != "" {
		if eb.Detail.Status != "" {
			return eb.Detail.Status + ": " + eb.Detail.Message
		}
		return eb.Detail.Message
	}
	// Some errors carry detail as a plain string
	var plain struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &plain); err == nil && plain.Detail != "" {
		return plain.Detail
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "no error body"
}

var _ tts.Provider = (*Provider)(nil)
