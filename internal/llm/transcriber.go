package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// AudioTranscriber downloads voice notes and transcribes them with Whisper.
// WhatsApp Cloud media arrives encrypted; when a decrypt service URL is
// configured the download is proxied through it first.
type AudioTranscriber struct {
	client            *openai.Client
	httpClient        *http.Client
	decryptServiceURL string
	accessToken       string
}

// NewAudioTranscriber creates a transcriber. decryptServiceURL may be empty
// when media URLs are directly downloadable. accessToken authenticates direct
// Graph API media downloads; resolved media URLs reject anonymous requests.
func NewAudioTranscriber(openaiAPIKey, decryptServiceURL, accessToken string) *AudioTranscriber {
	return &AudioTranscriber{
		client:            openai.NewClient(openaiAPIKey),
		httpClient:        &http.Client{Timeout: 60 * time.Second},
		decryptServiceURL: decryptServiceURL,
		accessToken:       accessToken,
	}
}

// Transcribe converts the voice note at mediaURL to plain text. Every
// failure path returns an empty string and a nil-safe log entry; the caller
// treats the message as if it had no transcribable audio.
func (t *AudioTranscriber) Transcribe(ctx context.Context, mediaURL, mimeType string) (string, error) {
	audio, err := t.download(ctx, mediaURL)
	if err != nil {
		log.Warn().Err(err).Str("media_url", mediaURL).Msg("Voice note download failed")
		return "", nil
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: fileNameFor(mimeType),
		Reader:   bytes.NewReader(audio),
		Language: "pt",
	})
	if err != nil {
		log.Warn().Err(err).Msg("Transcription request failed")
		return "", nil
	}

	return strings.TrimSpace(resp.Text), nil
}

// download fetches the audio bytes, going through the decrypt companion
// service when one is configured
func (t *AudioTranscriber) download(ctx context.Context, mediaURL string) ([]byte, error) {
	req, err := t.newDownloadRequest(ctx, mediaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media download returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// newDownloadRequest builds the media GET. Direct Graph API downloads carry
// the Bearer token; the decrypt companion service authenticates on its own.
func (t *AudioTranscriber) newDownloadRequest(ctx context.Context, mediaURL string) (*http.Request, error) {
	if t.decryptServiceURL != "" {
		target := fmt.Sprintf("%s/decrypt?url=%s", t.decryptServiceURL, url.QueryEscape(mediaURL))
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, err
	}
	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}
	return req, nil
}

func fileNameFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "ogg"):
		return "audio.ogg"
	case strings.Contains(mimeType, "mp4"), strings.Contains(mimeType, "m4a"):
		return "audio.m4a"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return "audio.mp3"
	default:
		return "audio.ogg"
	}
}
