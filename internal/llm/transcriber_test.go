package llm

import (
	"context"
	"strings"
	"testing"
)

func TestFileNameFor(t *testing.T) {
	tests := []struct {
		mimeType string
		expected string
	}{
		{"audio/ogg; codecs=opus", "audio.ogg"},
		{"audio/ogg", "audio.ogg"},
		{"audio/mp4", "audio.m4a"},
		{"audio/m4a", "audio.m4a"},
		{"audio/mpeg", "audio.mp3"},
		{"audio/mp3", "audio.mp3"},
		{"application/octet-stream", "audio.ogg"},
		{"", "audio.ogg"},
	}

	for _, test := range tests {
		if got := fileNameFor(test.mimeType); got != test.expected {
			t.Errorf("fileNameFor(%q) = %q, expected %q", test.mimeType, got, test.expected)
		}
	}
}

func TestDownloadRequestCarriesBearerToken(t *testing.T) {
	tr := NewAudioTranscriber("", "", "EAAG-token")

	req, err := tr.newDownloadRequest(context.Background(), "https://lookaside.fbsbx.com/whatsapp_business/attachments/?mid=123")
	if err != nil {
		t.Fatalf("newDownloadRequest returned error: %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer EAAG-token" {
		t.Errorf("Authorization = %q, expected %q", got, "Bearer EAAG-token")
	}
}

func TestDownloadRequestViaDecryptService(t *testing.T) {
	tr := NewAudioTranscriber("", "http://decrypt:8090", "EAAG-token")

	req, err := tr.newDownloadRequest(context.Background(), "https://lookaside.fbsbx.com/whatsapp_business/attachments/?mid=123")
	if err != nil {
		t.Fatalf("newDownloadRequest returned error: %v", err)
	}
	if !strings.HasPrefix(req.URL.String(), "http://decrypt:8090/decrypt?url=") {
		t.Errorf("request URL = %q, expected decrypt service route", req.URL.String())
	}
	if got := req.Header.Get("Authorization"); got != "" {
		t.Errorf("Authorization = %q, token must not leak to the decrypt service", got)
	}
}
