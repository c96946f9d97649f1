package whatsapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MediaClient resolves Cloud API media IDs into downloadable URLs
type MediaClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewMediaClient creates a media client
func NewMediaClient(baseURL, accessToken string) *MediaClient {
	return &MediaClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type mediaResponse struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Sha256   string `json:"sha256"`
	FileSize int64  `json:"file_size"`
	ID       string `json:"id"`
}

// ResolveMediaURL asks the Graph API for the media download URL. The URL is
// short-lived and must be fetched with the same access token.
func (m *MediaClient) ResolveMediaURL(mediaID string) (string, error) {
	url := fmt.Sprintf("%s/%s", m.baseURL, mediaID)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.accessToken)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to resolve media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var media mediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return "", fmt.Errorf("failed to decode media response: %w", err)
	}
	if media.URL == "" {
		return "", fmt.Errorf("no URL in media response")
	}
	return media.URL, nil
}
