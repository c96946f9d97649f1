package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"
)

// StorageService archives inbound WhatsApp media to S3
type StorageService struct {
	client     *s3.S3
	httpClient *http.Client
	bucket     string
	baseURL    string
	mediaToken string
}

// StorageConfig holds the S3 connection parameters. MediaToken is the
// WhatsApp access token; resolved media URLs reject anonymous downloads.
type StorageConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	MediaToken string
}

// NewStorageService initializes the S3 client. Returns nil (not an error)
// when the configuration is incomplete; media archival is optional.
func NewStorageService(cfg StorageConfig) *StorageService {
	if cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		log.Warn().Msg("S3 configuration missing, media archival disabled")
		return nil
	}

	awsConfig := &aws.Config{
		Region:      aws.String("us-east-1"),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize S3 storage")
		return nil
	}

	log.Info().Str("bucket", cfg.Bucket).Msg("S3 storage initialized")
	return &StorageService{
		client:     s3.New(sess),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		bucket:     cfg.Bucket,
		baseURL:    fmt.Sprintf("https://s3.us-east-1.amazonaws.com/%s", cfg.Bucket),
		mediaToken: cfg.MediaToken,
	}
}

// ArchiveMedia downloads the media at mediaURL and uploads it under
// media/<conversation>/<message>. Returns the stored object URL.
func (s *StorageService) ArchiveMedia(mediaURL, conversationID, messageID, contentType string) (string, error) {
	body, err := s.download(mediaURL)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("media/%s/%s", conversationID, messageID)
	_, err = s.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload media: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// download fetches the media bytes with the WhatsApp Bearer token
func (s *StorageService) download(mediaURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.mediaToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.mediaToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media download returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
