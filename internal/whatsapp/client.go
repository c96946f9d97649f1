package whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// Client is a WhatsApp Business Cloud API client
type Client struct {
	baseURL     string
	accessToken string
	phoneID     string
	httpClient  *http.Client
	db          *gorm.DB
}

// NewClient creates a new Cloud API client
func NewClient(baseURL, accessToken, phoneID string, db *gorm.DB) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		phoneID:     phoneID,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		db:          db,
	}
}

// SendMessageRequest represents a message send request
type SendMessageRequest struct {
	MessagingProduct string    `json:"messaging_product"`
	RecipientType    string    `json:"recipient_type"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Text             *TextBody `json:"text,omitempty"`
	Document         *Document `json:"document,omitempty"`
}

// TextBody represents text message content
type TextBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// Document represents document content (proposal PDFs)
type Document struct {
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// SendMessageResponse represents the API response
type SendMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendTextMessage sends a text message and returns the provider message ID
func (c *Client) SendTextMessage(to, content string) (*string, error) {
	return c.sendMessage(SendMessageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &TextBody{PreviewURL: false, Body: content},
	})
}

// SendDocumentMessage sends a document (e.g. a proposal PDF)
func (c *Client) SendDocumentMessage(to, documentURL, filename, caption string) (*string, error) {
	return c.sendMessage(SendMessageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "document",
		Document:         &Document{Link: documentURL, Filename: filename, Caption: caption},
	})
}

func (c *Client) sendMessage(request SendMessageRequest) (*string, error) {
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var response SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Messages) == 0 {
		return nil, fmt.Errorf("no message ID in response")
	}

	messageID := response.Messages[0].ID
	return &messageID, nil
}

// SendReply delivers an outbound agent reply and stores it in the database
func (c *Client) SendReply(conversation *models.Conversation, customer *models.Customer, content string) (*models.Message, error) {
	externalID, err := c.SendTextMessage(customer.Phone, content)
	if err != nil {
		log.Error().Err(err).
			Str("conversation_id", conversation.ID.String()).
			Msg("Failed to send WhatsApp message")
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	message := models.Message{
		ConversationID: conversation.ID,
		CustomerID:     customer.ID,
		Type:           "text",
		Content:        content,
		Direction:      "out",
		Status:         "sent",
		ExternalID:     *externalID,
	}
	if err := c.db.Create(&message).Error; err != nil {
		log.Error().Err(err).Str("external_id", *externalID).Msg("Failed to save outbound message")
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	now := time.Now()
	if err := c.db.Model(&models.Conversation{}).
		Where("id = ?", conversation.ID).
		Update("last_message_at", &now).Error; err != nil {
		log.Error().Err(err).Msg("Failed to update conversation")
	}

	log.Info().
		Str("message_id", message.ID.String()).
		Str("external_id", *externalID).
		Str("conversation_id", conversation.ID.String()).
		Msg("Reply sent")

	return &message, nil
}

// MarkAsRead marks an inbound message as read on the provider side
func (c *Client) MarkAsRead(externalMessageID string) error {
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)

	request := map[string]interface{}{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        externalMessageID,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return nil
}
