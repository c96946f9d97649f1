package webhook

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/agent"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/repo"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/services"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/whatsapp"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// CloudWebhook is the Meta WhatsApp Business Cloud API webhook envelope
type CloudWebhook struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string      `json:"field"`
			Value CloudChange `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// CloudChange is the value block of a webhook change notification
type CloudChange struct {
	MessagingProduct string `json:"messaging_product"`
	Metadata         struct {
		DisplayPhoneNumber string `json:"display_phone_number"`
		PhoneNumberID      string `json:"phone_number_id"`
	} `json:"metadata"`
	Contacts []struct {
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
		WaID string `json:"wa_id"`
	} `json:"contacts"`
	Messages []CloudMessage `json:"messages"`
}

// CloudMessage is one inbound message in a webhook notification
type CloudMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
	Audio *struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
	} `json:"audio"`
	Document *struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
		Filename string `json:"filename"`
	} `json:"document"`
}

// WebSocketNotifier pushes realtime events to the dashboard
type WebSocketNotifier interface {
	Broadcast(event string, data interface{})
}

// MediaResolver resolves a Cloud API media ID into a downloadable URL
type MediaResolver interface {
	ResolveMediaURL(mediaID string) (string, error)
}

// Handler ingests WhatsApp Cloud webhooks and drives the conversation engine
type Handler struct {
	db          *gorm.DB
	messaging   *repo.MessagingRepository
	engine      *agent.Engine
	transcriber agent.Transcriber
	storage     *services.StorageService
	sender      *whatsapp.Client
	media       MediaResolver
	notifier    WebSocketNotifier
	verifyToken string
}

// NewHandler creates a webhook handler
func NewHandler(db *gorm.DB, messaging *repo.MessagingRepository, engine *agent.Engine, transcriber agent.Transcriber, storage *services.StorageService, sender *whatsapp.Client, media MediaResolver, verifyToken string) *Handler {
	return &Handler{
		db:          db,
		messaging:   messaging,
		engine:      engine,
		transcriber: transcriber,
		storage:     storage,
		sender:      sender,
		media:       media,
		verifyToken: verifyToken,
	}
}

// SetNotifier attaches the websocket notifier
func (h *Handler) SetNotifier(notifier WebSocketNotifier) {
	h.notifier = notifier
}

// Verify handles the Cloud API webhook verification handshake
func (h *Handler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		return c.String(http.StatusOK, challenge)
	}
	return c.NoContent(http.StatusForbidden)
}

// Receive handles an inbound webhook notification. Always answers 200 so
// the provider does not retry; processing failures are logged.
func (h *Handler) Receive(c echo.Context) error {
	var payload CloudWebhook
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Malformed webhook payload")
		return c.NoContent(http.StatusOK)
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, message := range change.Value.Messages {
				h.processMessage(c, change.Value, message)
			}
		}
	}

	return c.NoContent(http.StatusOK)
}

func (h *Handler) processMessage(c echo.Context, change CloudChange, inbound CloudMessage) {
	ctx := c.Request().Context()

	exists, err := h.messaging.MessageExists(inbound.ID)
	if err != nil {
		log.Error().Err(err).Str("external_id", inbound.ID).Msg("Dedupe check failed")
		return
	}
	if exists {
		log.Debug().Str("external_id", inbound.ID).Msg("Duplicate delivery, skipping")
		return
	}

	name := ""
	for _, contact := range change.Contacts {
		if contact.WaID == inbound.From {
			name = contact.Profile.Name
		}
	}

	customer, err := h.messaging.GetOrCreateCustomerByPhone(inbound.From, name)
	if err != nil {
		log.Error().Err(err).Str("phone", inbound.From).Msg("Customer upsert failed")
		return
	}

	conversation, err := h.messaging.GetOrCreateConversation(customer.ID)
	if err != nil {
		log.Error().Err(err).Str("customer_id", customer.ID.String()).Msg("Conversation upsert failed")
		return
	}

	message := models.Message{
		ConversationID: conversation.ID,
		CustomerID:     customer.ID,
		Type:           inbound.Type,
		Direction:      "in",
		Status:         "delivered",
		ExternalID:     inbound.ID,
	}

	text := h.extractText(c, conversation, &message, inbound)

	if err := h.messaging.SaveMessage(&message); err != nil {
		log.Error().Err(err).Str("external_id", inbound.ID).Msg("Failed to persist inbound message")
		return
	}

	if h.notifier != nil {
		h.notifier.Broadcast("message_received", map[string]interface{}{
			"conversation_id": conversation.ID.String(),
			"customer_name":   customer.Name,
			"content":         text,
			"timestamp":       time.Now().Format(time.RFC3339),
		})
	}

	if h.sender != nil {
		if err := h.sender.MarkAsRead(inbound.ID); err != nil {
			log.Debug().Err(err).Msg("Mark-as-read failed")
		}
	}

	if !conversation.AIEnabled || text == "" {
		return
	}

	history, err := h.messaging.HistoryContext(conversation.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load history context")
		history = ""
	}

	result := h.engine.ProcessTurn(ctx, conversation, text, history)

	if h.sender == nil {
		log.Warn().Msg("No WhatsApp sender configured, dropping reply")
		return
	}
	if _, err := h.sender.SendReply(conversation, customer, result.Reply); err != nil {
		log.Error().Err(err).Str("conversation_id", conversation.ID.String()).Msg("Reply delivery failed")
		return
	}

	if h.notifier != nil {
		h.notifier.Broadcast("message_sent", map[string]interface{}{
			"conversation_id":     conversation.ID.String(),
			"content":             result.Reply,
			"agent_state":         string(result.State),
			"qualifying_question": result.QualifyingQuestion,
		})
	}
}

// extractText pulls the analyzable text out of an inbound message. Voice
// notes are archived and transcribed; a failed transcription leaves the
// message with empty text and the turn is skipped.
func (h *Handler) extractText(c echo.Context, conversation *models.Conversation, message *models.Message, inbound CloudMessage) string {
	ctx := c.Request().Context()

	switch inbound.Type {
	case "text":
		if inbound.Text != nil {
			message.Content = inbound.Text.Body
			return inbound.Text.Body
		}

	case "audio":
		if inbound.Audio == nil || h.media == nil {
			return ""
		}
		mediaURL, err := h.media.ResolveMediaURL(inbound.Audio.ID)
		if err != nil {
			log.Warn().Err(err).Str("media_id", inbound.Audio.ID).Msg("Media URL resolution failed")
			return ""
		}
		message.MediaURL = mediaURL
		message.MediaType = inbound.Audio.MimeType

		if h.storage != nil {
			if archived, err := h.storage.ArchiveMedia(mediaURL, conversation.ID.String(), inbound.ID, inbound.Audio.MimeType); err == nil {
				message.MediaURL = archived
			} else {
				log.Warn().Err(err).Msg("Voice note archival failed")
			}
		}

		if h.transcriber == nil {
			return ""
		}
		transcription, _ := h.transcriber.Transcribe(ctx, mediaURL, inbound.Audio.MimeType)
		message.Transcription = transcription
		message.Content = transcription
		return transcription

	case "document":
		if inbound.Document != nil {
			message.Content = fmt.Sprintf("[documento] %s", inbound.Document.Filename)
		}
	}

	return ""
}
