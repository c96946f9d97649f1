package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// MessagingRepository reads and writes conversations and messages
type MessagingRepository struct {
	db *gorm.DB
}

// NewMessagingRepository creates a messaging repository
func NewMessagingRepository(db *gorm.DB) *MessagingRepository {
	return &MessagingRepository{db: db}
}

// GetOrCreateCustomerByPhone finds a customer by phone or registers a new one
func (r *MessagingRepository) GetOrCreateCustomerByPhone(phone, name string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("phone = ?", phone).First(&customer).Error
	if err == gorm.ErrRecordNotFound {
		customer = models.Customer{Phone: phone, Name: name, IsActive: true}
		err = r.db.Create(&customer).Error
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetOrCreateConversation finds the customer's conversation or opens one
func (r *MessagingRepository) GetOrCreateConversation(customerID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("customer_id = ?", customerID).First(&conversation).Error
	if err == gorm.ErrRecordNotFound {
		conversation = models.Conversation{
			CustomerID: customerID,
			Status:     "open",
			AgentState: "saudacao_inicial",
			AIEnabled:  true,
		}
		err = r.db.Create(&conversation).Error
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// MessageExists reports whether an inbound message was already ingested.
// Used to suppress provider double-delivery.
func (r *MessagingRepository) MessageExists(externalID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Message{}).Where("external_id = ?", externalID).Count(&count).Error
	return count > 0, err
}

// SaveMessage persists a message and bumps the conversation's last activity
func (r *MessagingRepository) SaveMessage(message *models.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	now := time.Now()
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", message.ConversationID).
		Update("last_message_at", &now).Error
}

// historyLimit caps how many recent messages feed the agent's context
const historyLimit = 20

// HistoryContext concatenates the conversation's recent messages into the
// plain-text context the agent analyzes, oldest first
func (r *MessagingRepository) HistoryContext(conversationID uuid.UUID) (string, error) {
	var messages []models.Message
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(historyLimit).
		Find(&messages).Error
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		role := "Cliente"
		if m.Direction == "out" {
			role = "Agente"
		}
		content := m.Content
		if m.Type == "audio" && m.Transcription != "" {
			content = m.Transcription
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", role, content))
	}
	return b.String(), nil
}
