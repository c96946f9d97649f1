package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation represents a WhatsApp conversation with a customer.
// AgentState carries the sales-agent dialogue stage and is rewritten once
// per inbound message by the conversation engine.
type Conversation struct {
	BaseModel
	CustomerID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;constraint:OnDelete:RESTRICT" json:"customer_id"`
	AssignedAgentID *uuid.UUID `gorm:"type:uuid;constraint:OnDelete:SET NULL" json:"assigned_agent_id"`
	Status          string     `gorm:"default:'open'" json:"status"` // open, closed, waiting
	AgentState      string     `gorm:"default:'saudacao_inicial'" json:"agent_state"`
	AIEnabled       bool       `gorm:"default:true" json:"ai_enabled"`
	ProposalID      *uuid.UUID `gorm:"type:uuid;constraint:OnDelete:SET NULL" json:"proposal_id"`
	LastMessageAt   *time.Time `json:"last_message_at"`
	UnreadCount     int        `gorm:"default:0" json:"unread_count"`

	// Relations
	Customer      *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	AssignedAgent *User     `gorm:"foreignKey:AssignedAgentID" json:"assigned_agent,omitempty"`
}

// Message represents a message in a conversation
type Message struct {
	BaseModel
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"conversation_id"`
	CustomerID     uuid.UUID  `gorm:"type:uuid;not null;constraint:OnDelete:RESTRICT" json:"customer_id"`
	UserID         *uuid.UUID `gorm:"type:uuid;constraint:OnDelete:SET NULL" json:"user_id"` // null for incoming and agent messages
	Type           string     `gorm:"not null;default:'text'" json:"type"`                   // text, audio, image, document
	Content        string     `json:"content"`
	Direction      string     `gorm:"not null" json:"direction"`    // in, out
	Status         string     `gorm:"default:'sent'" json:"status"` // sent, delivered, read, failed
	ExternalID     string     `gorm:"uniqueIndex" json:"external_id"`
	MediaURL       string     `json:"media_url,omitempty"`
	MediaType      string     `json:"media_type,omitempty"`
	Transcription  string     `json:"transcription,omitempty"` // for voice notes
	IsRead         bool       `gorm:"default:false" json:"is_read"`
	DeliveredAt    *time.Time `json:"delivered_at"`
	ReadAt         *time.Time `json:"read_at"`

	// Relations
	Conversation *Conversation `gorm:"foreignKey:ConversationID" json:"conversation,omitempty"`
	Customer     *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}
