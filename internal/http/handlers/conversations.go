package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// ConversationHandler serves the dashboard's conversation views
type ConversationHandler struct {
	db *gorm.DB
}

// NewConversationHandler creates a conversation handler
func NewConversationHandler(db *gorm.DB) *ConversationHandler {
	return &ConversationHandler{db: db}
}

// List returns conversations ordered by recent activity
func (h *ConversationHandler) List(c echo.Context) error {
	limit, offset := pagination(c)

	query := h.db.Preload("Customer").
		Order("last_message_at DESC NULLS LAST")

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if state := c.QueryParam("agent_state"); state != "" {
		query = query.Where("agent_state = ?", state)
	}

	var total int64
	query.Model(&models.Conversation{}).Count(&total)

	var conversations []models.Conversation
	if err := query.Limit(limit).Offset(offset).Find(&conversations).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list conversations"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  conversations,
		"total": total,
	})
}

// GetByID returns one conversation with its customer
func (h *ConversationHandler) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conversation ID"})
	}

	var conversation models.Conversation
	if err := h.db.Preload("Customer").Where("id = ?", id).First(&conversation).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Conversation not found"})
	}

	return c.JSON(http.StatusOK, conversation)
}

// ListMessages returns the conversation's messages, newest first
func (h *ConversationHandler) ListMessages(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conversation ID"})
	}
	limit, offset := pagination(c)

	var messages []models.Message
	err = h.db.Where("conversation_id = ?", id).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list messages"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": messages})
}

// ListInteractions returns the agent's interaction log for a conversation
func (h *ConversationHandler) ListInteractions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conversation ID"})
	}
	limit, offset := pagination(c)

	var logs []models.InteractionLog
	err = h.db.Where("conversation_id = ?", id).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list interactions"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": logs})
}

// ToggleAI enables or disables the sales agent for a conversation, letting
// a human seller take over
func (h *ConversationHandler) ToggleAI(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conversation ID"})
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	result := h.db.Model(&models.Conversation{}).Where("id = ?", id).Update("ai_enabled", req.Enabled)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update conversation"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Conversation not found"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"ai_enabled": req.Enabled})
}

// pagination reads limit/offset query params with sane defaults
func pagination(c echo.Context) (limit, offset int) {
	limit = 20
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
