package handler

import (
	"fmt"
	"net/http"

	"kbchat-backend/internal/model"
	"kbchat-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// SendMessage runs one conversation turn against the current session. A
// rejected send (empty content, request already in flight) returns a null
// message rather than an error; the rejection is deliberately silent.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	botMsg := h.chatService.SendMessage(c.Request.Context(), req.Content)

	sessionID := ""
	if session := h.chatService.CurrentSession(); session != nil {
		sessionID = session.ID
	}

	c.JSON(http.StatusOK, model.SendMessageResponse{
		SessionID: sessionID,
		Message:   botMsg,
	})
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	session := h.chatService.CreateNewSession()

	var req model.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Title != "" {
		if err := h.chatService.UpdateSessionTitle(session.ID, req.Title); err == nil {
			session.Title = req.Title
		}
	}

	c.JSON(http.StatusOK, session)
}

// LoadSession makes the named session current and returns its messages.
// Unknown ids leave the current state untouched.
func (h *ChatHandler) LoadSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	session := h.chatService.LoadSession(sessionID)
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("session not found: %s", sessionID)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"title":      session.Title,
		"messages":   session.Messages,
	})
}

func (h *ChatHandler) GetSessionList(c *gin.Context) {
	sessions := h.chatService.GetAllSessions()

	list := make([]model.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		list = append(list, model.SessionResponse{
			SessionID:    session.ID,
			Title:        session.Title,
			CreatedAt:    session.CreatedAt,
			UpdatedAt:    session.UpdatedAt,
			MessageCount: len(session.Messages),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": list,
	})
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.chatService.DeleteSession(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func (h *ChatHandler) ClearAllSessions(c *gin.Context) {
	h.chatService.ClearAllSessions()

	c.JSON(http.StatusOK, gin.H{"message": "All sessions cleared successfully"})
}

func (h *ChatHandler) UpdateSessionTitle(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req model.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.chatService.UpdateSessionTitle(sessionID, req.Title); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Title updated successfully"})
}

func (h *ChatHandler) SetMode(c *gin.Context) {
	var req model.SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := h.chatService.SetMode(req.Mode)

	c.JSON(http.StatusOK, gin.H{"mode": mode})
}

func (h *ChatHandler) ToggleCitationMode(c *gin.Context) {
	enabled := h.chatService.ToggleCitationMode()

	c.JSON(http.StatusOK, gin.H{"citation_mode": enabled})
}

// GetState returns the denormalized view the UI renders from.
func (h *ChatHandler) GetState(c *gin.Context) {
	state := model.StateResponse{
		Messages:     h.chatService.Messages(),
		Mode:         h.chatService.Mode(),
		CitationMode: h.chatService.IsCitationMode(),
		InFlight:     h.chatService.IsLoading(),
	}
	if session := h.chatService.CurrentSession(); session != nil {
		state.SessionID = session.ID
		state.Title = session.Title
	}

	c.JSON(http.StatusOK, state)
}

// ExportChat streams the current session in the requested format as a file
// download. Unsupported formats fail loudly.
func (h *ChatHandler) ExportChat(c *gin.Context) {
	format := c.Param("format")

	data, filename, err := h.chatService.Export(format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/octet-stream", data)
}
