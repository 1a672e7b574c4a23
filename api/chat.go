package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voyagent/voyagent/internal/auth"
	"github.com/voyagent/voyagent/internal/chat"
	"github.com/voyagent/voyagent/internal/domain"
	"github.com/voyagent/voyagent/internal/repository"
)

type ChatHandler struct {
	service chat.UseCase
}

func NewChatHandler(service chat.UseCase) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.delete)
	router.POST("/:id/messages", h.stream)
}

type streamRequest struct {
	Messages []domain.Message `json:"messages"`
}

// stream runs one conversation turn and relays orchestrator events to the
// client as server-sent events.
func (h *ChatHandler) stream(c *gin.Context) {
	var req streamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages must not be empty"})
		return
	}

	// SSE headers go out with the first event, so a turn refused before the
	// stream starts still gets a proper status code.
	wroteHeader := false
	writeHeader := func() {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.WriteHeader(http.StatusOK)
		wroteHeader = true
	}

	err := h.service.StreamMessage(c.Request.Context(), chat.Request{
		ChatID:   c.Param("id"),
		UserID:   auth.UserID(c),
		Messages: req.Messages,
	}, func(ev chat.Event) {
		if !wroteHeader {
			writeHeader()
		}
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		c.Writer.WriteString("data: ")
		c.Writer.Write(data)
		c.Writer.WriteString("\n\n")
		c.Writer.Flush()
	})
	if err != nil {
		if !wroteHeader {
			h.writeError(c, err)
			return
		}
		// Headers are already out; signal the failure in-stream.
		c.Writer.WriteString("data: {\"type\":\"error\"}\n\n")
		c.Writer.Flush()
	}
}

func (h *ChatHandler) list(c *gin.Context) {
	chats, err := h.service.ListChats(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chats)
}

func (h *ChatHandler) get(c *gin.Context) {
	found, err := h.service.GetChat(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *ChatHandler) delete(c *gin.Context) {
	if err := h.service.DeleteChat(c.Request.Context(), c.Param("id"), auth.UserID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrChatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
	case errors.Is(err, chat.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "chat belongs to another user"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
