package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/dininghall/backend/internal/service"
	"github.com/pageza/dininghall/backend/internal/tools"
)

// maxToolBody bounds direct tool invocations.
const maxToolBody = 64 << 10

type ChatHandler struct {
	chat      service.IChatService
	registry  *tools.Registry
	rateLimit gin.HandlerFunc
}

// NewChatHandler builds the chat and tool endpoints. rateLimit may be nil.
func NewChatHandler(chat service.IChatService, registry *tools.Registry, rateLimit gin.HandlerFunc) *ChatHandler {
	return &ChatHandler{chat: chat, registry: registry, rateLimit: rateLimit}
}

func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	limited := router.Group("")
	if h.rateLimit != nil {
		limited.Use(h.rateLimit)
	}

	if h.chat != nil {
		limited.POST("/chat", h.Chat)
		router.GET("/chat/:session", h.History)
		router.DELETE("/chat/:session", h.Reset)
	}

	router.GET("/tools", h.ListTools)
	limited.POST("/tools/:name", h.InvokeTool)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reply, err := h.chat.Chat(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *ChatHandler) History(c *gin.Context) {
	session := c.Param("session")
	contents, err := h.chat.History(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": session, "contents": contents})
}

func (h *ChatHandler) Reset(c *gin.Context) {
	if err := h.chat.Reset(c.Request.Context(), c.Param("session")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.registry.Tools()})
}

// InvokeTool runs a tool directly with the request body as its arguments.
func (h *ChatHandler) InvokeTool(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxToolBody))
	if err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.registry.Invoke(c.Request.Context(), c.Param("name"), json.RawMessage(body))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tool": c.Param("name"), "result": result})
}
