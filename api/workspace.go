package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/service/workspace"
	"github.com/gin-gonic/gin"
)

type WorkspaceHandler struct {
	service workspace.WorkspaceUseCase
}

// postMessageRequest binds from JSON or a form post.
type postMessageRequest struct {
	Sender string `json:"sender" form:"sender"`
	Text   string `json:"text" form:"text"`
}

type messageResponse struct {
	ID        int64  `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func NewWorkspaceHandler(service workspace.WorkspaceUseCase) *WorkspaceHandler {
	return &WorkspaceHandler{service: service}
}

func (h *WorkspaceHandler) Register(router *gin.RouterGroup) {
	router.GET("/messages", h.list)
	router.POST("/messages", h.post)
}

func (h *WorkspaceHandler) post(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	msg, err := h.service.Post(c.Request.Context(), workspace.PostMessageInput{Sender: req.Sender, Text: req.Text})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMessageResponse(*msg))
}

func (h *WorkspaceHandler) list(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit", "must be a positive integer")
			return
		}
		limit = n
	}

	messages, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	c.JSON(http.StatusOK, out)
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		Sender:    m.Sender,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
