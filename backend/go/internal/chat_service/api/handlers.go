package api

import (
	"errors"
	"net/http"

	"moihub_chatbot/backend/go/internal/chat_service/service"
	"moihub_chatbot/backend/go/internal/models"
	"moihub_chatbot/backend/go/pkg/httpmiddleware"
	"moihub_chatbot/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// 面向用户的错误提示。
const (
	msgNoQuestion       = "No question provided"
	msgBothRequired     = "Both question and answer are required!"
	msgInternalError    = "Internal server error"
	msgStoreUnavailable = "Knowledge store unavailable"
)

// Handler 封装了所有 API endpoint 的处理函数。
type Handler struct {
	service  *service.KnowledgeService
	fallback string
	logger   *logger.Logger
}

// NewHandler 创建一个新的 Handler 实例。
// fallback 是找不到答案时返回给用户的提示语。
func NewHandler(s *service.KnowledgeService, fallback string, log *logger.Logger) *Handler {
	return &Handler{service: s, fallback: fallback, logger: log}
}

// ChatRequest 定义了提问请求的 JSON 结构。
type ChatRequest struct {
	Question string `json:"question"`
}

// TrainRequest 定义了教学请求的 JSON 结构。
type TrainRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Chat 处理提问请求，返回 {"response": ...}。
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoQuestion})
		return
	}

	answer, ok, err := h.service.Answer(c.Request.Context(), req.Question)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoQuestion})
			return
		}
		h.fail(c, "answer question failed", err)
		return
	}
	if !ok {
		answer = h.fallback
	}

	c.JSON(http.StatusOK, gin.H{"response": answer})
}

// Train 处理教学请求，返回 {"message": ...}。
func (h *Handler) Train(c *gin.Context) {
	var req TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBothRequired})
		return
	}

	result, err := h.service.Learn(c.Request.Context(), req.Question, req.Answer)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgBothRequired})
			return
		}
		h.fail(c, "learn failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": result.Status.Message()})
}

// ListKnowledge 返回全部问答对。
func (h *Handler) ListKnowledge(c *gin.Context) {
	entries, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, "list knowledge failed", err)
		return
	}
	if entries == nil {
		entries = []models.QAEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// Health 检查存储连通性。
func (h *Handler) Health(c *gin.Context) {
	if err := h.service.Ping(c.Request.Context()); err != nil {
		httpmiddleware.LoggerFrom(c, h.logger).
			WithError(models.ErrorInfo{Message: err.Error(), Type: "StoreUnavailable", StatusCode: http.StatusServiceUnavailable}).
			Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": msgStoreUnavailable})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	httpmiddleware.LoggerFrom(c, h.logger).
		WithError(models.ErrorInfo{Message: err.Error(), Type: "InternalError", StatusCode: http.StatusInternalServerError}).
		Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
}
