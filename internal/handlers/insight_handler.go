package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "kharcha/internal/errors"
	"kharcha/internal/services"
)

// InsightHandler handles AI-backed analysis requests.
type InsightHandler struct {
	insightService services.InsightServicer
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insightService services.InsightServicer) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

// GetInsights runs one spending analysis round trip
// @Summary     Get spending insights
// @Description Aggregate the user's most recent transactions and generate a five-section AI analysis. With no transactions, a fixed message is returned and the AI is not called.
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "How many recent transactions to analyze (1-50, default 50)"
// @Success     200 {object} services.InsightReport "Analysis report"
// @Failure     400 {object} ErrorResponse "Invalid limit"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Upstream generation failed"
// @Router      /insights [get]
func (h *InsightHandler) GetInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, parseErr := strconv.Atoi(v)
		if parseErr != nil || parsed < 1 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	report, err := h.insightService.AnalyzeSpending(c.Request.Context(), userID, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ChatRequest represents a raw chat message for the AI.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat forwards a free-form message to the AI and returns the raw reply
// @Summary     Chat with the AI
// @Description Send one message to the model and get the raw reply back
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ChatRequest true "Message"
// @Success     200 {object} map[string]string "Reply"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Upstream generation failed"
// @Router      /ai/chat [post]
func (h *InsightHandler) Chat(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	reply, err := h.insightService.Chat(c.Request.Context(), req.Message)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
