package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"kharcha/internal/amount"
	"kharcha/internal/config"
	apperrors "kharcha/internal/errors"
	"kharcha/internal/files"
	"kharcha/internal/models"
	"kharcha/internal/pagination"
	"kharcha/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	fileStore          *files.Store
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, fileStore *files.Store, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		fileStore:          fileStore,
		auditService:       auditService,
	}
}

// TransactionDataRequest is the JSON document carried in the multipart
// "transactionData" part. Field names match the client contract; the amount
// arrives as a string and may use shorthand suffixes ("1.5k", "2cr").
type TransactionDataRequest struct {
	Name               string               `json:"name"`
	Type               string               `json:"type"`
	Amount             string               `json:"amount" binding:"required"`
	Date               string               `json:"date"`
	IsRecurring        bool                 `json:"isRecurring"`
	RecurringFrequency string               `json:"recurringFrequency"`
	Notes              []services.NoteInput `json:"notes"`
}

// parseTransactionForm decodes the multipart payload shared by create and
// update: the transactionData JSON part plus the ordered files parts, which
// are stored and zipped to notes by position.
func (h *TransactionHandler) parseTransactionForm(c *gin.Context) (services.TransactionInput, []*files.StoredFile, error) {
	var input services.TransactionInput

	data := c.PostForm("transactionData")
	if data == "" {
		return input, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transactionData part is required")
	}

	var req TransactionDataRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return input, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transactionData is not valid JSON")
	}

	normalized, err := amount.Normalize(req.Amount)
	if err != nil {
		return input, nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, err.Error())
	}

	input = services.TransactionInput{
		Name:               req.Name,
		Type:               req.Type,
		Amount:             normalized,
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: models.RecurringFrequency(req.RecurringFrequency),
		Notes:              req.Notes,
	}

	if req.Date != "" {
		parsed, parseErr := parseFlexibleTime(req.Date)
		if parseErr != nil {
			return input, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD")
		}
		input.Date = parsed
	}

	if input.RecurringFrequency != "" {
		switch input.RecurringFrequency {
		case models.RecurringDaily, models.RecurringWeekly, models.RecurringMonthly, models.RecurringYearly:
		default:
			return input, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid recurringFrequency")
		}
	}

	var uploads []*multipart.FileHeader
	if form, formErr := c.MultipartForm(); formErr == nil && form != nil {
		uploads = form.File["files"]
	}
	if len(uploads) > config.Get().UploadMaxFiles {
		return input, nil, apperrors.ErrTooManyFiles
	}

	attachments := make([]*files.StoredFile, 0, len(uploads))
	for _, fh := range uploads {
		stored, storeErr := h.fileStore.Save(fh)
		if storeErr != nil {
			return input, nil, storeErr
		}
		attachments = append(attachments, stored)
	}

	return input, attachments, nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create a transaction from a multipart form: a transactionData JSON part plus optional files zipped to notes by position
// @Tags        transactions
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       transactionData formData string true "Transaction JSON document"
// @Param       files           formData file   false "Note attachments, in note order"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	input, attachments, err := h.parseTransactionForm(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, input, attachments)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": transaction.Type, "amount": transaction.Amount})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Replace a transaction's fields and notes from the same multipart shape as create. Notes carrying a fileUrl keep it unless a new file arrives at the same position.
// @Tags        transactions
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       id              path     int    true  "Transaction ID"
// @Param       transactionData formData string true  "Transaction JSON document"
// @Param       files           formData file   false "Note attachments, in note order"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	input, attachments, err := h.parseTransactionForm(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, input, attachments)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// GetUserTransactions handles the retrieval of all transactions for the authenticated user
// @Summary     Get user transactions
// @Description Get a paginated list of the user's transactions, most recent first, with optional filters
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       from_date query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date   query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       type      query string false "Filter by transaction type"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		filter.Type = &v
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a transaction by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// BatchDeleteRequest represents the request payload for a batch delete.
type BatchDeleteRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// DeleteTransactions handles batch deletion of transactions
// @Summary     Batch delete transactions
// @Description Delete several transactions in one request. Each id is deleted independently; a missing id fails only its own entry and the batch always returns 200.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BatchDeleteRequest true "Transaction ids"
// @Success     200 {array} services.BatchDeleteResult "Per-id results"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [delete]
func (h *TransactionHandler) DeleteTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	results := h.transactionService.DeleteTransactions(userID, req.IDs)

	deleted := make([]uint, 0, len(results))
	for _, r := range results {
		if r.Deleted {
			deleted = append(deleted, r.ID)
		}
	}
	h.auditService.Log(userID, "BATCH_DELETE_TRANSACTIONS", "transaction", 0, c.ClientIP(),
		map[string]interface{}{"requested": req.IDs, "deleted": deleted})

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetLabeledTransactions handles retrieval of the labeled transaction view
// @Summary     Get labeled transactions
// @Description Get the user's transactions joined to their category colors. Transactions whose type has no category are excluded.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.LabeledTransaction "Labeled transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /labels [get]
func (h *TransactionHandler) GetLabeledTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	labeled, err := h.transactionService.GetLabeledTransactions(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": labeled})
}

