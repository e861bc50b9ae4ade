package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "kharcha/internal/errors"
	"kharcha/internal/files"
	"kharcha/internal/models"
	"kharcha/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction creates a transaction with its ordered notes. The file
// at attachments[i] is attached to the note at input.Notes[i].
func (s *transactionService) CreateTransaction(userID uint, input TransactionInput, attachments []*files.StoredFile) (*models.Transaction, error) {
	if err := validateTransactionInput(&input); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:             userID,
		Name:               input.Name,
		Type:               input.Type,
		Amount:             input.Amount,
		Date:               input.Date,
		IsRecurring:        input.IsRecurring,
		RecurringFrequency: input.RecurringFrequency,
		Notes:              associateNotes(input.Notes, attachments),
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// UpdateTransaction replaces a transaction's fields and notes wholesale.
// Last write wins; there is no version check. Notes carrying an existing
// fileUrl keep it unless a new file arrives at the same position.
func (s *transactionService) UpdateTransaction(userID, transactionID uint, input TransactionInput, attachments []*files.StoredFile) (*models.Transaction, error) {
	if err := validateTransactionInput(&input); err != nil {
		return nil, err
	}

	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	notes := associateNotes(input.Notes, attachments)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&models.Note{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		updates := map[string]interface{}{
			"name":                input.Name,
			"type":                input.Type,
			"amount":              input.Amount,
			"date":                input.Date,
			"is_recurring":        input.IsRecurring,
			"recurring_frequency": input.RecurringFrequency,
		}
		if err := tx.Model(transaction).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for i := range notes {
			notes[i].TransactionID = transaction.ID
		}
		if len(notes) > 0 {
			if err := tx.Create(&notes).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(userID, transactionID)
}

// associateNotes zips note descriptors with uploaded files by position.
// A new file at index i wins over a carried-over fileUrl; a descriptor with
// neither stays bare.
func associateNotes(inputs []NoteInput, attachments []*files.StoredFile) []models.Note {
	notes := make([]models.Note, len(inputs))
	for i, in := range inputs {
		note := models.Note{
			Position: i,
			Text:     in.Text,
		}
		switch {
		case i < len(attachments) && attachments[i] != nil:
			note.FileName = attachments[i].FileName
			note.FileURL = attachments[i].FileURL
		case in.FileURL != "":
			note.FileName = in.FileName
			note.FileURL = in.FileURL
		}
		notes[i] = note
	}
	return notes
}

func validateTransactionInput(input *TransactionInput) error {
	if math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) {
		return apperrors.ErrInvalidAmount
	}
	if input.Name == "" {
		input.Name = "Anonymous"
	}
	if input.Type == "" {
		input.Type = "Investment"
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	if !input.IsRecurring {
		input.RecurringFrequency = ""
	}
	return nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, most recent first.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// DeleteTransaction deletes a single transaction and its notes.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&models.Note{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// DeleteTransactions deletes each id independently and reports a per-id
// outcome. A missing or foreign id fails only its own entry; the batch as a
// whole never errors and ids are not deleted atomically.
func (s *transactionService) DeleteTransactions(userID uint, ids []uint) []BatchDeleteResult {
	results := make([]BatchDeleteResult, 0, len(ids))
	for _, id := range ids {
		result := BatchDeleteResult{ID: id}
		if err := s.DeleteTransaction(userID, id); err != nil {
			result.Error = err.Error()
		} else {
			result.Deleted = true
		}
		results = append(results, result)
	}
	return results
}

// GetLabeledTransactions joins each transaction to the category matching its
// type and attaches the category color. The join is inner: a transaction
// whose type has no category is excluded from the result.
func (s *transactionService) GetLabeledTransactions(userID uint) ([]models.LabeledTransaction, error) {
	type labeledRow struct {
		models.Transaction
		Color string
	}

	var rows []labeledRow
	if err := s.db.Model(&models.Transaction{}).
		Select("transactions.*, categories.color AS color").
		Joins("INNER JOIN categories ON categories.type = transactions.type AND categories.deleted_at IS NULL AND (categories.user_id = ? OR categories.user_id IS NULL)", userID).
		Where("transactions.user_id = ?", userID).
		Order("transactions.date DESC, categories.user_id IS NULL ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	seen := make(map[uint]bool, len(rows))
	labeled := make([]models.LabeledTransaction, 0, len(rows))
	for _, row := range rows {
		// A user-owned and a global category for the same type both match;
		// user-owned rows sort first, so they win.
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true

		var notes []models.Note
		if err := s.db.Where("transaction_id = ?", row.ID).Order("position ASC").Find(&notes).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		labeled = append(labeled, models.LabeledTransaction{
			ID:                 row.ID,
			Name:               row.Name,
			Type:               row.Type,
			Amount:             row.Amount,
			Color:              row.Color,
			Date:               row.Date,
			IsRecurring:        row.IsRecurring,
			RecurringFrequency: row.RecurringFrequency,
			Notes:              notes,
		})
	}
	return labeled, nil
}
