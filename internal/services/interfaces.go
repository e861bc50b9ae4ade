package services

import (
	"context"
	"time"

	"kharcha/internal/files"
	"kharcha/internal/models"
	"kharcha/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, categoryType, color string) (*models.Category, error)
	GetUserCategories(userID uint) ([]models.Category, error)
}

// NoteInput is one note descriptor as submitted by the client. FileName and
// FileURL are only set on update requests that carry over an existing
// attachment.
type NoteInput struct {
	Text     string `json:"text"`
	FileName string `json:"fileName,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
}

// TransactionInput carries the normalized fields for a create or update.
// Amount has already passed through amount.Normalize.
type TransactionInput struct {
	Name               string
	Type               string
	Amount             float64
	Date               time.Time
	IsRecurring        bool
	RecurringFrequency models.RecurringFrequency
	Notes              []NoteInput
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Type     *string
}

// BatchDeleteResult reports the outcome of one id within a batch delete.
type BatchDeleteResult struct {
	ID      uint   `json:"id"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// TransactionServicer defines the contract for transaction-related business
// logic. Uploaded attachments are zipped to notes positionally: the file at
// index i belongs to the note at index i.
type TransactionServicer interface {
	CreateTransaction(userID uint, input TransactionInput, attachments []*files.StoredFile) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, input TransactionInput, attachments []*files.StoredFile) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	DeleteTransactions(userID uint, ids []uint) []BatchDeleteResult
	GetLabeledTransactions(userID uint) ([]models.LabeledTransaction, error)
}

// TextGenerator produces one completion for one prompt. Implemented by the
// Gemini client and by test doubles.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// CategoryAmount is one expense bucket in a spending summary.
type CategoryAmount struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// SpendingSummary aggregates a window of transactions.
type SpendingSummary struct {
	TotalIncome        float64            `json:"total_income"`
	TotalExpenses      float64            `json:"total_expenses"`
	NetBalance         float64            `json:"net_balance"`
	TransactionCount   int                `json:"transaction_count"`
	SpendingByCategory map[string]float64 `json:"spending_by_category"`
	TopCategories      []CategoryAmount   `json:"top_categories"`
}

// InsightSections is the structured AI reply, split on its numbered section
// markers. Missing sections are empty strings.
type InsightSections struct {
	TransactionClassification string `json:"transactionClassification"`
	BehaviorAnalysis          string `json:"behaviorAnalysis"`
	RiskAssessment            string `json:"riskAssessment"`
	Recommendations           string `json:"recommendations"`
	FuturePlanning            string `json:"futurePlanning"`
}

// InsightReport is the full /insights response body. When the user has no
// transactions, Sections is nil and the Analysis/Recommendations sentinel
// strings are set instead; the external generator is never called.
type InsightReport struct {
	Summary         SpendingSummary  `json:"summary"`
	Sections        *InsightSections `json:"sections,omitempty"`
	Analysis        string           `json:"analysis,omitempty"`
	Recommendations string           `json:"recommendations,omitempty"`
}

// InsightServicer defines the contract for AI-backed spending analysis.
type InsightServicer interface {
	AnalyzeSpending(ctx context.Context, userID uint, limit int) (*InsightReport, error)
	Chat(ctx context.Context, message string) (string, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
