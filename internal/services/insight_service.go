package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"gorm.io/gorm"

	apperrors "kharcha/internal/errors"
	"kharcha/internal/models"
)

const (
	// insightDefaultLimit bounds how many recent transactions feed one
	// analysis; client-supplied limits are clamped to this ceiling.
	insightDefaultLimit = 50

	maxTopCategories  = 5
	maxNoteTextLength = 80

	noDataAnalysis        = "No transaction data available for analysis."
	noDataRecommendations = "Start by adding your income and expenses to get personalized insights."
)

// insightService aggregates spending data and asks an external text
// generator for a structured analysis.
type insightService struct {
	db        *gorm.DB
	generator TextGenerator
}

// NewInsightService creates a new InsightServicer.
func NewInsightService(db *gorm.DB, generator TextGenerator) InsightServicer {
	return &insightService{db: db, generator: generator}
}

// AnalyzeSpending aggregates the user's most recent transactions and runs
// one generation round trip. With no transactions, the generator is never
// invoked and a fixed sentinel report is returned. Failures are never
// retried and results are never cached.
func (s *insightService) AnalyzeSpending(ctx context.Context, userID uint, limit int) (*InsightReport, error) {
	if limit <= 0 || limit > insightDefaultLimit {
		limit = insightDefaultLimit
	}

	var transactions []models.Transaction
	if err := s.db.
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := Aggregate(transactions)

	if len(transactions) == 0 {
		return &InsightReport{
			Summary:         summary,
			Analysis:        noDataAnalysis,
			Recommendations: noDataRecommendations,
		}, nil
	}

	prompt := BuildPrompt(transactions, summary)
	reply, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	sections := ParseSections(reply)
	return &InsightReport{
		Summary:  summary,
		Sections: &sections,
	}, nil
}

// Chat forwards one free-form message to the generator and returns the raw
// reply.
func (s *insightService) Chat(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "message is required")
	}
	return s.generator.GenerateText(ctx, message)
}

// Aggregate computes summary statistics over a window of transactions.
// A type equal to "income" (any casing) counts as income; every other type
// is an expense bucketed under its type. Non-finite amounts coerce to 0.
func Aggregate(transactions []models.Transaction) SpendingSummary {
	summary := SpendingSummary{
		TransactionCount:   len(transactions),
		SpendingByCategory: make(map[string]float64),
	}

	for _, tx := range transactions {
		amount := tx.Amount
		if math.IsNaN(amount) || math.IsInf(amount, 0) {
			amount = 0
		}
		if strings.EqualFold(tx.Type, "income") {
			summary.TotalIncome += amount
			continue
		}
		summary.TotalExpenses += amount
		summary.SpendingByCategory[tx.Type] += amount
	}

	summary.NetBalance = summary.TotalIncome - summary.TotalExpenses
	summary.TopCategories = topCategories(summary.SpendingByCategory)
	return summary
}

// topCategories returns the largest expense buckets, amount descending,
// ties broken by name, capped at five.
func topCategories(byCategory map[string]float64) []CategoryAmount {
	top := make([]CategoryAmount, 0, len(byCategory))
	for categoryType, amount := range byCategory {
		top = append(top, CategoryAmount{Type: categoryType, Amount: amount})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Amount != top[j].Amount {
			return top[i].Amount > top[j].Amount
		}
		return top[i].Type < top[j].Type
	})
	if len(top) > maxTopCategories {
		top = top[:maxTopCategories]
	}
	return top
}

// BuildPrompt renders the analysis prompt: one line per transaction, then
// the summary block, then the five numbered questions whose markers the
// reply is split on.
func BuildPrompt(transactions []models.Transaction, summary SpendingSummary) string {
	var sb strings.Builder

	sb.WriteString("You are a personal finance advisor. Analyze the following transactions:\n\n")
	for _, tx := range transactions {
		sb.WriteString(fmt.Sprintf("- %s | %s | %.2f | %s",
			tx.Name, tx.Type, tx.Amount, tx.Date.Format("2006-01-02")))
		for _, note := range tx.Notes {
			if note.Text == "" {
				continue
			}
			sb.WriteString(" | note: ")
			sb.WriteString(truncateText(note.Text, maxNoteTextLength))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("\nSummary:\nTotal income: %.2f\nTotal expenses: %.2f\nNet balance: %.2f\n",
		summary.TotalIncome, summary.TotalExpenses, summary.NetBalance))
	for _, cat := range summary.TopCategories {
		sb.WriteString(fmt.Sprintf("Top category: %s %.2f\n", cat.Type, cat.Amount))
	}

	sb.WriteString(`
Answer in exactly five numbered sections:
1. Transaction classification
2. Behavior analysis
3. Risk assessment
4. Recommendations
5. Future planning
`)
	return sb.String()
}

// sectionMarker matches the numbered section markers in the AI reply.
var sectionMarker = regexp.MustCompile(`\d\.\s+`)

// ParseSections splits an AI reply on its numbered markers into the five
// report sections. The split is best effort: missing trailing sections come
// back as empty strings, never as an error.
func ParseSections(reply string) InsightSections {
	parts := sectionMarker.Split(reply, -1)

	// The text before the first marker is preamble, not a section.
	if len(parts) > 0 {
		parts = parts[1:]
	}

	get := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}

	return InsightSections{
		TransactionClassification: get(0),
		BehaviorAnalysis:          get(1),
		RiskAssessment:            get(2),
		Recommendations:           get(3),
		FuturePlanning:            get(4),
	}
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
