package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"kharcha/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithEmail(t, db, fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: fmt.Sprintf("user%d", nextID()),
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a user-owned category for the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint, categoryType, color string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: &userID,
		Type:   categoryType,
		Color:  color,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestGlobalCategory creates a category visible to every user.
func CreateTestGlobalCategory(t *testing.T, db *gorm.DB, categoryType, color string) *models.Category {
	t.Helper()

	category := &models.Category{
		Type:  categoryType,
		Color: color,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction of the given type and amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, txType string, amount float64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID: userID,
		Name:   fmt.Sprintf("Test Transaction %d", nextID()),
		Type:   txType,
		Amount: amount,
		Date:   time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestTransactionAt creates a transaction dated at the given time.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, userID uint, txType string, amount float64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID: userID,
		Name:   fmt.Sprintf("Test Transaction %d", nextID()),
		Type:   txType,
		Amount: amount,
		Date:   date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestTransactionWithNotes creates a transaction carrying ordered notes.
func CreateTestTransactionWithNotes(t *testing.T, db *gorm.DB, userID uint, txType string, amount float64, notes []models.Note) *models.Transaction {
	t.Helper()

	for i := range notes {
		notes[i].Position = i
	}
	tx := &models.Transaction{
		UserID: userID,
		Name:   fmt.Sprintf("Test Transaction %d", nextID()),
		Type:   txType,
		Amount: amount,
		Date:   time.Now(),
		Notes:  notes,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
